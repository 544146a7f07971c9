package cpu

import (
	"fmt"

	"github.com/oisee/y86-sim/pkg/isa"
)

// Status is the processor status code. The numeric values are the ones
// surfaced in traces.
type Status uint8

const (
	AOK Status = 1 // running
	HLT Status = 2 // halt instruction executed
	ADR Status = 3 // memory access out of bounds
	INS Status = 4 // undefined instruction
)

func (s Status) String() string {
	switch s {
	case AOK:
		return "AOK"
	case HLT:
		return "HLT"
	case ADR:
		return "ADR"
	case INS:
		return "INS"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Signals are the values computed while executing one instruction. They are
// recomputed every cycle and carry nothing over between cycles.
type Signals struct {
	ICode isa.ICode
	IFun  isa.Fn
	RA    isa.RegID
	RB    isa.RegID
	ValC  int64
	ValP  uint64 // address of the next sequential instruction
	ValA  int64
	ValB  int64
	ValE  int64 // ALU result
	ValM  int64 // value read from memory
	Cnd   bool

	// Fetched is set once the instruction byte was read and names a
	// legal instruction.
	Fetched bool
}

// Processor is a sequential Y86-64 processor. It owns its register file and
// is paired with one memory for its lifetime.
type Processor struct {
	PC   uint64
	Stat Status
	CC   ConditionCodes

	reg RegisterFile
	mem *Memory
	sig Signals
}

// NewProcessor creates a processor in the reset state attached to mem.
func NewProcessor(mem *Memory) *Processor {
	p := &Processor{mem: mem}
	p.Reset()
	return p
}

// Reset restores the power-on state: PC 0, status AOK, ZF set, registers
// zero. Memory is left alone.
func (p *Processor) Reset() {
	p.reg.Reset()
	p.CC = resetCC
	p.PC = 0
	p.Stat = AOK
	p.sig = Signals{RA: isa.RegNone, RB: isa.RegNone}
}

// Registers returns the register file.
func (p *Processor) Registers() *RegisterFile {
	return &p.reg
}

// Memory returns the attached memory.
func (p *Processor) Memory() *Memory {
	return p.mem
}

// Signals returns the values computed by the most recent Step.
func (p *Processor) Signals() Signals {
	return p.sig
}

// Running reports whether the processor will execute another instruction.
func (p *Processor) Running() bool {
	return p.Stat == AOK
}

func (p *Processor) String() string {
	s := fmt.Sprintf("PC %016x STAT %s ZF %d SF %d OF %d\n", p.PC, p.Stat, b2i(p.CC.ZF), b2i(p.CC.SF), b2i(p.CC.OF))
	for i := isa.RegID(0); i < isa.NumRegs; i++ {
		s += fmt.Sprintf("%-3s %016x ", i, uint64(p.reg.Get(i)))
		if i%4 == 3 {
			s += "\n"
		}
	}
	return s + "\n"
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
