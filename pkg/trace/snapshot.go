// Package trace records the architectural state of a processor after every
// cycle and encodes it for viewers.
//
// A Trace is written once by the simulation driver and never modified.
// Snapshot fields use the key names the viewer expects (PC, STAT, REG, CC,
// MEM). Register and memory values are plain JSON integers; a consumer that
// decodes numbers as IEEE doubles loses precision above 2^53.
package trace

import (
	"strconv"

	"github.com/oisee/y86-sim/pkg/cpu"
	"github.com/oisee/y86-sim/pkg/isa"
)

// Flags holds the condition codes as 0/1 values.
type Flags struct {
	ZF uint8 `json:"ZF"`
	SF uint8 `json:"SF"`
	OF uint8 `json:"OF"`
}

// Snapshot is the processor state at the end of one cycle.
type Snapshot struct {
	PC   uint64            `json:"PC"`
	Stat cpu.Status        `json:"STAT"`
	Reg  map[string]int64  `json:"REG"`
	CC   Flags             `json:"CC"`
	Mem  map[string]uint64 `json:"MEM"` // decimal address → non-zero aligned word
}

// Trace is the ordered sequence of snapshots of one run. Steps[0] is the
// state after loading and before the first instruction.
type Trace struct {
	Steps []Snapshot
}

// Capture records the current state of p. Only non-zero 8-byte aligned
// memory words are included.
func Capture(p *cpu.Processor) Snapshot {
	regs := p.Registers().All()
	names := isa.RegNames()
	s := Snapshot{
		PC:   p.PC,
		Stat: p.Stat,
		Reg:  make(map[string]int64, len(names)),
		CC:   Flags{ZF: bit(p.CC.ZF), SF: bit(p.CC.SF), OF: bit(p.CC.OF)},
		Mem:  make(map[string]uint64),
	}
	for i, name := range names {
		s.Reg[name] = regs[i]
	}
	p.Memory().NonZeroWords(func(addr, v uint64) {
		s.Mem[strconv.FormatUint(addr, 10)] = v
	})
	return s
}

func bit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Word returns the memory word at addr recorded in the snapshot, or 0.
func (s *Snapshot) Word(addr uint64) uint64 {
	return s.Mem[strconv.FormatUint(addr, 10)]
}

// Append adds a snapshot to the end of the trace.
func (t *Trace) Append(s Snapshot) {
	t.Steps = append(t.Steps, s)
}

// Len returns the number of snapshots, which is one more than the number of
// executed cycles.
func (t *Trace) Len() int {
	return len(t.Steps)
}

// Cycles returns the number of executed cycles.
func (t *Trace) Cycles() int {
	if len(t.Steps) == 0 {
		return 0
	}
	return len(t.Steps) - 1
}

// Final returns the last snapshot. It panics on an empty trace.
func (t *Trace) Final() Snapshot {
	return t.Steps[len(t.Steps)-1]
}

// Halted reports whether the run ended with a halt instruction.
func (t *Trace) Halted() bool {
	return len(t.Steps) > 0 && t.Final().Stat == cpu.HLT
}
