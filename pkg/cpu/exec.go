package cpu

import "github.com/oisee/y86-sim/pkg/isa"

// Step executes one instruction and returns the resulting status. Once the
// status is no longer AOK, Step does nothing.
//
// The stages run in order fetch, decode, execute, memory, write-back and PC
// update. A fault in fetch or memory sets the status and abandons the rest of
// the cycle, so registers and PC keep their values from before the
// instruction.
func (p *Processor) Step() Status {
	if p.Stat != AOK {
		return p.Stat
	}
	if !p.fetch() {
		return p.Stat
	}
	p.decode()
	p.execute()
	if !p.memory() {
		return p.Stat
	}
	p.writeBack()
	p.updatePC()
	return p.Stat
}

// fetch reads the instruction at PC and computes valP. It returns false if
// the cycle must stop here.
func (p *Processor) fetch() bool {
	s := &p.sig
	*s = Signals{RA: isa.RegNone, RB: isa.RegNone}

	b0, err := p.mem.ReadByteAt(p.PC)
	if err != nil {
		p.Stat = ADR
		return false
	}
	s.ICode, s.IFun = isa.Split(b0)
	s.ValP = p.PC + 1

	if !s.ICode.Valid() || !isa.ValidFn(s.ICode, s.IFun) {
		p.Stat = INS
		return false
	}
	s.Fetched = true
	if s.ICode == isa.HALT {
		p.Stat = HLT
		s.ValP = p.PC
		return false
	}

	if isa.NeedsRegs(s.ICode) {
		b1, err := p.mem.ReadByteAt(s.ValP)
		if err != nil {
			p.Stat = ADR
			return false
		}
		s.RA, s.RB = isa.SplitRegs(b1)
		s.ValP++
	}
	if isa.NeedsValC(s.ICode) {
		w, err := p.mem.ReadWord(s.ValP)
		if err != nil {
			p.Stat = ADR
			return false
		}
		s.ValC = int64(w)
		s.ValP += WordSize
	}
	return true
}

// decode reads the source operands.
func (p *Processor) decode() {
	s := &p.sig
	srcA, srcB := isa.RegNone, isa.RegNone

	switch s.ICode {
	case isa.RRMOVQ, isa.RMMOVQ, isa.OPQ, isa.PUSHQ:
		srcA = s.RA
	case isa.POPQ, isa.RET:
		srcA = isa.RSP
	}

	switch s.ICode {
	case isa.RRMOVQ, isa.IRMOVQ, isa.RMMOVQ, isa.MRMOVQ, isa.OPQ:
		srcB = s.RB
	case isa.PUSHQ, isa.POPQ, isa.CALL, isa.RET:
		srcB = isa.RSP
	}

	s.ValA = p.reg.Get(srcA)
	s.ValB = p.reg.Get(srcB)
}

// execute runs the ALU and, for OPq, sets the condition codes. The branch and
// move condition is evaluated here against the flags as they stand after
// the ALU.
func (p *Processor) execute() {
	s := &p.sig
	var aluA, aluB int64
	op := isa.ALUAdd

	switch s.ICode {
	case isa.NOP:
	case isa.JXX:
		// target is valC, nothing to compute
	case isa.RRMOVQ:
		aluA = s.ValA
	case isa.IRMOVQ:
		aluA = s.ValC
	case isa.RMMOVQ, isa.MRMOVQ:
		aluA, aluB = s.ValC, s.ValB
	case isa.OPQ:
		aluA, aluB = s.ValA, s.ValB
		op = s.IFun
	case isa.PUSHQ, isa.CALL:
		aluA, aluB = -WordSize, s.ValB
	case isa.POPQ, isa.RET:
		aluA, aluB = WordSize, s.ValB
	}

	if s.ICode != isa.JXX {
		s.ValE = ALU(op, aluA, aluB)
	}
	if s.ICode == isa.OPQ {
		p.CC = ALUFlags(op, aluA, aluB, s.ValE)
	}

	switch s.ICode {
	case isa.JXX, isa.RRMOVQ:
		s.Cnd = p.CC.Cond(s.IFun)
	}
}

// memory performs the data memory access. It returns false on a fault.
func (p *Processor) memory() bool {
	s := &p.sig
	var err error

	switch s.ICode {
	case isa.RMMOVQ, isa.PUSHQ:
		err = p.mem.WriteWord(uint64(s.ValE), s.ValA)
	case isa.CALL:
		err = p.mem.WriteWord(uint64(s.ValE), int64(s.ValP))
	case isa.MRMOVQ:
		s.ValM, err = p.readWord(uint64(s.ValE))
	case isa.POPQ, isa.RET:
		s.ValM, err = p.readWord(uint64(s.ValB))
	}

	if err != nil {
		p.Stat = ADR
		return false
	}
	return true
}

func (p *Processor) readWord(addr uint64) (int64, error) {
	w, err := p.mem.ReadWord(addr)
	return int64(w), err
}

// writeBack updates the register file. For popq the stack pointer is
// written first so that "popq %rsp" ends with the popped value.
func (p *Processor) writeBack() {
	s := &p.sig

	switch s.ICode {
	case isa.RRMOVQ:
		if s.Cnd {
			p.reg.Set(s.RB, s.ValE)
		}
	case isa.IRMOVQ, isa.OPQ:
		p.reg.Set(s.RB, s.ValE)
	case isa.MRMOVQ:
		p.reg.Set(s.RA, s.ValM)
	case isa.PUSHQ, isa.CALL, isa.RET:
		p.reg.Set(isa.RSP, s.ValE)
	case isa.POPQ:
		p.reg.Set(isa.RSP, s.ValE)
		p.reg.Set(s.RA, s.ValM)
	}
}

// updatePC selects the address of the next instruction.
func (p *Processor) updatePC() {
	s := &p.sig

	switch s.ICode {
	case isa.JXX:
		if s.Cnd {
			p.PC = uint64(s.ValC)
			return
		}
	case isa.CALL:
		p.PC = uint64(s.ValC)
		return
	case isa.RET:
		p.PC = uint64(s.ValM)
		return
	}
	p.PC = s.ValP
}
