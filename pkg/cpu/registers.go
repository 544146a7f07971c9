package cpu

import "github.com/oisee/y86-sim/pkg/isa"

// RegisterFile holds the 15 program registers. Reads of RegNone return 0 and
// writes to it are ignored.
type RegisterFile struct {
	regs [isa.NumRegs]int64
}

// Get returns the value of register id.
func (r *RegisterFile) Get(id isa.RegID) int64 {
	if id >= isa.NumRegs {
		return 0
	}
	return r.regs[id]
}

// Set writes v to register id.
func (r *RegisterFile) Set(id isa.RegID, v int64) {
	if id >= isa.NumRegs {
		return
	}
	r.regs[id] = v
}

// Reset zeroes every register.
func (r *RegisterFile) Reset() {
	r.regs = [isa.NumRegs]int64{}
}

// All returns a copy of the register values in id order.
func (r *RegisterFile) All() [isa.NumRegs]int64 {
	return r.regs
}
