package cpu

import "github.com/oisee/y86-sim/pkg/isa"

// ConditionCodes are the three flags set by OPq.
type ConditionCodes struct {
	ZF bool // Zero
	SF bool // Sign
	OF bool // Overflow
}

// resetCC is the power-on flag state.
var resetCC = ConditionCodes{ZF: true}

// Cond evaluates a jXX/cmovXX condition against the flags. Undefined
// conditions evaluate false.
func (cc ConditionCodes) Cond(fn isa.Fn) bool {
	less := cc.SF != cc.OF
	switch fn {
	case isa.CondNone:
		return true
	case isa.CondLE:
		return less || cc.ZF
	case isa.CondL:
		return less
	case isa.CondE:
		return cc.ZF
	case isa.CondNE:
		return !cc.ZF
	case isa.CondGE:
		return !less
	case isa.CondG:
		return !less && !cc.ZF
	}
	return false
}

// ALU computes b op a with 64-bit wraparound. The operand order matches the
// assembler: "subq %rA, %rB" computes rB - rA.
func ALU(op isa.Fn, a, b int64) int64 {
	switch op {
	case isa.ALUAdd:
		return b + a
	case isa.ALUSub:
		return b - a
	case isa.ALUAnd:
		return b & a
	case isa.ALUXor:
		return b ^ a
	}
	return 0
}

// ALUFlags returns the condition codes produced by e = b op a.
//
// OF follows the sign bits of the operands and result, so min+min (which
// wraps to zero) and 0-min (which wraps back to min) both set OF. Checks that
// look for strictly positive operands or results report OF=0 for those two.
func ALUFlags(op isa.Fn, a, b, e int64) ConditionCodes {
	cc := ConditionCodes{ZF: e == 0, SF: e < 0}
	switch op {
	case isa.ALUAdd:
		// operands agree in sign, result does not
		cc.OF = (a < 0) == (b < 0) && (e < 0) != (a < 0)
	case isa.ALUSub:
		// operands differ in sign, result takes the subtrahend's sign
		cc.OF = (a < 0) != (b < 0) && (e < 0) == (a < 0)
	}
	return cc
}
