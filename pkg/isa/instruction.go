package isa

// ICode is the instruction class held in the high nibble of an instruction's
// first byte.
type ICode uint8

// Fn is the function/condition code held in the low nibble of the first byte.
// Its meaning depends on the class: an ALU operation for OPq, a condition
// for jXX and cmovXX, and always zero otherwise.
type Fn uint8

// RegID names one of the 15 program registers. RegNone (0xF) means
// "no register" in a register specifier byte.
type RegID uint8

// Instruction classes.
const (
	HALT   ICode = 0x0
	NOP    ICode = 0x1
	RRMOVQ ICode = 0x2 // rrmovq and the six cmovXX
	IRMOVQ ICode = 0x3
	RMMOVQ ICode = 0x4
	MRMOVQ ICode = 0x5
	OPQ    ICode = 0x6 // addq subq andq xorq
	JXX    ICode = 0x7 // jmp and the six conditional jumps
	CALL   ICode = 0x8
	RET    ICode = 0x9
	PUSHQ  ICode = 0xA
	POPQ   ICode = 0xB

	ICodeCount = 0xC
)

// ALU functions for OPQ.
const (
	ALUAdd Fn = 0
	ALUSub Fn = 1
	ALUAnd Fn = 2
	ALUXor Fn = 3

	ALUCount = 4
)

// Branch and move conditions for JXX and RRMOVQ.
const (
	CondNone Fn = 0 // unconditional
	CondLE   Fn = 1
	CondL    Fn = 2
	CondE    Fn = 3
	CondNE   Fn = 4
	CondGE   Fn = 5
	CondG    Fn = 6

	CondCount = 7
)

// Program registers.
const (
	RAX RegID = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	RegNone

	NumRegs = 15
)

var regNames = [NumRegs]string{
	"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14",
}

// RegNames returns the register names in id order, as used for trace keys.
func RegNames() [NumRegs]string {
	return regNames
}

// String returns the register name without the % prefix, or "none".
func (r RegID) String() string {
	if r < NumRegs {
		return regNames[r]
	}
	return "none"
}

// Valid reports whether the class is one of the twelve defined classes.
func (c ICode) Valid() bool {
	return c < ICodeCount
}

// ValidFn reports whether fn is a legal function code for class c.
// Classes without function variants only accept zero.
func ValidFn(c ICode, fn Fn) bool {
	switch c {
	case OPQ:
		return fn < ALUCount
	case JXX, RRMOVQ:
		return fn < CondCount
	case HALT, NOP, IRMOVQ, RMMOVQ, MRMOVQ, CALL, RET, PUSHQ, POPQ:
		return fn == 0
	}
	return false
}

// NeedsRegs returns true if the class carries a register specifier byte.
func NeedsRegs(c ICode) bool {
	switch c {
	case RRMOVQ, IRMOVQ, RMMOVQ, MRMOVQ, OPQ, PUSHQ, POPQ:
		return true
	}
	return false
}

// NeedsValC returns true if the class carries an 8-byte constant word.
func NeedsValC(c ICode) bool {
	switch c {
	case IRMOVQ, RMMOVQ, MRMOVQ, JXX, CALL:
		return true
	}
	return false
}

// Length returns the encoded size of an instruction of class c in bytes.
func Length(c ICode) int {
	n := 1
	if NeedsRegs(c) {
		n++
	}
	if NeedsValC(c) {
		n += 8
	}
	return n
}

// Split returns the class and function nibbles of an instruction byte.
func Split(b byte) (ICode, Fn) {
	return ICode(b >> 4 & 0xF), Fn(b & 0xF)
}

// SplitRegs returns the rA and rB nibbles of a register specifier byte.
func SplitRegs(b byte) (RegID, RegID) {
	return RegID(b >> 4 & 0xF), RegID(b & 0xF)
}
