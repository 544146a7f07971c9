package isa

import (
	"encoding/binary"
	"fmt"
)

// Instruction is one decoded Y86-64 instruction.
type Instruction struct {
	Code ICode
	Fn   Fn
	RA   RegID
	RB   RegID
	ValC int64
}

// Catalog holds the mnemonic of every legal (class, function) pair.
// Unused slots are empty strings.
var Catalog [ICodeCount][CondCount]string

func init() {
	Catalog[HALT][0] = "halt"
	Catalog[NOP][0] = "nop"
	for fn, suffix := range condSuffix {
		if fn == int(CondNone) {
			Catalog[RRMOVQ][fn] = "rrmovq"
			Catalog[JXX][fn] = "jmp"
			continue
		}
		Catalog[RRMOVQ][fn] = "cmov" + suffix
		Catalog[JXX][fn] = "j" + suffix
	}
	Catalog[IRMOVQ][0] = "irmovq"
	Catalog[RMMOVQ][0] = "rmmovq"
	Catalog[MRMOVQ][0] = "mrmovq"
	Catalog[OPQ][ALUAdd] = "addq"
	Catalog[OPQ][ALUSub] = "subq"
	Catalog[OPQ][ALUAnd] = "andq"
	Catalog[OPQ][ALUXor] = "xorq"
	Catalog[CALL][0] = "call"
	Catalog[RET][0] = "ret"
	Catalog[PUSHQ][0] = "pushq"
	Catalog[POPQ][0] = "popq"
}

var condSuffix = [CondCount]string{"", "le", "l", "e", "ne", "ge", "g"}

// Mnemonic returns the assembly mnemonic for a class/function pair, or ""
// if the pair is not a legal instruction.
func Mnemonic(c ICode, fn Fn) string {
	if !c.Valid() || int(fn) >= CondCount || !ValidFn(c, fn) {
		return ""
	}
	return Catalog[c][fn]
}

// Decode decodes the instruction at the start of code. It returns the
// instruction and its encoded length.
func Decode(code []byte) (Instruction, int, error) {
	if len(code) == 0 {
		return Instruction{}, 0, fmt.Errorf("empty instruction stream")
	}
	c, fn := Split(code[0])
	if Mnemonic(c, fn) == "" {
		return Instruction{}, 0, fmt.Errorf("invalid instruction byte 0x%02x", code[0])
	}
	n := Length(c)
	if len(code) < n {
		return Instruction{}, 0, fmt.Errorf("truncated %s: need %d bytes, have %d", Catalog[c][fn], n, len(code))
	}

	in := Instruction{Code: c, Fn: fn, RA: RegNone, RB: RegNone}
	off := 1
	if NeedsRegs(c) {
		in.RA, in.RB = SplitRegs(code[off])
		off++
	}
	if NeedsValC(c) {
		in.ValC = int64(binary.LittleEndian.Uint64(code[off:]))
	}
	return in, n, nil
}

// Disassemble returns assembly text for an instruction, in the operand
// syntax of the Y86-64 assembler.
func Disassemble(in Instruction) string {
	m := Mnemonic(in.Code, in.Fn)
	switch in.Code {
	case HALT, NOP, RET:
		return m
	case RRMOVQ, OPQ:
		return fmt.Sprintf("%s %%%s, %%%s", m, in.RA, in.RB)
	case IRMOVQ:
		return fmt.Sprintf("%s $%d, %%%s", m, in.ValC, in.RB)
	case RMMOVQ:
		return fmt.Sprintf("%s %%%s, %s", m, in.RA, memOperand(in.ValC, in.RB))
	case MRMOVQ:
		return fmt.Sprintf("%s %s, %%%s", m, memOperand(in.ValC, in.RB), in.RA)
	case JXX, CALL:
		return fmt.Sprintf("%s 0x%x", m, uint64(in.ValC))
	case PUSHQ, POPQ:
		return fmt.Sprintf("%s %%%s", m, in.RA)
	}
	return fmt.Sprintf(".byte 0x%x", uint8(in.Code)<<4|uint8(in.Fn))
}

func memOperand(disp int64, base RegID) string {
	if base == RegNone {
		return fmt.Sprintf("%d", disp)
	}
	if disp == 0 {
		return fmt.Sprintf("(%%%s)", base)
	}
	return fmt.Sprintf("%d(%%%s)", disp, base)
}
