package isa

import "testing"

// TestCatalogMnemonics verifies every legal class/function pair has a mnemonic
// and illegal ones do not.
func TestCatalogMnemonics(t *testing.T) {
	count := 0
	for c := ICode(0); c < 0x10; c++ {
		for fn := Fn(0); fn < 0x10; fn++ {
			m := Mnemonic(c, fn)
			if ValidFn(c, fn) && c.Valid() {
				if m == "" {
					t.Errorf("class %x fn %x: missing mnemonic", c, fn)
				}
				count++
			} else if m != "" {
				t.Errorf("class %x fn %x: unexpected mnemonic %q", c, fn, m)
			}
		}
	}
	// 9 plain classes + 7 moves + 4 ALU ops + 7 jumps
	if count != 27 {
		t.Errorf("legal instructions = %d, want 27", count)
	}
}

func TestLength(t *testing.T) {
	tests := []struct {
		c    ICode
		want int
	}{
		{HALT, 1}, {NOP, 1}, {RRMOVQ, 2}, {IRMOVQ, 10}, {RMMOVQ, 10},
		{MRMOVQ, 10}, {OPQ, 2}, {JXX, 9}, {CALL, 9}, {RET, 1},
		{PUSHQ, 2}, {POPQ, 2},
	}
	for _, tc := range tests {
		if got := Length(tc.c); got != tc.want {
			t.Errorf("Length(%x) = %d, want %d", tc.c, got, tc.want)
		}
	}
}

func TestDecodeDisassemble(t *testing.T) {
	tests := []struct {
		code []byte
		want string
		n    int
	}{
		{[]byte{0x00}, "halt", 1},
		{[]byte{0x10}, "nop", 1},
		{[]byte{0x20, 0x01}, "rrmovq %rax, %rcx", 2},
		{[]byte{0x25, 0x23}, "cmovge %rdx, %rbx", 2},
		{[]byte{0x30, 0xF4, 0x00, 0x02, 0, 0, 0, 0, 0, 0}, "irmovq $512, %rsp", 10},
		{[]byte{0x40, 0x15, 0x08, 0, 0, 0, 0, 0, 0, 0}, "rmmovq %rcx, 8(%rbp)", 10},
		{[]byte{0x50, 0x04, 0, 0, 0, 0, 0, 0, 0, 0}, "mrmovq (%rsp), %rax", 10},
		{[]byte{0x61, 0x23}, "subq %rdx, %rbx", 2},
		{[]byte{0x74, 0x38, 0, 0, 0, 0, 0, 0, 0}, "jne 0x38", 9},
		{[]byte{0x80, 0x00, 0x01, 0, 0, 0, 0, 0, 0}, "call 0x100", 9},
		{[]byte{0x90}, "ret", 1},
		{[]byte{0xA0, 0x5F}, "pushq %rbp", 2},
		{[]byte{0xB0, 0x7F}, "popq %rdi", 2},
	}
	for _, tc := range tests {
		in, n, err := Decode(tc.code)
		if err != nil {
			t.Errorf("Decode(% x): %v", tc.code, err)
			continue
		}
		if n != tc.n {
			t.Errorf("Decode(% x): length %d, want %d", tc.code, n, tc.n)
		}
		if got := Disassemble(in); got != tc.want {
			t.Errorf("Disassemble(% x) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	bad := [][]byte{
		nil,
		{0xC0},             // undefined class
		{0x64, 0x01},       // undefined ALU function
		{0x77, 0, 0, 0, 0}, // undefined condition
		{0x30, 0xF0, 0x01}, // truncated constant
	}
	for _, code := range bad {
		if _, _, err := Decode(code); err == nil {
			t.Errorf("Decode(% x): expected error", code)
		}
	}
}

func TestRegNames(t *testing.T) {
	if RSP.String() != "rsp" || R14.String() != "r14" || RegNone.String() != "none" {
		t.Errorf("unexpected names: %s %s %s", RSP, R14, RegNone)
	}
}
