package sim

import (
	"bytes"
	"errors"
	"testing"

	"github.com/oisee/y86-sim/pkg/cpu"
	"github.com/oisee/y86-sim/pkg/loader"
	. "github.com/onsi/gomega"
)

const haltProgram = "0x000: 00 | halt\n"

const addProgram = `
                            | # 5 + 3
0x000: 30f00500000000000000 |   irmovq $5, %rax
0x00a: 30f30300000000000000 |   irmovq $3, %rbx
0x014: 6003                 |   addq %rax, %rbx
0x016: 00                   |   halt
`

const overflowProgram = `
0x000: 30f0ffffffffffffff7f |   irmovq $0x7fffffffffffffff, %rax
0x00a: 30f30100000000000000 |   irmovq $1, %rbx
0x014: 6003                 |   addq %rax, %rbx
0x016: 00                   |   halt
`

const callProgram = `
0x000: 30f40001000000000000 |   irmovq $0x100, %rsp
0x00a: 802000000000000000   |   call fn
0x013: 00                   |   halt
0x020:                      | fn:
0x020: 90                   |   ret
`

func TestHaltOnly(t *testing.T) {
	g := NewWithT(t)

	tr, err := Run(haltProgram, Config{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(tr.Steps).To(HaveLen(2))

	g.Expect(tr.Steps[0].PC).To(BeZero())
	g.Expect(tr.Steps[0].Stat).To(Equal(cpu.AOK))
	g.Expect(tr.Final().Stat).To(Equal(cpu.HLT))
	g.Expect(tr.Final().PC).To(BeZero())
	g.Expect(tr.Halted()).To(BeTrue())
}

func TestAdd(t *testing.T) {
	g := NewWithT(t)

	tr, err := Run(addProgram, Config{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(tr.Cycles()).To(Equal(4))

	final := tr.Final()
	g.Expect(final.Reg).To(HaveKeyWithValue("rax", int64(5)))
	g.Expect(final.Reg).To(HaveKeyWithValue("rbx", int64(8)))
	g.Expect(final.CC.ZF).To(BeZero())
	g.Expect(final.PC).To(Equal(uint64(0x16)))

	// flags are untouched until the addq
	g.Expect(tr.Steps[2].CC.ZF).To(Equal(uint8(1)))
}

func TestOverflow(t *testing.T) {
	g := NewWithT(t)

	tr, err := Run(overflowProgram, Config{})
	g.Expect(err).NotTo(HaveOccurred())

	final := tr.Final()
	g.Expect(final.Reg["rbx"]).To(Equal(int64(-1 << 63)))
	g.Expect(final.CC.OF).To(Equal(uint8(1)))
	g.Expect(final.CC.SF).To(Equal(uint8(1)))
	g.Expect(final.CC.ZF).To(BeZero())
}

func TestCallRet(t *testing.T) {
	g := NewWithT(t)

	tr, err := Run(callProgram, Config{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(tr.Cycles()).To(Equal(4))

	// after call: return address pushed below the initial stack pointer
	afterCall := tr.Steps[2]
	g.Expect(afterCall.PC).To(Equal(uint64(0x20)))
	g.Expect(afterCall.Reg["rsp"]).To(Equal(int64(0xf8)))
	g.Expect(afterCall.Word(0xf8)).To(Equal(uint64(0x13)))

	final := tr.Final()
	g.Expect(final.Stat).To(Equal(cpu.HLT))
	g.Expect(final.PC).To(Equal(uint64(0x13)))
	g.Expect(final.Reg["rsp"]).To(Equal(int64(0x100)))
	g.Expect(final.Mem).To(HaveKeyWithValue("248", uint64(0x13)))
}

func TestLoadOutOfBounds(t *testing.T) {
	g := NewWithT(t)

	tr, err := Run("0x000: 00\n0x200: 00\n", Config{MemSize: 0x100})
	g.Expect(err).To(HaveOccurred())
	g.Expect(tr).To(BeNil())

	var le *loader.Error
	g.Expect(errors.As(err, &le)).To(BeTrue())
	g.Expect(le.Line).To(Equal(2))
	g.Expect(le.Addr).To(Equal(uint64(0x200)))

	var ae cpu.AddressError
	g.Expect(errors.As(err, &ae)).To(BeTrue())
}

func TestNoRecords(t *testing.T) {
	g := NewWithT(t)

	tr, err := Run("| comments only\n\n", Config{})
	g.Expect(err).To(MatchError(loader.ErrNoRecords))
	g.Expect(tr).To(BeNil())
}

func TestStepCeiling(t *testing.T) {
	g := NewWithT(t)

	// jmp 0
	tr, err := Run("0x000: 700000000000000000\n", Config{MaxSteps: 50})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(tr.Steps).To(HaveLen(51))
	g.Expect(tr.Final().Stat).To(Equal(cpu.AOK))
	g.Expect(tr.Halted()).To(BeFalse())
}

func TestDefaultStepCeiling(t *testing.T) {
	g := NewWithT(t)

	tr, err := Run("0x000: 700000000000000000\n", Config{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(tr.Cycles()).To(Equal(DefaultMaxSteps))
}

func TestFetchFaultEndsTrace(t *testing.T) {
	g := NewWithT(t)

	// jmp 0x30000, past the end of the default memory
	tr, err := Run("0x000: 700000030000000000\n", Config{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(tr.Steps).To(HaveLen(3))

	final := tr.Final()
	g.Expect(final.Stat).To(Equal(cpu.ADR))
	g.Expect(final.PC).To(Equal(uint64(0x30000)))
	g.Expect(tr.Halted()).To(BeFalse())
}

func TestInvalidInstructionEndsTrace(t *testing.T) {
	g := NewWithT(t)

	tr, err := Run("0x000: 10\n0x001: f0\n", Config{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(tr.Steps).To(HaveLen(3))
	g.Expect(tr.Final().Stat).To(Equal(cpu.INS))
	g.Expect(tr.Final().PC).To(Equal(uint64(1)))
	g.Expect(tr.Halted()).To(BeFalse())
}

func TestVerboseLog(t *testing.T) {
	g := NewWithT(t)

	var buf bytes.Buffer
	_, err := Run(addProgram, Config{Verbose: true, Log: &buf})
	g.Expect(err).NotTo(HaveOccurred())

	out := buf.String()
	g.Expect(out).To(ContainSubstring("Loaded 4 records"))
	g.Expect(out).To(ContainSubstring("irmovq $5, %rax"))
	g.Expect(out).To(ContainSubstring("addq %rax, %rbx"))
	g.Expect(out).To(ContainSubstring("Finished after 4 cycles: HLT"))
	g.Expect(out).To(ContainSubstring("PC 0000000000000016 STAT HLT ZF 0 SF 0 OF 0"))
	g.Expect(out).To(ContainSubstring("rbx 0000000000000008"))
}

func TestVerboseLogFault(t *testing.T) {
	g := NewWithT(t)

	var buf bytes.Buffer
	_, err := Run("0x000: f0\n", Config{Verbose: true, Log: &buf})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(buf.String()).To(ContainSubstring("?"))
	g.Expect(buf.String()).To(ContainSubstring("INS"))
}
