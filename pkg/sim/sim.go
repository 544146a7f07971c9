// Package sim drives a processor over an object program and collects the
// trace of every cycle.
package sim

import (
	"fmt"
	"io"
	"strings"

	"github.com/oisee/y86-sim/pkg/cpu"
	"github.com/oisee/y86-sim/pkg/isa"
	"github.com/oisee/y86-sim/pkg/loader"
	"github.com/oisee/y86-sim/pkg/trace"
)

// DefaultMaxSteps bounds runaway programs.
const DefaultMaxSteps = 10000

// Config holds simulation configuration.
type Config struct {
	MemSize  uint64    // Memory capacity in bytes (defaults to cpu.DefaultMemSize)
	MaxSteps int       // Cycle ceiling (defaults to DefaultMaxSteps)
	Verbose  bool      // Log every executed instruction
	Log      io.Writer // Destination for verbose output (defaults to io.Discard)
}

func (cfg Config) withDefaults() Config {
	if cfg.MemSize == 0 {
		cfg.MemSize = cpu.DefaultMemSize
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.Log == nil {
		cfg.Log = io.Discard
	}
	return cfg
}

// Run loads program into a fresh processor and executes it until it halts,
// faults or reaches the step ceiling. The returned trace holds the state
// before the first cycle followed by one snapshot per cycle.
//
// A load failure is returned as an error and no trace is produced. Faults
// during execution are not errors; they end the trace with the fault status.
// Reaching the ceiling is not an error either: the last snapshot is then
// still AOK.
func Run(program string, cfg Config) (*trace.Trace, error) {
	return RunReader(strings.NewReader(program), cfg)
}

// RunReader is Run for an io.Reader.
func RunReader(r io.Reader, cfg Config) (*trace.Trace, error) {
	cfg = cfg.withDefaults()

	mem := cpu.NewMemory(cfg.MemSize)
	records, err := loader.LoadReader(r, mem)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}
	if cfg.Verbose {
		fmt.Fprintf(cfg.Log, "Loaded %d records into %#x bytes of memory\n", records, cfg.MemSize)
	}

	p := cpu.NewProcessor(mem)
	t := &trace.Trace{Steps: make([]trace.Snapshot, 0, 64)}
	t.Append(trace.Capture(p))

	for steps := 0; p.Running() && steps < cfg.MaxSteps; steps++ {
		pc := p.PC
		p.Step()
		t.Append(trace.Capture(p))
		if cfg.Verbose {
			logCycle(cfg.Log, steps+1, pc, p)
		}
	}

	if cfg.Verbose {
		if p.Running() {
			fmt.Fprintf(cfg.Log, "Stopped at step ceiling %d, PC=%#x\n", cfg.MaxSteps, p.PC)
		} else {
			fmt.Fprintf(cfg.Log, "Finished after %d cycles: %s at PC=%#x\n", t.Cycles(), p.Stat, p.PC)
		}
		fmt.Fprint(cfg.Log, p)
	}
	return t, nil
}

func logCycle(w io.Writer, step int, pc uint64, p *cpu.Processor) {
	sig := p.Signals()
	text := "?"
	if sig.Fetched {
		text = isa.Disassemble(isa.Instruction{
			Code: sig.ICode, Fn: sig.IFun, RA: sig.RA, RB: sig.RB, ValC: sig.ValC,
		})
	}
	fmt.Fprintf(w, "  [%5d] %#06x  %-28s %s\n", step, pc, text, p.Stat)
}
