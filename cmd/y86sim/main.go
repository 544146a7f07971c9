package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/oisee/y86-sim/pkg/cpu"
	"github.com/oisee/y86-sim/pkg/isa"
	"github.com/oisee/y86-sim/pkg/loader"
	"github.com/oisee/y86-sim/pkg/sim"
	"github.com/oisee/y86-sim/pkg/trace"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Output goes to the command's out and
// err writers, which default to stdout and stderr.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "y86sim",
		Short:        "Y86-64 sequential processor simulator",
		SilenceUsage: true,
	}

	// run command
	var runCfg sim.Config
	var output, indent, checkpoint string

	runCmd := &cobra.Command{
		Use:   "run [file.yo|-]",
		Short: "Simulate an object program and write its JSON trace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := readProgram(cmd, args)
			if err != nil {
				return err
			}
			runCfg.Log = cmd.ErrOrStderr()

			t, err := sim.Run(program, runCfg)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := trace.WriteJSON(w, t, indent); err != nil {
				return fmt.Errorf("write trace: %w", err)
			}

			if checkpoint != "" {
				if err := trace.Save(checkpoint, program, t); err != nil {
					return err
				}
				if runCfg.Verbose {
					fmt.Fprintf(cmd.ErrOrStderr(), "Checkpoint written to %s\n", checkpoint)
				}
			}
			return nil
		},
	}
	addRunFlags(runCmd.Flags(), &runCfg)
	runCmd.Flags().StringVarP(&output, "output", "o", "", "Output JSON file path (default stdout)")
	runCmd.Flags().StringVar(&indent, "indent", "", "Indent string for the JSON output")
	runCmd.Flags().StringVar(&checkpoint, "checkpoint", "", "Also save program and trace as a gob checkpoint")

	// disasm command
	var disasmMem uint64

	disasmCmd := &cobra.Command{
		Use:   "disasm [file.yo|-]",
		Short: "Disassemble the loaded image of an object program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := readProgram(cmd, args)
			if err != nil {
				return err
			}
			return disassemble(cmd.OutOrStdout(), program, disasmMem)
		},
	}
	disasmCmd.Flags().Uint64Var(&disasmMem, "mem-size", cpu.DefaultMemSize, "Memory size in bytes")

	// verify command
	var verifyCfg sim.Config

	verifyCmd := &cobra.Command{
		Use:   "verify [file.yo] [trace.json|trace.gob]",
		Short: "Re-run a program and compare against a recorded trace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := readProgram(cmd, args[:1])
			if err != nil {
				return err
			}
			want, err := readTrace(args[1])
			if err != nil {
				return err
			}
			verifyCfg.Log = cmd.ErrOrStderr()

			got, err := sim.Run(program, verifyCfg)
			if err != nil {
				return err
			}
			if m := trace.Compare(want, got); m != nil {
				return m
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d snapshots match (%s)\n", got.Len(), got.Final().Stat)
			return nil
		},
	}
	addRunFlags(verifyCmd.Flags(), &verifyCfg)

	// dump command
	var step int

	dumpCmd := &cobra.Command{
		Use:   "dump [trace.json|trace.gob]",
		Short: "Pretty print one snapshot of a trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTrace(args[0])
			if err != nil {
				return err
			}
			i := step
			if i < 0 {
				i = t.Len() - 1
			}
			w := cmd.OutOrStdout()
			return trace.Dump(w, t, i, isTerminal(w))
		},
	}
	dumpCmd.Flags().IntVar(&step, "step", -1, "Snapshot index (-1 = final)")

	// batch command
	var batchCfg sim.Config
	var numWorkers int
	var outputDir string
	var stats bool

	batchCmd := &cobra.Command{
		Use:   "batch [files...]",
		Short: "Simulate many object programs in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stats {
				if err := launchStats(cmd.ErrOrStderr()); err != nil {
					return err
				}
			}

			jobs := make([]sim.Job, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				jobs = append(jobs, sim.Job{Name: path, Program: string(data)})
			}
			if outputDir != "" {
				if err := os.MkdirAll(outputDir, 0o755); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			pool := sim.NewPool(numWorkers, batchCfg)
			fmt.Fprintf(out, "Y86-64 batch: %d programs, %d workers\n", len(jobs), pool.NumWorkers)

			for _, r := range pool.RunAll(ctx, jobs) {
				if r.Err != nil {
					fmt.Fprintf(out, "  FAIL %v\n", r.Err)
					continue
				}
				final := r.Trace.Final()
				fmt.Fprintf(out, "  %-32s %6d cycles  %s  PC=%#x\n", r.Name, r.Trace.Cycles(), final.Stat, final.PC)
				if outputDir != "" {
					if err := writeTraceFile(filepath.Join(outputDir, traceName(r.Name)), r.Trace); err != nil {
						return err
					}
				}
			}

			completed, failed := pool.Stats()
			fmt.Fprintf(out, "\n%d completed, %d failed\n", completed, failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d programs failed", failed, len(jobs))
			}
			return nil
		},
	}
	addRunFlags(batchCmd.Flags(), &batchCfg)
	batchCmd.Flags().IntVar(&numWorkers, "workers", 0, "Number of workers (0 = NumCPU)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for per-program JSON traces")
	batchCmd.Flags().BoolVar(&stats, "statsview", false, "Serve runtime statistics while running")

	rootCmd.AddCommand(runCmd, disasmCmd, verifyCmd, dumpCmd, batchCmd)
	return rootCmd
}

// addRunFlags registers the simulation flags shared by run, verify and batch.
func addRunFlags(fs *pflag.FlagSet, cfg *sim.Config) {
	fs.IntVar(&cfg.MaxSteps, "max-steps", sim.DefaultMaxSteps, "Maximum number of cycles")
	fs.Uint64Var(&cfg.MemSize, "mem-size", cpu.DefaultMemSize, "Memory size in bytes")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every executed instruction to stderr")
}

// readProgram reads the object file named by args[0], or the command's input
// when there is no argument or it is "-".
func readProgram(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readTrace opens a JSON trace, or a gob checkpoint when the name ends in
// ".gob".
func readTrace(path string) (*trace.Trace, error) {
	if strings.HasSuffix(path, ".gob") {
		_, t, err := trace.Load(path)
		return t, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := trace.ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// isTerminal reports whether w is a terminal, for coloured dumps.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeTraceFile(path string, t *trace.Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := trace.WriteJSON(f, t, ""); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// traceName maps "progs/sum.yo" to "sum.json".
func traceName(program string) string {
	base := filepath.Base(program)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

// disassemble loads text and lists the instructions in the span its records
// cover. A run of zero bytes is shown as one halt followed by padding.
func disassemble(w io.Writer, text string, memSize uint64) error {
	mem := cpu.NewMemory(memSize)
	if _, err := loader.Load(text, mem); err != nil {
		return err
	}
	lo, hi, _ := loader.Extent(text)

	for addr := lo; addr < hi; {
		code := window(mem, addr, hi)
		if len(code) == 0 {
			break
		}
		if zeros := zeroRun(mem, addr, hi); zeros > 1 {
			fmt.Fprintf(w, "0x%03x: %-20s | halt\n", addr, "00")
			fmt.Fprintf(w, "0x%03x: %-20s | .zero %d\n", addr+1, "", zeros-1)
			addr += zeros
			continue
		}

		in, n, err := isa.Decode(code)
		if err != nil {
			fmt.Fprintf(w, "0x%03x: %-20x | .byte 0x%02x\n", addr, code[:1], code[0])
			addr++
			continue
		}
		fmt.Fprintf(w, "0x%03x: %-20x | %s\n", addr, code[:n], isa.Disassemble(in))
		addr += uint64(n)
	}
	return nil
}

// window returns up to one maximal instruction's worth of bytes at addr,
// stopping at hi.
func window(mem *cpu.Memory, addr, hi uint64) []byte {
	code := make([]byte, 0, 10)
	for a := addr; a < hi && len(code) < cap(code); a++ {
		b, err := mem.ReadByteAt(a)
		if err != nil {
			break
		}
		code = append(code, b)
	}
	return code
}

func zeroRun(mem *cpu.Memory, addr, hi uint64) uint64 {
	var n uint64
	for a := addr; a < hi; a++ {
		b, err := mem.ReadByteAt(a)
		if err != nil || b != 0 {
			break
		}
		n++
	}
	return n
}
