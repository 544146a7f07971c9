package sim

import (
	"context"
	"fmt"
	"testing"

	"github.com/oisee/y86-sim/pkg/cpu"
	"github.com/oisee/y86-sim/pkg/loader"
	. "github.com/onsi/gomega"
)

func TestPoolRunAll(t *testing.T) {
	g := NewWithT(t)

	jobs := []Job{
		{Name: "halt", Program: haltProgram},
		{Name: "add", Program: addProgram},
		{Name: "empty", Program: "nothing here\n"},
		{Name: "call", Program: callProgram},
	}
	pool := NewPool(2, Config{})
	results := pool.RunAll(context.Background(), jobs)
	g.Expect(results).To(HaveLen(len(jobs)))

	for i, r := range results {
		g.Expect(r.Name).To(Equal(jobs[i].Name))
	}
	g.Expect(results[0].Err).NotTo(HaveOccurred())
	g.Expect(results[0].Trace.Steps).To(HaveLen(2))
	g.Expect(results[1].Trace.Final().Reg["rbx"]).To(Equal(int64(8)))
	g.Expect(results[2].Err).To(MatchError(loader.ErrNoRecords))
	g.Expect(results[2].Err.Error()).To(HavePrefix("empty: "))
	g.Expect(results[2].Trace).To(BeNil())
	g.Expect(results[3].Trace.Final().Stat).To(Equal(cpu.HLT))

	completed, failed := pool.Stats()
	g.Expect(completed).To(Equal(int64(3)))
	g.Expect(failed).To(Equal(int64(1)))
}

func TestPoolManyJobs(t *testing.T) {
	g := NewWithT(t)

	// each program loads a different constant into %rax
	var jobs []Job
	for i := 0; i < 32; i++ {
		jobs = append(jobs, Job{
			Name:    fmt.Sprintf("job%d", i),
			Program: fmt.Sprintf("0x000: 30f0%02x00000000000000\n0x00a: 00\n", i),
		})
	}
	results := NewPool(0, Config{}).RunAll(context.Background(), jobs)
	for i, r := range results {
		g.Expect(r.Err).NotTo(HaveOccurred())
		g.Expect(r.Trace.Final().Reg["rax"]).To(Equal(int64(i)), "job %d", i)
	}
}

func TestPoolCancelled(t *testing.T) {
	g := NewWithT(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{Name: "a", Program: haltProgram}, {Name: "b", Program: haltProgram}}
	pool := NewPool(1, Config{})
	results := pool.RunAll(ctx, jobs)
	for _, r := range results {
		g.Expect(r.Err).To(MatchError(context.Canceled))
		g.Expect(r.Trace).To(BeNil())
	}

	completed, failed := pool.Stats()
	g.Expect(completed).To(BeZero())
	g.Expect(failed).To(Equal(int64(2)))
}
