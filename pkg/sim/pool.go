package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/oisee/y86-sim/pkg/trace"
)

// Job is one program to simulate.
type Job struct {
	Name    string
	Program string
}

// Result is the outcome of one Job. Err is a load failure, or the context
// error if the job was never started.
type Result struct {
	Name  string
	Trace *trace.Trace
	Err   error
}

// Pool runs independent simulations in parallel. Each job gets its own
// processor and memory; nothing is shared between runs.
type Pool struct {
	NumWorkers int
	Config     Config
	completed  atomic.Int64
	failed     atomic.Int64
}

// NewPool creates a pool with the given number of workers.
func NewPool(numWorkers int, cfg Config) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{NumWorkers: numWorkers, Config: cfg}
}

// Stats returns the number of jobs completed and the number that failed to
// load or were cancelled.
func (p *Pool) Stats() (completed, failed int64) {
	return p.completed.Load(), p.failed.Load()
}

// RunAll simulates every job and returns the results in job order. Once ctx
// is done no further jobs are started; simulations already running finish.
func (p *Pool) RunAll(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	ch := make(chan int, len(jobs))
	for i := range jobs {
		ch <- i
	}
	close(ch)

	// Verbose output from concurrent runs would interleave
	cfg := p.Config
	cfg.Verbose = false

	var wg sync.WaitGroup
	for w := 0; w < p.NumWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				results[i] = p.runJob(ctx, jobs[i], cfg)
			}
		}()
	}
	wg.Wait()
	return results
}

func (p *Pool) runJob(ctx context.Context, job Job, cfg Config) Result {
	res := Result{Name: job.Name}
	if err := ctx.Err(); err != nil {
		res.Err = err
		p.failed.Add(1)
		return res
	}

	res.Trace, res.Err = Run(job.Program, cfg)
	if res.Err != nil {
		res.Err = fmt.Errorf("%s: %w", job.Name, res.Err)
		p.failed.Add(1)
	} else {
		p.completed.Add(1)
	}
	return res
}
