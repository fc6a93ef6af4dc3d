package threadpool

import (
	"github.com/pgvanniekerk/ezpool/internal/pool"
	"github.com/pgvanniekerk/ezpool/internal/worker"
)

// Job is a unit of work submitted to a ThreadPool. It takes no arguments and
// returns nothing; anything it shares with other jobs must be synchronized by
// the caller.
type Job = worker.Job

// ThreadPool runs submitted jobs on a fixed set of worker goroutines.
//
// Every job passed to Execute before Close is called runs exactly once, on
// exactly one worker. Jobs are handed to workers in the order they were
// submitted; once several are in flight they may finish in any order.
type ThreadPool interface {

	// Execute queues job for execution and returns immediately. It does not
	// wait for the job to start or finish.
	//
	// Calling Execute after Close panics, as does passing a nil job.
	Execute(job Job)

	// Close shuts the pool down. It stops accepting jobs, lets the workers
	// finish the running jobs and everything still queued, then waits for
	// every worker goroutine to exit, in worker order.
	//
	// Close blocks until the last worker has exited. Calling Close again is
	// a no-op. A pool must always be closed, typically with defer.
	Close()

	// Size returns the number of workers spawned by the pool.
	Size() int

	// Name returns the name the pool uses in log fields.
	Name() string
}

// New creates a ThreadPool with size workers, all spawned before New returns.
//
// Arguments:
//   - size: the number of workers. Must be greater than 0.
//   - opts: optional settings, see WithName, WithLogger and WithMetrics.
//
// Panics:
//   - If size is 0, New panics with ErrPoolCreation. Use Build to get the
//     error returned instead.
//
// Usage Example:
//
//	p := threadpool.New(4)
//	defer p.Close()
//
//	for i := 0; i < 10; i++ {
//	    p.Execute(func() {
//	        fmt.Println("processing", i)
//	    })
//	}
func New(size uint, opts ...Option) ThreadPool {
	p, err := Build(size, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Build is like New but returns ErrPoolCreation instead of panicking when
// size is 0. No worker is spawned in that case.
//
// Usage Example:
//
//	p, err := threadpool.Build(cfg.Workers)
//	if errors.Is(err, threadpool.ErrPoolCreation) {
//	    log.Fatalf("invalid pool size: %v", err)
//	}
//	defer p.Close()
func Build(size uint, opts ...Option) (ThreadPool, error) {

	options := &options{}
	for idx := range opts {
		opts[idx](options)
	}

	p, err := pool.New(size, pool.Options{
		Name:    options.name,
		Logger:  options.logger,
		Metrics: options.metrics,
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}
