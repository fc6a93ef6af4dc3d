// Package threadpool provides a fixed-size worker pool for fire-and-forget jobs.
//
// A ThreadPool spawns a fixed number of worker goroutines when it is created.
// Callers hand it jobs, plain func() closures, through Execute; each job is
// run exactly once by whichever worker claims it first. Close shuts the pool
// down and does not return until every worker has exited.
//
// # Overview
//
// Key properties:
//   - Workers are spawned eagerly; the pool never grows or shrinks on its own
//   - Execute never blocks on a busy pool, the job queue is unbounded
//   - Jobs are handed to workers in submission order (FIFO)
//   - A worker holds the queue lock only while receiving, never while running a job
//   - Close drains the queue: every job submitted before Close still runs
//   - Close joins the workers in order and is safe to call more than once
//
// There is deliberately no result path, no prioritization, no per-job
// timeout and no resizing. A job that needs any of these carries it itself,
// for example by closing over a result channel or a context.
//
// # Usage
//
//	package main
//
//	import (
//		"fmt"
//		"sync"
//
//		"github.com/pgvanniekerk/ezpool/pkg/threadpool"
//	)
//
//	func main() {
//		p := threadpool.New(4)
//		defer p.Close()
//
//		var mu sync.Mutex
//		total := 0
//
//		for i := 1; i <= 100; i++ {
//			p.Execute(func() {
//				mu.Lock()
//				total += i
//				mu.Unlock()
//			})
//		}
//
//		p.Close() // waits for all 100 jobs
//		fmt.Println(total)
//	}
//
// # Construction Errors
//
// A pool with zero workers cannot run anything. New treats that as a
// programmer error and panics with ErrPoolCreation; Build returns the same
// error so that sizes coming from configuration can be validated:
//
//	p, err := threadpool.Build(cfg.Workers)
//	if err != nil {
//		return fmt.Errorf("creating pool: %w", err)
//	}
//	defer p.Close()
//
// # Failing Jobs
//
// The pool does not retry or report failing jobs. A job that panics takes
// its worker down with it: the panic is logged and counted, the worker
// exits, and the pool continues with one worker less. Close still returns
// normally. Jobs that can fail should recover and report on their own.
//
// # Observability
//
// Pools log through logrus (see WithLogger) with "pool" and "worker"
// fields, and can report job and worker counts to Prometheus:
//
//	reg := prometheus.NewRegistry()
//	m, err := threadpool.NewMetrics(reg, "myapp")
//	if err != nil {
//		return err
//	}
//	p := threadpool.New(8, threadpool.WithName("ingest"), threadpool.WithMetrics(m))
package threadpool
