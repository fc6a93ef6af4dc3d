package worker

import (
	"sync"
	"time"

	"github.com/pgvanniekerk/ezpool/internal/channel"
	"github.com/pgvanniekerk/ezpool/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Job is a unit of work run once by a single worker.
type Job func()

// Worker is a goroutine that repeatedly receives jobs from a shared channel
// and runs them, one at a time, until the channel is closed and drained.
type Worker struct {

	// id identifies the worker within its pool, 0..size-1.
	id int

	// mu guards done.
	mu *sync.Mutex

	// done is closed when the worker goroutine exits. It is set to nil once
	// the worker has been joined, making further joins no-ops.
	done chan struct{}
}

// Spawn starts a worker goroutine receiving from jobs and returns its handle.
// logger and m receive the worker's lifecycle events; m may be nil.
func Spawn(id int, jobs *channel.Shared[Job], logger log.FieldLogger, m *metrics.Metrics) *Worker {

	w := &Worker{
		id:   id,
		mu:   &sync.Mutex{},
		done: make(chan struct{}),
	}

	m.WorkerStarted()
	go w.run(w.done, jobs, logger.WithField("worker", id), m)

	return w
}

// ID returns the worker's index within its pool.
func (w *Worker) ID() int {
	return w.id
}

// Join blocks until the worker goroutine has exited, then marks the worker
// as joined. Joining an already joined worker returns immediately.
func (w *Worker) Join() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done == nil {
		return
	}

	<-w.done
	w.done = nil
}

// Joinable reports whether the worker still holds a handle that has not been
// joined.
func (w *Worker) Joinable() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done != nil
}

// run is the worker loop; done is closed when it returns. A job that panics
// ends the loop: the panic is logged and counted and the worker exits as it
// would on a closed channel.
func (w *Worker) run(done chan<- struct{}, jobs *channel.Shared[Job], logger log.FieldLogger, m *metrics.Metrics) {

	defer close(done)
	defer m.WorkerStopped()
	defer func() {
		if r := recover(); r != nil {
			m.JobPanicked()
			logger.WithField("panic", r).Error("job panicked; worker exiting")
		}
	}()

	for {
		job, ok := jobs.Recv()
		if !ok {
			logger.Debug("disconnected; shutting down")
			return
		}

		logger.Debug("got a job; executing")

		m.JobStarted()
		start := time.Now()
		job()
		m.JobDone(time.Since(start))
	}
}
