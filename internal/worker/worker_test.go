package worker

import (
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pgvanniekerk/ezpool/internal/channel"
	"github.com/pgvanniekerk/ezpool/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

// TestWorker_TestSuite executes the test suite for the Worker type.
func TestWorker_TestSuite(t *testing.T) {
	suite.Run(t, new(Worker_TestSuite))
}

// Worker_TestSuite runs a single worker against a fresh channel.
type Worker_TestSuite struct {
	suite.Suite

	tx      *channel.Sender[Job]
	jobs    *channel.Shared[Job]
	logger  *log.Logger
	metrics *metrics.Metrics
}

// SetupTest creates a channel, a silent logger and a private registry.
func (w *Worker_TestSuite) SetupTest() {
	tx, rx := channel.New[Job]()
	w.tx = tx
	w.jobs = channel.Share(rx)

	w.logger = log.New()
	w.logger.SetOutput(io.Discard)

	m, err := metrics.New(prometheus.NewRegistry(), "test")
	w.Require().NoError(err)
	w.metrics = m
}

// TestWorker_RunsJobsUntilClosed ensures the worker runs every job sent
// before the channel was closed and then exits.
func (w *Worker_TestSuite) TestWorker_RunsJobsUntilClosed() {
	var count atomic.Int32

	wk := Spawn(0, w.jobs, w.logger, w.metrics)
	w.Require().Equal(0, wk.ID())

	for i := 0; i < 10; i++ {
		w.Require().NoError(w.tx.Send(func() { count.Add(1) }))
	}
	w.Require().NoError(w.tx.Close())

	wk.Join()

	w.Require().Equal(int32(10), count.Load())
	w.Require().Equal(float64(10), testutil.ToFloat64(w.metrics.JobsCompleted))
	w.Require().Equal(float64(0), testutil.ToFloat64(w.metrics.LiveWorkers))
}

// TestWorker_Join_ClearsHandle ensures a joined worker is no longer joinable
// and that joining again does not block.
func (w *Worker_TestSuite) TestWorker_Join_ClearsHandle() {
	wk := Spawn(3, w.jobs, w.logger, w.metrics)
	w.Require().True(wk.Joinable())

	w.Require().NoError(w.tx.Close())
	wk.Join()
	w.Require().False(wk.Joinable())

	done := make(chan struct{})
	go func() {
		wk.Join()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		w.Fail("second Join blocked")
	}
}

// TestWorker_Join_WaitsForRunningJob ensures Join does not return while the
// worker is still inside a job.
func (w *Worker_TestSuite) TestWorker_Join_WaitsForRunningJob() {
	var finished atomic.Bool

	wk := Spawn(0, w.jobs, w.logger, w.metrics)
	w.Require().NoError(w.tx.Send(func() {
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
	}))
	w.Require().NoError(w.tx.Close())

	wk.Join()
	w.Require().True(finished.Load())
}

// TestWorker_PanickingJobStopsWorker ensures a panicking job ends the worker
// without crashing the process and leaves the remaining jobs queued.
func (w *Worker_TestSuite) TestWorker_PanickingJobStopsWorker() {
	var ran atomic.Bool

	w.Require().NoError(w.tx.Send(func() { panic("boom") }))
	w.Require().NoError(w.tx.Send(func() { ran.Store(true) }))

	wk := Spawn(0, w.jobs, w.logger, w.metrics)
	wk.Join()

	w.Require().False(ran.Load())
	w.Require().Equal(1, w.jobs.Len())
	w.Require().Equal(float64(1), testutil.ToFloat64(w.metrics.JobsPanicked))
	w.Require().Equal(float64(0), testutil.ToFloat64(w.metrics.BusyWorkers))
	w.Require().Equal(float64(0), testutil.ToFloat64(w.metrics.LiveWorkers))
}

// TestWorker_LockNotHeldDuringJob ensures a slow job on one worker does not
// stop another worker from claiming the next job.
func (w *Worker_TestSuite) TestWorker_LockNotHeldDuringJob() {
	release := make(chan struct{})
	claimed := make(chan struct{})

	a := Spawn(0, w.jobs, w.logger, w.metrics)
	b := Spawn(1, w.jobs, w.logger, w.metrics)

	w.Require().NoError(w.tx.Send(func() { <-release }))
	w.Require().NoError(w.tx.Send(func() { close(claimed) }))

	select {
	case <-claimed:
	case <-time.After(time.Second):
		w.Fail("second job was not claimed while the first was running")
	}

	close(release)
	w.Require().NoError(w.tx.Close())

	wg := &sync.WaitGroup{}
	for _, wk := range []*Worker{a, b} {
		wg.Add(1)
		go func(wk *Worker) {
			defer wg.Done()
			wk.Join()
		}(wk)
	}
	wg.Wait()
}
