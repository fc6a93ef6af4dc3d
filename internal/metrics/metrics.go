// Package metrics holds the Prometheus collectors a pool reports to.
//
// A nil *Metrics is valid and records nothing, so pools built without
// metrics call the same methods as instrumented ones.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for one or more pools.
type Metrics struct {
	JobsSubmitted prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsPanicked  prometheus.Counter
	BusyWorkers   prometheus.Gauge
	LiveWorkers   prometheus.Gauge
	JobDuration   prometheus.Histogram
}

// New creates the collectors under namespace and registers them with reg.
// Registration errors, such as registering the same namespace twice on one
// registry, are returned unchanged.
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		JobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_submitted_total",
			Help:      "Total number of jobs handed to Execute",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_completed_total",
			Help:      "Total number of jobs that returned normally",
		}),
		JobsPanicked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_panicked_total",
			Help:      "Total number of jobs that panicked and took their worker down",
		}),
		BusyWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "busy_workers",
			Help:      "Number of workers currently running a job",
		}),
		LiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "live_workers",
			Help:      "Number of worker goroutines that have not exited",
		}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "job_duration_seconds",
			Help:      "Histogram of job execution time",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{
		m.JobsSubmitted,
		m.JobsCompleted,
		m.JobsPanicked,
		m.BusyWorkers,
		m.LiveWorkers,
		m.JobDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// JobSubmitted records a job accepted by Execute.
func (m *Metrics) JobSubmitted() {
	if m == nil {
		return
	}
	m.JobsSubmitted.Inc()
}

// JobStarted records a worker picking up a job.
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.BusyWorkers.Inc()
}

// JobDone records a job that returned after running for d.
func (m *Metrics) JobDone(d time.Duration) {
	if m == nil {
		return
	}
	m.BusyWorkers.Dec()
	m.JobsCompleted.Inc()
	m.JobDuration.Observe(d.Seconds())
}

// JobPanicked records a job that panicked.
func (m *Metrics) JobPanicked() {
	if m == nil {
		return
	}
	m.BusyWorkers.Dec()
	m.JobsPanicked.Inc()
}

// WorkerStarted records a new worker goroutine.
func (m *Metrics) WorkerStarted() {
	if m == nil {
		return
	}
	m.LiveWorkers.Inc()
}

// WorkerStopped records a worker goroutine exiting.
func (m *Metrics) WorkerStopped() {
	if m == nil {
		return
	}
	m.LiveWorkers.Dec()
}
