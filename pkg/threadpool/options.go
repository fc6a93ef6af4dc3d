package threadpool

import (
	"github.com/pgvanniekerk/ezpool/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Metrics is a set of Prometheus collectors a pool reports job and worker
// counts to. Create one with NewMetrics and hand it to WithMetrics. Several
// pools may share one Metrics; their counts are then aggregated.
type Metrics = metrics.Metrics

// NewMetrics creates the pool collectors under namespace and registers them
// with reg. It fails if the collectors are already registered.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	return metrics.New(reg, namespace)
}

// options represents the optional configuration of a ThreadPool.
type options struct {
	name    string
	logger  log.FieldLogger
	metrics *Metrics
}

// Option defines a functional option for customizing a ThreadPool.
type Option func(*options)

// WithName sets the name the pool logs under. Defaults to a random UUID.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger receiving pool and worker events. Defaults to
// the logrus standard logger.
func WithLogger(logger log.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics makes the pool report to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
