package pool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pgvanniekerk/ezpool/internal/channel"
	"github.com/pgvanniekerk/ezpool/internal/metrics"
	"github.com/pgvanniekerk/ezpool/internal/worker"
	log "github.com/sirupsen/logrus"
)

// Options carries the optional collaborators of a Pool. The zero value is
// usable: the pool gets a random name, logs to the logrus standard logger
// and records no metrics.
type Options struct {
	Name    string
	Logger  log.FieldLogger
	Metrics *metrics.Metrics
}

// Pool is a fixed set of workers sharing one job channel.
// Jobs handed to Execute are run exactly once, by whichever worker claims
// them first, in the order they were submitted. Close shuts the pool down.
type Pool struct {

	// name identifies the pool in logs.
	name string

	// logger receives pool and worker lifecycle events.
	logger log.FieldLogger

	// metrics receives job and worker counts. May be nil.
	metrics *metrics.Metrics

	// workers is the ordered worker set, index i holds the worker with id i.
	workers []*worker.Worker

	// sender is the submission end of the job channel. It stays open until
	// Close is called.
	sender *channel.Sender[worker.Job]

	// closeMutex serializes Close calls.
	closeMutex *sync.Mutex

	// closed is set by the first Close call.
	closed bool
}

//region Constructor

// New spawns size workers and returns the pool that owns them.
// It returns ErrPoolCreation, and spawns nothing, when size is 0.
func New(size uint, opts Options) (*Pool, error) {

	if size == 0 {
		return nil, ErrPoolCreation
	}

	if opts.Name == "" {
		opts.Name = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}

	logger := opts.Logger.WithField("pool", opts.Name)

	sender, receiver := channel.New[worker.Job]()
	jobs := channel.Share(receiver)

	p := &Pool{
		name:       opts.Name,
		logger:     logger,
		metrics:    opts.Metrics,
		workers:    make([]*worker.Worker, 0, size),
		sender:     sender,
		closeMutex: &sync.Mutex{},
	}

	for id := 0; id < int(size); id++ {
		p.workers = append(p.workers, worker.Spawn(id, jobs, logger, opts.Metrics))
	}

	logger.WithField("workers", size).Debug("pool started")

	return p, nil
}

//endregion

//region Implementation

// Execute queues job for execution and returns without waiting for it to
// run. It panics if job is nil or if the pool has been closed; both are
// usage errors.
func (p *Pool) Execute(job worker.Job) {

	if job == nil {
		panic(errors.New("cannot call Execute with a nil job"))
	}

	if err := p.sender.Send(job); err != nil {
		panic(fmt.Errorf("cannot call Execute on a closed ThreadPool: %w", err))
	}

	p.metrics.JobSubmitted()
}

// Close closes the job channel and then joins every worker in id order.
// Jobs already queued are still run before the workers exit. Close blocks
// until all workers have exited; calling it again is a no-op.
func (p *Pool) Close() {
	p.closeMutex.Lock()
	defer p.closeMutex.Unlock()

	// Ensure p is not already closed.
	if p.closed {
		return
	}
	p.closed = true

	// Workers blocked on an empty channel wake up and exit once this returns.
	_ = p.sender.Close()

	for _, w := range p.workers {
		p.logger.WithField("worker", w.ID()).Debug("shutting down worker")
		w.Join()
	}

	p.logger.Debug("pool stopped")
}

// Size returns the number of workers the pool was created with.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Name returns the name the pool logs under.
func (p *Pool) Name() string {
	return p.name
}

//endregion

//region Helpers

// joinable returns the ids of workers whose handle has not been joined.
func (p *Pool) joinable() []int {
	var ids []int
	for _, w := range p.workers {
		if w.Joinable() {
			ids = append(ids, w.ID())
		}
	}
	return ids
}

//endregion
