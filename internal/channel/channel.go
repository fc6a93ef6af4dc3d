package channel

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Sender.Send and Sender.Close once the sending side
// of the channel has been closed.
var ErrClosed = errors.New("channel is closed")

// New creates an unbounded FIFO channel and returns its two ends.
//
// Values sent on the Sender are delivered to the Receiver in the order they
// were sent, each value exactly once. Closing the Sender does not discard
// values already sent: the Receiver keeps returning them until the buffer is
// empty and only then reports the channel as closed.
func New[T any]() (*Sender[T], *Receiver[T]) {

	mu := &sync.Mutex{}

	q := &queue[T]{
		mu:   mu,
		cond: sync.NewCond(mu),
	}

	return &Sender[T]{q: q}, &Receiver[T]{q: q}
}

// queue is the state shared between a Sender and its Receiver.
type queue[T any] struct {

	// mu protects buf and closed.
	mu *sync.Mutex

	// cond is signalled when a value is appended to buf and broadcast
	// when the channel is closed, waking receivers blocked in Recv.
	cond *sync.Cond

	// buf holds the values sent but not yet received, oldest first.
	buf []T

	// closed is set once by Sender.Close and never reset.
	closed bool
}

//region Sender

// Sender is the sending end of a channel created by New.
type Sender[T any] struct {
	q *queue[T]
}

// Send appends v to the channel without blocking. It returns ErrClosed if
// the channel has been closed.
func (s *Sender[T]) Send(v T) error {
	s.q.mu.Lock()
	defer s.q.mu.Unlock()

	if s.q.closed {
		return ErrClosed
	}

	s.q.buf = append(s.q.buf, v)

	// Wake a single receiver, the value can only be delivered once.
	s.q.cond.Signal()

	return nil
}

// Close marks the channel as closed. Receivers blocked on an empty channel
// are woken and observe the closure. Closing twice returns ErrClosed.
func (s *Sender[T]) Close() error {
	s.q.mu.Lock()
	defer s.q.mu.Unlock()

	if s.q.closed {
		return ErrClosed
	}

	s.q.closed = true
	s.q.cond.Broadcast()

	return nil
}

//endregion

//region Receiver

// Receiver is the receiving end of a channel created by New.
type Receiver[T any] struct {
	q *queue[T]
}

// Recv blocks until a value is available or the channel is closed and
// drained. The boolean is false only in the latter case.
func (r *Receiver[T]) Recv() (T, bool) {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()

	for len(r.q.buf) == 0 && !r.q.closed {
		r.q.cond.Wait()
	}

	var zero T
	if len(r.q.buf) == 0 {
		return zero, false
	}

	v := r.q.buf[0]
	r.q.buf[0] = zero // release the reference held by the backing array
	r.q.buf = r.q.buf[1:]

	return v, true
}

// Len returns the number of values sent but not yet received.
func (r *Receiver[T]) Len() int {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return len(r.q.buf)
}

//endregion
