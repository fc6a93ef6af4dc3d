package channel

import "sync"

// Shared wraps a Receiver so that several goroutines can take turns
// receiving from it. Only one goroutine at a time is inside Recv; the others
// wait on the lock. The lock covers a single receive and nothing else.
type Shared[T any] struct {
	mu *sync.Mutex
	rx *Receiver[T]
}

// Share wraps rx for use by multiple consumers.
func Share[T any](rx *Receiver[T]) *Shared[T] {
	return &Shared[T]{
		mu: &sync.Mutex{},
		rx: rx,
	}
}

// Recv takes the lock, receives one value from the wrapped Receiver and
// releases the lock before returning. See Receiver.Recv.
func (s *Shared[T]) Recv() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rx.Recv()
}

// Len returns the number of values waiting in the wrapped Receiver.
func (s *Shared[T]) Len() int {
	return s.rx.Len()
}
