package pool

// PoolCreationError reports a pool that could not be created because of an
// invalid configuration.
type PoolCreationError struct {
	Message string
}

func (e *PoolCreationError) Error() string {
	return "pool creation error: " + e.Message
}

// ErrPoolCreation is returned when a pool is requested with zero workers.
var ErrPoolCreation error = &PoolCreationError{Message: "cannot create a ThreadPool with 0 workers"}
