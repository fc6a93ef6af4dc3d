package threadpool

import "github.com/pgvanniekerk/ezpool/internal/pool"

// PoolCreationError reports a ThreadPool that could not be created because
// its configuration is invalid. Match it with errors.As.
type PoolCreationError = pool.PoolCreationError

// ErrPoolCreation is returned by Build, and used as the panic value of New,
// when a ThreadPool is requested with zero workers.
//
// Example handling:
//
//	p, err := threadpool.Build(size)
//	if errors.Is(err, threadpool.ErrPoolCreation) {
//	    // fall back to a single worker
//	    p = threadpool.New(1)
//	}
var ErrPoolCreation = pool.ErrPoolCreation
