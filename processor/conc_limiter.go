package processor

import (
	"context"
	"runtime"
	"sync"
)

// ConcLimiter bounds the number of goroutines running at once.
type ConcLimiter struct {
	*sync.WaitGroup
	Pool chan struct{}
}

// Increase takes a slot, blocking until one is free or ctx is done.
func (c *ConcLimiter) Increase(ctx context.Context) error {
	select {
	case c.Pool <- struct{}{}:
		c.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *ConcLimiter) Decrease() {
	select {
	case <-c.Pool:
		c.Done()
	default:
	}
}

func NewConcLimiter(cLevel int) *ConcLimiter {
	if cLevel < 1 {
		cLevel = 1
	}
	var wg sync.WaitGroup
	return &ConcLimiter{&wg, make(chan struct{}, cLevel)}
}

// PoolSize is min(cores, n, limit), a limit <= 0 meaning no limit.
func PoolSize(n, limit int) int {
	size := runtime.NumCPU()
	if n < size {
		size = n
	}
	if limit > 0 && limit < size {
		size = limit
	}
	if size < 1 {
		size = 1
	}
	return size
}
