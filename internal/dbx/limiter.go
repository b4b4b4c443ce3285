package dbx

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds how many blocking storage calls may run at once.
//
// Every call goes through Do, which acquires a slot, runs fn and releases the
// slot on every exit path. Waiting for a slot honours ctx, so an abandoned
// request gives up its place in the queue without running fn.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter returns a Limiter admitting at most n concurrent calls.
// Values below 1 are treated as 1.
func NewLimiter(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(n))}
}

// Do runs fn once a slot is available. It returns ctx.Err() if the context
// ends before a slot is acquired, otherwise whatever fn returns.
func (l *Limiter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)

	return fn(ctx)
}
