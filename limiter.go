package flight

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// FrameLimiter bounds the number of frames in flight. It is a counting
// semaphore: Present acquires a permit before encoding and the device's
// completion callback releases it, so at most Capacity frames are ever
// pending on the device.
//
// The completion callback must call Release and nothing else; permit
// bookkeeping is the only work allowed on the device's completion path.
type FrameLimiter struct {
	sem      *semaphore.Weighted
	capacity int
}

// NewFrameLimiter creates a limiter admitting n concurrent frames.
// n values below 1 are raised to 1.
func NewFrameLimiter(n int) *FrameLimiter {
	if n < 1 {
		n = 1
	}
	return &FrameLimiter{
		sem:      semaphore.NewWeighted(int64(n)),
		capacity: n,
	}
}

// Acquire blocks until a permit is available or ctx is done. It returns
// ctx.Err() on cancellation and nil once a permit is held.
func (l *FrameLimiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// TryAcquire takes a permit without blocking, reporting whether one was
// available.
func (l *FrameLimiter) TryAcquire() bool {
	return l.sem.TryAcquire(1)
}

// Release returns one permit. Calling Release more times than Acquire
// is a programming error and panics, matching semaphore semantics.
func (l *FrameLimiter) Release() {
	l.sem.Release(1)
}

// Capacity returns the maximum number of concurrent permits.
func (l *FrameLimiter) Capacity() int { return l.capacity }
