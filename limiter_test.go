package flight

import (
	"context"
	"testing"
	"time"
)

func TestFrameLimiterCapacity(t *testing.T) {
	l := NewFrameLimiter(3)
	if l.Capacity() != 3 {
		t.Fatalf("Capacity() = %d, want 3", l.Capacity())
	}

	for i := 0; i < 3; i++ {
		if !l.TryAcquire() {
			t.Fatalf("TryAcquire() #%d = false, want true", i)
		}
	}
	if l.TryAcquire() {
		t.Error("TryAcquire() beyond capacity should fail")
	}

	l.Release()
	if !l.TryAcquire() {
		t.Error("TryAcquire() after Release should succeed")
	}
}

func TestFrameLimiterBlockingAcquire(t *testing.T) {
	l := NewFrameLimiter(1)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		if err := l.Acquire(context.Background()); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire should block while the permit is held")
	case <-time.After(20 * time.Millisecond):
	}

	l.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("Acquire did not wake after Release")
	}
}

func TestFrameLimiterAcquireCancel(t *testing.T) {
	l := NewFrameLimiter(1)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Acquire(ctx); err != context.DeadlineExceeded {
		t.Errorf("Acquire() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestFrameLimiterMinimumCapacity(t *testing.T) {
	l := NewFrameLimiter(0)
	if l.Capacity() != 1 {
		t.Errorf("Capacity() = %d, want 1", l.Capacity())
	}
}
