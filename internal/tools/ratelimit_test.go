package tools

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAdmitsUnderLimit(t *testing.T) {
	l := NewLimiter(3)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("call %d should be admitted: %v", i, err)
		}
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter(0)
	for i := 0; i < 100; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("disabled limiter must never block: %v", err)
		}
	}
}

func TestLimiterBlocksUntilWindowFrees(t *testing.T) {
	now := time.Unix(1000, 0)
	slept := time.Duration(0)
	l := NewLimiter(2)
	l.now = func() time.Time { return now }
	l.sleep = func(ctx context.Context, d time.Duration) error {
		slept += d
		now = now.Add(d)
		return nil
	}

	ctx := context.Background()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first call: %v", err)
	}
	now = now.Add(10 * time.Second)
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("second call: %v", err)
	}

	// Third call must wait until the first timestamp leaves the window.
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("third call: %v", err)
	}
	if slept < 45*time.Second {
		t.Fatalf("third call should have waited roughly 50s, slept %v", slept)
	}
}

func TestLimiterHonorsCancellation(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewLimiter(1)
	l.now = func() time.Time { return now }
	l.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if err := l.Wait(context.Background()); err != context.Canceled {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}
