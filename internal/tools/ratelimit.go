package tools

import (
	"context"
	"sync"
	"time"
)

// Limiter is a sliding-window rate limiter for tool executions. Wait
// blocks until a slot frees up inside the one-minute window, so bursts
// above the configured rate are delayed rather than rejected.
type Limiter struct {
	mu        sync.Mutex
	perMinute int
	calls     []time.Time
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewLimiter builds a limiter allowing perMinute executions. A value
// of zero or less disables limiting.
func NewLimiter(perMinute int) *Limiter {
	return &Limiter{
		perMinute: perMinute,
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Wait blocks until the call is admitted or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.perMinute <= 0 {
		return nil
	}
	for {
		l.mu.Lock()
		now := l.now()
		cutoff := now.Add(-time.Minute)
		kept := l.calls[:0]
		for _, t := range l.calls {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		l.calls = kept

		if len(l.calls) < l.perMinute {
			l.calls = append(l.calls, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.calls[0].Sub(cutoff)
		l.mu.Unlock()

		if wait < 10*time.Millisecond {
			wait = 10 * time.Millisecond
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}
