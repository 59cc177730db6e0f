// Package delay provides injectable artificial-latency policies for the framework
package delay

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

var (
	// Thread-safe random source for bounded-random waits
	randMu     sync.Mutex
	randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Policy decides how long a call pauses to emulate backend latency.
// Wait returns early with the context error if the caller goes away
// mid-pause.
type Policy interface {
	Wait(ctx context.Context) error
}

// PolicyFunc adapts a function to the Policy interface
type PolicyFunc func(ctx context.Context) error

// Wait implements Policy
func (f PolicyFunc) Wait(ctx context.Context) error { return f(ctx) }

// None returns a policy that never pauses. Use in tests.
func None() Policy {
	return PolicyFunc(func(ctx context.Context) error {
		return ctx.Err()
	})
}

// Fixed returns a policy that pauses for exactly d
func Fixed(d time.Duration) Policy {
	return PolicyFunc(func(ctx context.Context) error {
		return sleep(ctx, d)
	})
}

// Random returns a policy that pauses for a uniformly random duration
// in [min, max]. This is the production default, emulating a backend
// that answers in one to a few seconds.
func Random(min, max time.Duration) Policy {
	if max < min {
		min, max = max, min
	}
	return PolicyFunc(func(ctx context.Context) error {
		d := min
		if span := max - min; span > 0 {
			randMu.Lock()
			d += time.Duration(randSource.Int63n(int64(span) + 1))
			randMu.Unlock()
		}
		return sleep(ctx, d)
	})
}

// sleep pauses for d or until ctx is done, whichever comes first
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
