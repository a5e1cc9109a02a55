// Package poll provides fixed-interval polling helpers shared by the
// deployment monitor and the service readiness probe.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by Until when the wall-clock budget elapses
// before the condition holds.
var ErrTimeout = errors.New("polling timed out")

// ErrAttemptsExhausted is returned by UntilAttempts when the attempt
// budget is spent before the condition holds.
var ErrAttemptsExhausted = errors.New("polling attempts exhausted")

// Condition reports whether the observed state is final. Returning an
// error stops the poll immediately.
type Condition func(ctx context.Context) (done bool, err error)

// Until evaluates fn immediately and then once per interval until it
// reports done, returns an error, the timeout elapses, or ctx is
// cancelled.
func Until(ctx context.Context, interval, timeout time.Duration, fn Condition) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrTimeout
		case <-ticker.C:
		}
	}
}

// UntilAttempts evaluates fn up to attempts times, sleeping interval
// between evaluations.
func UntilAttempts(ctx context.Context, interval time.Duration, attempts int, fn Condition) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < attempts; i++ {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return ErrAttemptsExhausted
}
