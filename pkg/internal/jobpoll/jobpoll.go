// Package jobpoll provides an optional convenience loop for waiting on a
// long-running provider job to reach a terminal state. It does not define
// the polling contract itself: each provider's job client exposes its own
// Submit/Poll/Cancel methods with no internal sleep, so a caller that
// wants to drive its own cadence (a UI progress bar, a test harness with
// a fake clock) can call Poll directly. WaitForCompletion exists only for
// callers happy to let this package sleep between polls on their behalf.
package jobpoll

import (
	"context"
	"fmt"
	"time"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/internal/ratelimit"
)

// Checker reports the current status of one job. Implementations should
// not sleep or retry internally; WaitForCompletion handles cadence.
type Checker func(ctx context.Context) (*adapter.JobStatus, error)

// WaitOptions configures WaitForCompletion's polling cadence.
type WaitOptions struct {
	PollInterval      time.Duration
	Timeout           time.Duration
	MaxAttempts       int
	BackoffMultiplier float64
	MaxInterval       time.Duration

	// Limiter additionally caps poll throughput below whatever
	// PollInterval implies, shared across every in-flight job against
	// the same provider. Nil means no additional cap.
	Limiter *ratelimit.Limiter
}

// DefaultWaitOptions returns a 2s interval, 5 minute timeout, no backoff.
func DefaultWaitOptions() WaitOptions {
	return WaitOptions{
		PollInterval:      2 * time.Second,
		Timeout:           5 * time.Minute,
		BackoffMultiplier: 1.0,
		MaxInterval:       30 * time.Second,
	}
}

// WaitForCompletion repeatedly calls checker, sleeping PollInterval (with
// optional exponential backoff up to MaxInterval) between calls, until the
// job reaches a terminal JobState, the timeout elapses, MaxAttempts is
// exceeded, or ctx is canceled.
func WaitForCompletion(ctx context.Context, checker Checker, opts WaitOptions) (*adapter.JobStatus, error) {
	if opts.PollInterval == 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.BackoffMultiplier == 0 {
		opts.BackoffMultiplier = 1.0
	}
	if opts.MaxInterval == 0 {
		opts.MaxInterval = 30 * time.Second
	}

	interval := opts.PollInterval

	timeoutTimer := time.NewTimer(opts.Timeout)
	defer timeoutTimer.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	attempts := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timeoutTimer.C:
			return nil, fmt.Errorf("jobpoll: timed out after %v", opts.Timeout)

		case <-ticker.C:
			attempts++
			if opts.MaxAttempts > 0 && attempts > opts.MaxAttempts {
				return nil, fmt.Errorf("jobpoll: max attempts (%d) exceeded", opts.MaxAttempts)
			}

			if opts.Limiter != nil {
				if err := opts.Limiter.Wait(ctx); err != nil {
					return nil, fmt.Errorf("jobpoll: rate limiter wait: %w", err)
				}
			}

			status, err := checker(ctx)
			if err != nil {
				return nil, fmt.Errorf("jobpoll: status check failed: %w", err)
			}

			if status.State.Terminal() {
				return status, nil
			}

			if opts.BackoffMultiplier > 1.0 {
				newInterval := time.Duration(float64(interval) * opts.BackoffMultiplier)
				if newInterval > opts.MaxInterval {
					newInterval = opts.MaxInterval
				}
				if newInterval != interval {
					interval = newInterval
					ticker.Reset(interval)
				}
			}
		}
	}
}

// WaitWithProgress is WaitForCompletion with a callback invoked on every
// intermediate (non-terminal) status.
func WaitWithProgress(ctx context.Context, checker Checker, opts WaitOptions, onProgress func(*adapter.JobStatus)) (*adapter.JobStatus, error) {
	wrapped := func(ctx context.Context) (*adapter.JobStatus, error) {
		status, err := checker(ctx)
		if err == nil && onProgress != nil && !status.State.Terminal() {
			onProgress(status)
		}
		return status, err
	}
	return WaitForCompletion(ctx, wrapped, opts)
}
