package jobpoll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/internal/ratelimit"
)

func TestWaitForCompletion_SucceedsAfterAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	checker := func(ctx context.Context) (*adapter.JobStatus, error) {
		calls++
		if calls < 3 {
			return &adapter.JobStatus{State: adapter.JobRunning}, nil
		}
		return &adapter.JobStatus{State: adapter.JobSucceeded, JobID: "job-1"}, nil
	}

	status, err := WaitForCompletion(context.Background(), checker, WaitOptions{
		PollInterval: 5 * time.Millisecond,
		Timeout:      time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, adapter.JobSucceeded, status.State)
	assert.Equal(t, 3, calls)
}

func TestWaitForCompletion_TimesOut(t *testing.T) {
	t.Parallel()

	checker := func(ctx context.Context) (*adapter.JobStatus, error) {
		return &adapter.JobStatus{State: adapter.JobRunning}, nil
	}

	_, err := WaitForCompletion(context.Background(), checker, WaitOptions{
		PollInterval: 5 * time.Millisecond,
		Timeout:      20 * time.Millisecond,
	})
	require.Error(t, err)
}

func TestWaitForCompletion_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker := func(ctx context.Context) (*adapter.JobStatus, error) {
		return &adapter.JobStatus{State: adapter.JobRunning}, nil
	}

	_, err := WaitForCompletion(ctx, checker, WaitOptions{PollInterval: 5 * time.Millisecond})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWaitForCompletion_RespectsLimiter(t *testing.T) {
	t.Parallel()

	calls := 0
	checker := func(ctx context.Context) (*adapter.JobStatus, error) {
		calls++
		if calls < 2 {
			return &adapter.JobStatus{State: adapter.JobRunning}, nil
		}
		return &adapter.JobStatus{State: adapter.JobSucceeded}, nil
	}

	status, err := WaitForCompletion(context.Background(), checker, WaitOptions{
		PollInterval: 5 * time.Millisecond,
		Timeout:      time.Second,
		Limiter:      ratelimit.New(1000, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, adapter.JobSucceeded, status.State)
}
