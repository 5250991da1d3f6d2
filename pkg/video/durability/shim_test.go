package durability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type genInput struct {
	Prompt string
}

type genOutput struct {
	JobID string
}

func TestShim_WriteRemote_RecordsOnLive(t *testing.T) {
	t.Parallel()

	log := NewInMemoryOpLog(ModeLive)
	calls := 0
	shim := New("generate", WriteRemote, log, noop.NewTracerProvider().Tracer("t"),
		func(_ context.Context, in genInput) (genOutput, error) {
			calls++
			return genOutput{JobID: "job-" + in.Prompt}, nil
		})

	out, err := shim.Execute(context.Background(), genInput{Prompt: "cat"})
	require.NoError(t, err)
	assert.Equal(t, "job-cat", out.JobID)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, log.Len("generate"))
}

func TestShim_WriteRemote_ReplaySkipsExecution(t *testing.T) {
	t.Parallel()

	log := NewInMemoryOpLog(ModeLive)
	calls := 0
	fn := func(_ context.Context, in genInput) (genOutput, error) {
		calls++
		return genOutput{JobID: "job-" + in.Prompt}, nil
	}
	shim := New("generate", WriteRemote, log, noop.NewTracerProvider().Tracer("t"), fn)

	_, err := shim.Execute(context.Background(), genInput{Prompt: "cat"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	log.SetMode(ModeReplay)
	out, err := shim.Execute(context.Background(), genInput{Prompt: "cat"})
	require.NoError(t, err)
	assert.Equal(t, "job-cat", out.JobID)
	assert.Equal(t, 1, calls, "replay must not re-invoke the underlying call")
}

func TestShim_ReadRemote_AlwaysExecutesLive(t *testing.T) {
	t.Parallel()

	log := NewInMemoryOpLog(ModeReplay)
	calls := 0
	shim := New("poll", ReadRemote, log, noop.NewTracerProvider().Tracer("t"),
		func(_ context.Context, in genInput) (genOutput, error) {
			calls++
			return genOutput{JobID: "polled"}, nil
		})

	_, err := shim.Execute(context.Background(), genInput{Prompt: "x"})
	require.NoError(t, err)
	_, err = shim.Execute(context.Background(), genInput{Prompt: "x"})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, log.Len("poll"), "read-remote calls are never persisted")
}

func TestShim_Replay_FallsBackToLiveWhenNoEntryRecorded(t *testing.T) {
	t.Parallel()

	log := NewInMemoryOpLog(ModeReplay)
	calls := 0
	shim := New("generate", WriteRemote, log, noop.NewTracerProvider().Tracer("t"),
		func(_ context.Context, in genInput) (genOutput, error) {
			calls++
			return genOutput{JobID: "fresh"}, nil
		})

	out, err := shim.Execute(context.Background(), genInput{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", out.JobID)
	assert.Equal(t, 1, calls)
}

func TestShim_PropagatesError(t *testing.T) {
	t.Parallel()

	log := NewInMemoryOpLog(ModeLive)
	boom := assert.AnError
	shim := New("generate", WriteRemote, log, noop.NewTracerProvider().Tracer("t"),
		func(_ context.Context, in genInput) (genOutput, error) {
			return genOutput{}, boom
		})

	_, err := shim.Execute(context.Background(), genInput{Prompt: "x"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, log.Len("generate"))
}
