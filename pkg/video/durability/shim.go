package durability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/adapterhub/commonrt/pkg/internal/telemetry"
)

// Fn is the signature every durability-wrapped provider call shares: a
// context plus one input struct producing one output struct or an error.
type Fn[In any, Out any] func(ctx context.Context, in In) (Out, error)

// Shim wraps a single provider operation with persist-on-live /
// replay-from-oplog behavior. WriteRemote operations skip real execution
// during replay and return their recorded result; ReadRemote operations
// always execute live, recorded or not, since they carry no side effect
// to avoid repeating.
type Shim[In any, Out any] struct {
	opName string
	class  PersistenceClass
	log    OpLog
	tracer trace.Tracer
	fn     Fn[In, Out]
}

// New builds a Shim around fn, named opName for the oplog and for the
// span it records on every call.
func New[In any, Out any](opName string, class PersistenceClass, log OpLog, tracer trace.Tracer, fn Fn[In, Out]) *Shim[In, Out] {
	return &Shim[In, Out]{opName: opName, class: class, log: log, tracer: tracer, fn: fn}
}

// Execute runs the wrapped operation, applying the shim's persistence
// class and the oplog's current mode.
func (s *Shim[In, Out]) Execute(ctx context.Context, in In) (out Out, err error) {
	if s.tracer == nil {
		return s.execute(ctx, in)
	}

	_, err = telemetry.RecordSpan(ctx, s.tracer, telemetry.SpanOptions{
		Name:       "durability." + s.opName,
		EndWhenDone: true,
	}, func(ctx context.Context) (struct{}, error) {
		replay := s.log.Mode() == ModeReplay && s.class == WriteRemote
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("durability.replay", replay))
		out, err = s.execute(ctx, in)
		return struct{}{}, err
	})
	return out, err
}

func (s *Shim[In, Out]) execute(ctx context.Context, in In) (Out, error) {
	if s.class == ReadRemote {
		return s.fn(ctx, in)
	}

	if s.log.Mode() == ModeLive {
		out, err := s.fn(ctx, in)
		if err != nil {
			var zero Out
			return zero, err
		}
		if recErr := s.log.Record(ctx, s.opName, in, out); recErr != nil {
			return out, recErr
		}
		return out, nil
	}

	var recorded Out
	found, err := s.log.Replay(ctx, s.opName, in, &recorded)
	if err != nil {
		var zero Out
		return zero, err
	}
	if found {
		return recorded, nil
	}

	// No recorded entry for this call (first time the durable execution
	// reaches this point): fall through to live execution and record it.
	out, err := s.fn(ctx, in)
	if err != nil {
		var zero Out
		return zero, err
	}
	if recErr := s.log.Record(ctx, s.opName, in, out); recErr != nil {
		return out, recErr
	}
	return out, nil
}
