// Package telemetry provides the OpenTelemetry span wrapper the
// durability shim uses to record every live/replay decision it makes.
// Telemetry is disabled by default and must be explicitly enabled.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Settings configures telemetry for a durability-wrapped operation.
type Settings struct {
	// IsEnabled controls whether telemetry is active. Defaults to false.
	IsEnabled bool

	// FunctionID identifies the operation being recorded, e.g.
	// "video.kling.generate".
	FunctionID string

	// Metadata contains additional key-value pairs attached to every span.
	Metadata map[string]attribute.Value

	// Tracer is a custom OpenTelemetry tracer. If nil, the global tracer
	// is used when telemetry is enabled.
	Tracer trace.Tracer
}

// DefaultSettings returns disabled Settings with an empty metadata map.
func DefaultSettings() *Settings {
	return &Settings{Metadata: make(map[string]attribute.Value)}
}

// WithEnabled returns a copy of Settings with IsEnabled set.
func (s *Settings) WithEnabled(enabled bool) *Settings {
	cp := *s
	cp.IsEnabled = enabled
	return &cp
}

// WithFunctionID returns a copy of Settings with FunctionID set.
func (s *Settings) WithFunctionID(id string) *Settings {
	cp := *s
	cp.FunctionID = id
	return &cp
}

// WithTracer returns a copy of Settings with Tracer set.
func (s *Settings) WithTracer(tracer trace.Tracer) *Settings {
	cp := *s
	cp.Tracer = tracer
	return &cp
}
