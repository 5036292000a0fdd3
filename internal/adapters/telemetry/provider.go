// Package telemetry traces record store calls with OpenTelemetry.
package telemetry

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/normcache/internal/core/ports"
)

// Provider owns the SDK tracer provider and the bridge that logs its spans.
type Provider struct {
	tp     *sdktrace.TracerProvider
	bridge *Bridge
}

// NewProvider creates a Provider whose spans are logged through logger once
// tracing is enabled.
func NewProvider(logger ports.Logger) *Provider {
	bridge := NewBridge(logger)
	return &Provider{
		tp:     sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge)),
		bridge: bridge,
	}
}

// SetVerbose enables or disables span logging.
func (p *Provider) SetVerbose(enable bool) {
	p.bridge.SetEnabled(enable)
}

// TracerProvider returns the provider to create tracers from.
func (p *Provider) TracerProvider() trace.TracerProvider {
	return p.tp
}

// Shutdown flushes and stops the tracer provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}
