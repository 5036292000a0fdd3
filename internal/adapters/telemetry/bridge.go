package telemetry

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/normcache/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor and logs every ended span through
// a ports.Logger. It stays silent until enabled.
type Bridge struct {
	logger  ports.Logger
	enabled atomic.Bool
}

// NewBridge returns a new, disabled Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// SetEnabled turns span logging on or off.
func (b *Bridge) SetEnabled(enable bool) {
	b.enabled.Store(enable)
}

// OnStart does nothing.
func (b *Bridge) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, its duration and its attributes. Failed spans
// are logged as warnings.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !b.enabled.Load() || !s.SpanContext().IsValid() {
		return
	}

	parts := []string{s.Name(), s.EndTime().Sub(s.StartTime()).String()}
	for _, kv := range s.Attributes() {
		key := strings.TrimPrefix(string(kv.Key), "normcache.")
		parts = append(parts, fmt.Sprintf("%s=%s", key, kv.Value.Emit()))
	}
	line := strings.Join(parts, " ")

	if s.Status().Code == codes.Error {
		b.logger.Warn(line + ": " + s.Status().Description)
		return
	}
	b.logger.Info(line)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(context.Context) error {
	return nil
}
