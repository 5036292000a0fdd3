package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
)

// InstrumentationName names the tracer used for record store spans.
const InstrumentationName = "go.trai.ch/normcache/store"

// Attribute keys set on record store spans.
const (
	AttrBackend   = attribute.Key("normcache.backend")
	AttrKeys      = attribute.Key("normcache.keys")
	AttrRecords   = attribute.Key("normcache.records")
	AttrChanged   = attribute.Key("normcache.changed")
	AttrConflicts = attribute.Key("normcache.conflicts")
	AttrRemoved   = attribute.Key("normcache.removed")
	AttrCascade   = attribute.Key("normcache.cascade")
)

// Store is a ports.RecordStore that records a span around every call to the
// wrapped store.
type Store struct {
	inner   ports.RecordStore
	tracer  trace.Tracer
	backend attribute.KeyValue
}

var _ ports.RecordStore = (*Store)(nil)

// Wrap returns inner traced with spans from tp.
func Wrap(inner ports.RecordStore, backend domain.Backend, tp trace.TracerProvider) *Store {
	return &Store{
		inner:   inner,
		tracer:  tp.Tracer(InstrumentationName),
		backend: AttrBackend.String(string(backend)),
	}
}

// Unwrap returns the traced store.
func (s *Store) Unwrap() ports.RecordStore {
	return s.inner
}

func (s *Store) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, s.backend)
	return s.tracer.Start(ctx, "store."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Load implements ports.RecordStore.
func (s *Store) Load(ctx context.Context, keys []domain.CacheKey, headers domain.CacheHeaders) (map[domain.CacheKey]*domain.Record, error) {
	ctx, span := s.start(ctx, "load", AttrKeys.Int(len(keys)))
	out, err := s.inner.Load(ctx, keys, headers)
	span.SetAttributes(AttrRecords.Int(len(out)))
	finish(span, err)
	return out, err
}

// Merge implements ports.RecordStore.
func (s *Store) Merge(
	ctx context.Context,
	records []*domain.Record,
	headers domain.CacheHeaders,
	merger ports.RecordMerger,
) (domain.MergeResult, error) {
	ctx, span := s.start(ctx, "merge", AttrRecords.Int(len(records)))
	res, err := s.inner.Merge(ctx, records, headers, merger)
	span.SetAttributes(AttrChanged.Int(len(res.Changed)), AttrConflicts.Int(len(res.Conflicts)))
	finish(span, err)
	return res, err
}

// Remove implements ports.RecordStore.
func (s *Store) Remove(ctx context.Context, key domain.CacheKey, cascade bool) (bool, error) {
	ctx, span := s.start(ctx, "remove", AttrKeys.Int(1), AttrCascade.Bool(cascade))
	removed, err := s.inner.Remove(ctx, key, cascade)
	if removed {
		span.SetAttributes(AttrRemoved.Int(1))
	} else {
		span.SetAttributes(AttrRemoved.Int(0))
	}
	finish(span, err)
	return removed, err
}

// RemoveAll implements ports.RecordStore.
func (s *Store) RemoveAll(ctx context.Context, keys []domain.CacheKey, cascade bool) (int, error) {
	ctx, span := s.start(ctx, "remove_all", AttrKeys.Int(len(keys)), AttrCascade.Bool(cascade))
	n, err := s.inner.RemoveAll(ctx, keys, cascade)
	span.SetAttributes(AttrRemoved.Int(n))
	finish(span, err)
	return n, err
}

// Clear implements ports.RecordStore.
func (s *Store) Clear(ctx context.Context) error {
	ctx, span := s.start(ctx, "clear")
	err := s.inner.Clear(ctx)
	finish(span, err)
	return err
}

// Dump implements ports.RecordStore.
func (s *Store) Dump(ctx context.Context) (map[domain.CacheKey]*domain.Record, error) {
	ctx, span := s.start(ctx, "dump")
	out, err := s.inner.Dump(ctx)
	span.SetAttributes(AttrRecords.Int(len(out)))
	finish(span, err)
	return out, err
}

// Close implements ports.RecordStore.
func (s *Store) Close() error {
	return s.inner.Close()
}
