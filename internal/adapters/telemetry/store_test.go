package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/normcache/internal/adapters/memory"
	"go.trai.ch/normcache/internal/adapters/telemetry"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports/mocks"
	"go.trai.ch/normcache/internal/engine/merger"
	"go.uber.org/mock/gomock"
)

func setupRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func attrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestStore_RecordsSpans(t *testing.T) {
	ctx := context.Background()
	sr, tp := setupRecorder(t)

	mem, err := memory.New(0)
	require.NoError(t, err)
	s := telemetry.Wrap(mem, domain.BackendMemory, tp)

	_, err = s.Merge(ctx, []*domain.Record{
		domain.NewRecord("User:1", domain.Fields{"name": "Ada", "age": int64(36)}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)

	got, err := s.Load(ctx, domain.Keys("User:1", "User:2"), domain.NoHeaders)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	n, err := s.RemoveAll(ctx, domain.Keys("User:1"), true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	spans := sr.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, "store.merge", spans[0].Name())
	merge := attrs(spans[0])
	assert.Equal(t, "memory", merge[telemetry.AttrBackend].AsString())
	assert.Equal(t, int64(2), merge[telemetry.AttrChanged].AsInt64())
	assert.Equal(t, int64(0), merge[telemetry.AttrConflicts].AsInt64())

	assert.Equal(t, "store.load", spans[1].Name())
	load := attrs(spans[1])
	assert.Equal(t, int64(2), load[telemetry.AttrKeys].AsInt64())
	assert.Equal(t, int64(1), load[telemetry.AttrRecords].AsInt64())

	assert.Equal(t, "store.remove_all", spans[2].Name())
	remove := attrs(spans[2])
	assert.True(t, remove[telemetry.AttrCascade].AsBool())
	assert.Equal(t, int64(1), remove[telemetry.AttrRemoved].AsInt64())
}

func TestStore_RecordsErrors(t *testing.T) {
	ctx := context.Background()
	sr, tp := setupRecorder(t)

	ctrl := gomock.NewController(t)
	inner := mocks.NewMockRecordStore(ctrl)
	inner.EXPECT().Dump(gomock.Any()).Return(nil, errors.New("disk gone"))
	inner.EXPECT().Close().Return(nil)

	s := telemetry.Wrap(inner, domain.BackendSQLite, tp)
	_, err := s.Dump(ctx)
	require.ErrorContains(t, err, "disk gone")
	require.NoError(t, s.Close())

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "disk gone", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestStore_Unwrap(t *testing.T) {
	_, tp := setupRecorder(t)
	mem, err := memory.New(0)
	require.NoError(t, err)

	s := telemetry.Wrap(mem, domain.BackendMemory, tp)
	assert.Same(t, mem, s.Unwrap())
}
