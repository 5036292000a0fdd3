// Package storefactory opens the record store described by a domain.StoreConfig.
package storefactory

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.trai.ch/normcache/internal/adapters/boltstore"
	"go.trai.ch/normcache/internal/adapters/chain"
	"go.trai.ch/normcache/internal/adapters/memory"
	"go.trai.ch/normcache/internal/adapters/sqlstore"
	"go.trai.ch/normcache/internal/adapters/telemetry"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory implements ports.StoreFactory. Every store it opens is traced.
type Factory struct {
	tp trace.TracerProvider
}

var _ ports.StoreFactory = (*Factory)(nil)

// New creates a Factory tracing with tp. A nil tp disables tracing.
func New(tp trace.TracerProvider) *Factory {
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return &Factory{tp: tp}
}

// Open opens the store described by cfg.
func (f *Factory) Open(ctx context.Context, cfg domain.StoreConfig) (ports.RecordStore, error) {
	if cfg.Backend != domain.BackendChain {
		return f.open(ctx, cfg.Backend, cfg)
	}

	mem, err := f.open(ctx, domain.BackendMemory, cfg)
	if err != nil {
		return nil, err
	}
	persistent, err := f.open(ctx, cfg.Persistent, cfg)
	if err != nil {
		_ = mem.Close()
		return nil, err
	}
	return chain.New(mem, persistent), nil
}

func (f *Factory) open(ctx context.Context, backend domain.Backend, cfg domain.StoreConfig) (ports.RecordStore, error) {
	var (
		store ports.RecordStore
		err   error
	)

	switch backend {
	case domain.BackendMemory:
		store, err = memory.New(cfg.MaxRecords, memory.WithExpireAfter(cfg.ExpireAfter))
	case domain.BackendSQLite:
		store, err = sqlstore.Open(ctx, cfg.Path, cfg.WithDates)
	case domain.BackendBolt:
		store, err = boltstore.Open(cfg.Path)
	default:
		return nil, zerr.With(domain.ErrUnknownBackend, "backend", string(backend))
	}
	if err != nil {
		return nil, err
	}

	return telemetry.Wrap(store, backend, f.tp), nil
}
