// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"time"

	"go.trai.ch/normcache/internal/core/domain"
)

// RecordStore is the storage contract every backend satisfies.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use. Writes are
//     linearizable; a read never observes a partially applied merge.
//   - Absence: Load returns only the records that exist; missing keys are not errors.
//   - Errors: I/O failures are returned wrapped in domain.ErrBackendFailure and
//     are never retried.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type RecordStore interface {
	// Load returns the records for the given keys that exist in the store.
	Load(ctx context.Context, keys []domain.CacheKey, headers domain.CacheHeaders) (map[domain.CacheKey]*domain.Record, error)

	// Merge folds the records into the store using merger and returns the changed fields.
	Merge(ctx context.Context, records []*domain.Record, headers domain.CacheHeaders, merger RecordMerger) (domain.MergeResult, error)

	// Remove deletes one record. With cascade, records only it keeps reachable go too.
	// It reports whether the record existed.
	Remove(ctx context.Context, key domain.CacheKey, cascade bool) (bool, error)

	// RemoveAll deletes several records and returns how many existed.
	RemoveAll(ctx context.Context, keys []domain.CacheKey, cascade bool) (int, error)

	// Clear deletes every record.
	Clear(ctx context.Context) error

	// Dump returns a snapshot of every record.
	Dump(ctx context.Context) (map[domain.CacheKey]*domain.Record, error)

	// Close releases the resources held by the store.
	Close() error
}

// Expirer is implemented by record stores that can delete expired records in bulk.
type Expirer interface {
	// RemoveExpired deletes the records whose earliest field expiration is
	// before now and returns how many were deleted. Stores that keep no dates
	// return domain.ErrExpirationNotTracked.
	RemoveExpired(ctx context.Context, now time.Time) (int, error)
}

// StoreFactory opens the record store described by a configuration.
type StoreFactory interface {
	// Open creates the store. The caller owns it and must Close it.
	Open(ctx context.Context, cfg domain.StoreConfig) (RecordStore, error)
}
