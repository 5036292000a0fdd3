package ports

import "go.trai.ch/normcache/internal/core/domain"

// RecordMerger combines an existing record with an incoming one for the same key.
//
// Contract:
//   - Idempotence: merging the same incoming record twice changes nothing the second time.
//   - Purity: neither argument is modified.
//
//go:generate mockgen -source=merger.go -destination=mocks/mock_merger.go -package=mocks
type RecordMerger interface {
	// Merge returns the merged record, the fields whose value changed and the
	// type conflicts encountered. existing may be nil.
	Merge(existing, incoming *domain.Record) (*domain.Record, domain.ChangedKeys, []domain.MergeConflict)
}
