package app

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
	"go.trai.ch/normcache/internal/engine/gc"
	"go.trai.ch/normcache/internal/engine/merger"
	"go.trai.ch/normcache/internal/engine/normalizer"
	"go.trai.ch/normcache/internal/engine/notifier"
	"go.trai.ch/normcache/internal/engine/optimistic"
	"go.trai.ch/normcache/internal/engine/resolver"
)

// Store is the normalized cache: it writes result trees as records, reads
// trees back, layers optimistic updates and reports which fields changed.
//
// Writes are exclusive. Reads and reachability walks share the lock, so they
// see a consistent snapshot.
type Store struct {
	mu         sync.RWMutex
	records    *optimistic.Store
	normalizer *normalizer.Normalizer
	merger     ports.RecordMerger
	reader     *resolver.Denormalizer
	notifier   *notifier.Notifier
	logger     ports.Logger
}

type storeOptions struct {
	normalizer *normalizer.Normalizer
	merger     ports.RecordMerger
	resolver   ports.CacheResolver
	capacity   int
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

// WithNormalizer sets the normalizer and so the key generators used by writes and reads.
func WithNormalizer(n *normalizer.Normalizer) StoreOption {
	return func(o *storeOptions) { o.normalizer = n }
}

// WithMerger sets the record merger.
func WithMerger(m ports.RecordMerger) StoreOption {
	return func(o *storeOptions) { o.merger = m }
}

// WithResolver sets the cache resolver used by reads.
func WithResolver(r ports.CacheResolver) StoreOption {
	return func(o *storeOptions) { o.resolver = r }
}

// WithNotifierCapacity sets how many change events may be pending before Publish blocks.
func WithNotifierCapacity(n int) StoreOption {
	return func(o *storeOptions) { o.capacity = n }
}

// NewStore creates a Store over base.
func NewStore(base ports.RecordStore, log ports.Logger, opts ...StoreOption) *Store {
	o := storeOptions{
		merger:   merger.Default{},
		resolver: resolver.Default{},
		capacity: domain.DefaultNotifierCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.normalizer == nil {
		o.normalizer = normalizer.New()
	}

	return &Store{
		records:    optimistic.New(base),
		normalizer: o.normalizer,
		merger:     o.merger,
		reader:     resolver.NewDenormalizer(o.resolver, o.normalizer.FieldKeys()),
		notifier:   notifier.New(o.capacity),
		logger:     log,
	}
}

// Normalize flattens data into records without writing them.
func (s *Store) Normalize(
	op domain.Operation,
	data map[string]any,
	rootKey domain.CacheKey,
	headers domain.CacheHeaders,
) (map[domain.CacheKey]*domain.Record, error) {
	return s.normalizer.Normalize(op, data, rootKey, headers)
}

// WriteOperation writes the result data of op under the root record.
func (s *Store) WriteOperation(
	ctx context.Context,
	op domain.Operation,
	data map[string]any,
	headers domain.CacheHeaders,
) (domain.MergeResult, error) {
	return s.WriteFragment(ctx, op, domain.RootKey, data, headers)
}

// WriteFragment writes data, shaped by op's selections, under key.
func (s *Store) WriteFragment(
	ctx context.Context,
	op domain.Operation,
	key domain.CacheKey,
	data map[string]any,
	headers domain.CacheHeaders,
) (domain.MergeResult, error) {
	records, err := s.normalizer.Normalize(op, data, key, headers)
	if err != nil {
		return domain.MergeResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.records.Merge(ctx, sortedRecords(records), headers, s.merger)
	if err != nil {
		return domain.MergeResult{}, err
	}
	for _, c := range res.Conflicts {
		s.logger.Warn("merge conflict: " + c.String())
	}
	return res, nil
}

// ReadOperation reads the tree selected by op from the root record.
func (s *Store) ReadOperation(ctx context.Context, op domain.Operation, headers domain.CacheHeaders) (*domain.ReadResult, error) {
	return s.ReadFragment(ctx, op, domain.RootKey, headers)
}

// ReadFragment reads the tree selected by op from the record of key.
func (s *Store) ReadFragment(
	ctx context.Context,
	op domain.Operation,
	key domain.CacheKey,
	headers domain.CacheHeaders,
) (*domain.ReadResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.reader.Read(ctx, s.records, key, op.Selections, op.Variables, headers)
}

// WriteOptimisticUpdates layers data, normalized under rootKey, above the
// stored records until RollbackOptimisticUpdates is called with mutationID.
func (s *Store) WriteOptimisticUpdates(
	ctx context.Context,
	op domain.Operation,
	rootKey domain.CacheKey,
	data map[string]any,
	mutationID uuid.UUID,
) (domain.ChangedKeys, error) {
	if mutationID == uuid.Nil {
		return nil, domain.ErrMissingMutationID
	}
	records, err := s.normalizer.Normalize(op, data, rootKey, domain.NoHeaders)
	if err != nil {
		return nil, err
	}
	sorted := sortedRecords(records)
	for _, r := range sorted {
		r.MutationID = mutationID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.records.AddOptimisticUpdates(ctx, sorted)
}

// RollbackOptimisticUpdates drops the optimistic records of mutationID.
func (s *Store) RollbackOptimisticUpdates(ctx context.Context, mutationID uuid.UUID) (domain.ChangedKeys, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.records.RemoveOptimisticUpdates(ctx, mutationID)
}

// Remove deletes the record of key, and with cascade the records only it references.
func (s *Store) Remove(ctx context.Context, key domain.CacheKey, cascade bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.records.Remove(ctx, key, cascade)
}

// RemoveAll deletes the records of keys and returns how many were removed.
func (s *Store) RemoveAll(ctx context.Context, keys []domain.CacheKey, cascade bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.records.RemoveAll(ctx, keys, cascade)
}

// ClearAll deletes every record, optimistic ones included.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.records.Clear(ctx)
}

// Dump returns every record as reads see it.
func (s *Store) Dump(ctx context.Context) (map[domain.CacheKey]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.records.Dump(ctx)
}

// OptimisticDump returns the pending optimistic records of every key.
func (s *Store) OptimisticDump() map[domain.CacheKey][]*domain.Record {
	return s.records.OverlayDump()
}

// ReachableKeys returns the sorted keys of the records reachable from the root record.
func (s *Store) ReachableKeys(ctx context.Context) ([]domain.CacheKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reachable, err := gc.ReachableFrom(ctx, s.records, []domain.CacheKey{domain.RootKey})
	if err != nil {
		return nil, err
	}
	out := make([]domain.CacheKey, 0, len(reachable))
	for k := range reachable {
		out = append(out, k)
	}
	slices.Sort(out)
	return out, nil
}

// RemoveUnreachable deletes the records not reachable from the root record
// and returns their keys.
func (s *Store) RemoveUnreachable(ctx context.Context) ([]domain.CacheKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return gc.RemoveUnreachable(ctx, s.records)
}

// Publish delivers keys to every watcher. It blocks while the slowest
// watcher is too far behind.
func (s *Store) Publish(ctx context.Context, keys domain.ChangedKeys) error {
	return s.notifier.Publish(ctx, keys)
}

// Watch subscribes to the changes published after this call.
func (s *Store) Watch() *notifier.Subscription {
	return s.notifier.Subscribe()
}

// WriteOperationAndPublish writes like WriteOperation and publishes the changed fields.
func (s *Store) WriteOperationAndPublish(
	ctx context.Context,
	op domain.Operation,
	data map[string]any,
	headers domain.CacheHeaders,
) (domain.MergeResult, error) {
	res, err := s.WriteOperation(ctx, op, data, headers)
	if err != nil {
		return res, err
	}
	return res, s.Publish(ctx, res.Changed)
}

// WriteFragmentAndPublish writes like WriteFragment and publishes the changed fields.
func (s *Store) WriteFragmentAndPublish(
	ctx context.Context,
	op domain.Operation,
	key domain.CacheKey,
	data map[string]any,
	headers domain.CacheHeaders,
) (domain.MergeResult, error) {
	res, err := s.WriteFragment(ctx, op, key, data, headers)
	if err != nil {
		return res, err
	}
	return res, s.Publish(ctx, res.Changed)
}

// WriteOptimisticUpdatesAndPublish writes like WriteOptimisticUpdates and publishes the changed fields.
func (s *Store) WriteOptimisticUpdatesAndPublish(
	ctx context.Context,
	op domain.Operation,
	rootKey domain.CacheKey,
	data map[string]any,
	mutationID uuid.UUID,
) (domain.ChangedKeys, error) {
	changed, err := s.WriteOptimisticUpdates(ctx, op, rootKey, data, mutationID)
	if err != nil {
		return changed, err
	}
	return changed, s.Publish(ctx, changed)
}

// RollbackOptimisticUpdatesAndPublish rolls back like RollbackOptimisticUpdates and publishes the changed fields.
func (s *Store) RollbackOptimisticUpdatesAndPublish(ctx context.Context, mutationID uuid.UUID) (domain.ChangedKeys, error) {
	changed, err := s.RollbackOptimisticUpdates(ctx, mutationID)
	if err != nil {
		return changed, err
	}
	return changed, s.Publish(ctx, changed)
}

// Close stops the notifier and closes the record store.
func (s *Store) Close() error {
	s.notifier.Close()
	return s.records.Close()
}

func sortedRecords(records map[domain.CacheKey]*domain.Record) []*domain.Record {
	out := make([]*domain.Record, 0, len(records))
	for _, k := range slices.Sorted(maps.Keys(records)) {
		out = append(out, records[k])
	}
	return out
}
