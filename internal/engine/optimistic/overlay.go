// Package optimistic layers provisional records over a record store.
package optimistic

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
	"go.trai.ch/normcache/internal/engine/merger"
)

type journalEntry struct {
	mutationID uuid.UUID
	record     *domain.Record
}

// Store is a record store whose reads see optimistic records folded over
// the records of its base, in the order they were added. Optimistic records
// are never written to the base; rolling a mutation back drops its records.
type Store struct {
	base   ports.RecordStore
	merger ports.RecordMerger

	mu       sync.RWMutex
	journals map[domain.CacheKey][]journalEntry
}

// New creates an overlay over base.
func New(base ports.RecordStore) *Store {
	return &Store{
		base:     base,
		merger:   merger.Default{},
		journals: make(map[domain.CacheKey][]journalEntry),
	}
}

// AddOptimisticUpdates layers records over the store. Every record must carry
// a mutation id. It returns the fields whose visible value changed.
func (s *Store) AddOptimisticUpdates(ctx context.Context, records []*domain.Record) (domain.ChangedKeys, error) {
	for _, r := range records {
		if r.MutationID == uuid.Nil {
			return nil, domain.ErrMissingMutationID
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys := uniqueKeys(records)
	before, err := s.visible(ctx, keys)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		s.journals[r.Key] = append(s.journals[r.Key], journalEntry{mutationID: r.MutationID, record: r.Clone()})
	}
	after, err := s.visible(ctx, keys)
	if err != nil {
		return nil, err
	}
	return diff(keys, before, after), nil
}

// RemoveOptimisticUpdates drops every record added with mutationID and
// returns the fields whose visible value changed. An unknown id changes nothing.
func (s *Store) RemoveOptimisticUpdates(ctx context.Context, mutationID uuid.UUID) (domain.ChangedKeys, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []domain.CacheKey
	for key, journal := range s.journals {
		if slices.ContainsFunc(journal, func(e journalEntry) bool { return e.mutationID == mutationID }) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return domain.ChangedKeys{}, nil
	}
	slices.Sort(keys)

	before, err := s.visible(ctx, keys)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		journal := slices.DeleteFunc(s.journals[key], func(e journalEntry) bool { return e.mutationID == mutationID })
		if len(journal) == 0 {
			delete(s.journals, key)
		} else {
			s.journals[key] = journal
		}
	}
	after, err := s.visible(ctx, keys)
	if err != nil {
		return nil, err
	}
	return diff(keys, before, after), nil
}

// OverlayDump returns the journaled records of every key, oldest first.
func (s *Store) OverlayDump() map[domain.CacheKey][]*domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.CacheKey][]*domain.Record, len(s.journals))
	for key, journal := range s.journals {
		records := make([]*domain.Record, len(journal))
		for i, e := range journal {
			records[i] = e.record.Clone()
		}
		out[key] = records
	}
	return out
}

// Load implements ports.RecordStore.
func (s *Store) Load(ctx context.Context, keys []domain.CacheKey, headers domain.CacheHeaders) (map[domain.CacheKey]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base, err := s.base.Load(ctx, keys, headers)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = make(map[domain.CacheKey]*domain.Record, len(keys))
	}
	for _, key := range keys {
		if r := s.fold(key, base[key]); r != nil {
			base[key] = r
		}
	}
	return base, nil
}

// Merge implements ports.RecordStore. Records are written to the base.
func (s *Store) Merge(
	ctx context.Context,
	records []*domain.Record,
	headers domain.CacheHeaders,
	m ports.RecordMerger,
) (domain.MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.base.Merge(ctx, records, headers, m)
}

// Remove implements ports.RecordStore. The optimistic records of key are
// dropped too. A cascade is planned over the records as reads see them, so
// references held only by optimistic records are followed and every deleted
// key loses its optimistic records.
func (s *Store) Remove(ctx context.Context, key domain.CacheKey, cascade bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove(ctx, key, cascade)
}

// RemoveAll implements ports.RecordStore. Keys held only by optimistic
// records count as existing.
func (s *Store) RemoveAll(ctx context.Context, keys []domain.CacheKey, cascade bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cascade {
		total := 0
		for _, key := range keys {
			removed, err := s.remove(ctx, key, true)
			if err != nil {
				return total, err
			}
			if removed {
				total++
			}
		}
		return total, nil
	}

	stored, err := s.base.Load(ctx, keys, domain.NoHeaders)
	if err != nil {
		return 0, err
	}
	total := 0
	seen := make(map[domain.CacheKey]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		_, inBase := stored[key]
		_, journaled := s.journals[key]
		if inBase || journaled {
			total++
		}
		delete(s.journals, key)
	}
	if _, err := s.base.RemoveAll(ctx, keys, false); err != nil {
		return 0, err
	}
	return total, nil
}

// remove deletes key from the base and the journals. It expects s.mu held.
func (s *Store) remove(ctx context.Context, key domain.CacheKey, cascade bool) (bool, error) {
	if !cascade {
		_, journaled := s.journals[key]
		delete(s.journals, key)
		removed, err := s.base.Remove(ctx, key, false)
		return removed || journaled, err
	}

	g, err := s.effective(ctx)
	if err != nil {
		return false, err
	}
	plan, err := domain.PlanCascade(key, g)
	if err != nil {
		return false, err
	}
	if len(plan) == 0 {
		return false, nil
	}
	for _, k := range plan {
		delete(s.journals, k)
	}
	if _, err := s.base.RemoveAll(ctx, plan, false); err != nil {
		return false, err
	}
	return true, nil
}

// Clear implements ports.RecordStore. Optimistic records are dropped as well.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.journals)
	return s.base.Clear(ctx)
}

// Dump implements ports.RecordStore. It returns the records as reads see them.
func (s *Store) Dump(ctx context.Context) (map[domain.CacheKey]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out, err := s.base.Dump(ctx)
	if err != nil {
		return nil, err
	}
	for key := range s.journals {
		out[key] = s.fold(key, out[key])
	}
	return out, nil
}

// Close implements ports.RecordStore.
func (s *Store) Close() error {
	return s.base.Close()
}

// effective returns every record as reads see them, with its reverse
// reference index. It expects s.mu held.
func (s *Store) effective(ctx context.Context) (effectiveGraph, error) {
	records, err := s.base.Dump(ctx)
	if err != nil {
		return effectiveGraph{}, err
	}
	if records == nil {
		records = make(map[domain.CacheKey]*domain.Record, len(s.journals))
	}
	for key := range s.journals {
		records[key] = s.fold(key, records[key])
	}
	index := domain.ReferenceIndex{}
	for key, r := range records {
		index.Update(key, nil, r)
	}
	return effectiveGraph{records: records, index: index}, nil
}

// effectiveGraph exposes the folded records to the cascade planner.
type effectiveGraph struct {
	records map[domain.CacheKey]*domain.Record
	index   domain.ReferenceIndex
}

func (g effectiveGraph) Record(key domain.CacheKey) (*domain.Record, error) {
	return g.records[key], nil
}

func (g effectiveGraph) Referrers(key domain.CacheKey) ([]domain.CacheKey, error) {
	return g.index.Referrers(key), nil
}

// visible returns the records of keys as reads see them. It expects s.mu held.
func (s *Store) visible(ctx context.Context, keys []domain.CacheKey) (map[domain.CacheKey]*domain.Record, error) {
	base, err := s.base.Load(ctx, keys, domain.NoHeaders)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.CacheKey]*domain.Record, len(keys))
	for _, key := range keys {
		if r := s.fold(key, base[key]); r != nil {
			out[key] = r
		}
	}
	return out, nil
}

// fold applies the journal of key over its base record.
func (s *Store) fold(key domain.CacheKey, base *domain.Record) *domain.Record {
	journal := s.journals[key]
	if len(journal) == 0 {
		return base
	}
	acc := base
	for _, e := range journal {
		acc, _, _ = s.merger.Merge(acc, e.record)
	}
	return acc
}

func uniqueKeys(records []*domain.Record) []domain.CacheKey {
	seen := make(map[domain.CacheKey]struct{}, len(records))
	for _, r := range records {
		seen[r.Key] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// diff returns the fields of keys whose value differs between two views.
func diff(keys []domain.CacheKey, before, after map[domain.CacheKey]*domain.Record) domain.ChangedKeys {
	changed := domain.ChangedKeys{}
	for _, key := range keys {
		b, a := before[key], after[key]
		fieldKeys := make(map[string]struct{})
		if b != nil {
			for fk := range b.Fields {
				fieldKeys[fk] = struct{}{}
			}
		}
		if a != nil {
			for fk := range a.Fields {
				fieldKeys[fk] = struct{}{}
			}
		}
		for fk := range fieldKeys {
			bv, bok := fieldOf(b, fk)
			av, aok := fieldOf(a, fk)
			if bok != aok || !domain.ValuesEqual(bv, av) {
				changed.Add(key, fk)
			}
		}
	}
	return changed
}

func fieldOf(r *domain.Record, fk string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.Fields[fk]
	return v, ok
}

var _ ports.RecordStore = (*Store)(nil)
