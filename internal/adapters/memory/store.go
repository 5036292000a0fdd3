// Package memory implements an in-process record store.
package memory

import (
	"context"
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/normcache/internal/adapters/clock"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
)

type entry struct {
	record   *domain.Record
	storedAt time.Time
}

// Store keeps records in memory, optionally bounded to a number of records
// evicted in least-recently-used order.
type Store struct {
	mu          sync.Mutex
	records     *lru.Cache[domain.CacheKey, entry]
	index       domain.ReferenceIndex
	expireAfter time.Duration
	clock       ports.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithExpireAfter makes records older than d read as absent.
func WithExpireAfter(d time.Duration) Option {
	return func(s *Store) { s.expireAfter = d }
}

// WithClock sets the clock used for expiration.
func WithClock(c ports.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// New creates a memory store holding at most maxRecords records. A
// non-positive maxRecords means unbounded.
func New(maxRecords int, opts ...Option) (*Store, error) {
	if maxRecords <= 0 {
		maxRecords = math.MaxInt
	}
	s := &Store{
		index: domain.ReferenceIndex{},
		clock: clock.System{},
	}
	records, err := lru.NewWithEvict(maxRecords, s.onEvict)
	if err != nil {
		return nil, err
	}
	s.records = records
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// onEvict runs for every record leaving the cache, whether evicted for
// space, removed or purged. It is called with s.mu held.
func (s *Store) onEvict(key domain.CacheKey, e entry) {
	s.index.Update(key, e.record, nil)
}

// Load implements ports.RecordStore.
func (s *Store) Load(_ context.Context, keys []domain.CacheKey, headers domain.CacheHeaders) (map[domain.CacheKey]*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evict := headers.Flag(domain.HeaderEvictAfterRead)
	out := make(map[domain.CacheKey]*domain.Record, len(keys))
	for _, key := range keys {
		e, ok := s.records.Get(key)
		if !ok {
			continue
		}
		if s.expired(e) {
			s.records.Remove(key)
			continue
		}
		out[key] = e.record.Clone()
		if evict {
			s.records.Remove(key)
		}
	}
	return out, nil
}

// Merge implements ports.RecordStore.
func (s *Store) Merge(
	_ context.Context,
	records []*domain.Record,
	headers domain.CacheHeaders,
	merger ports.RecordMerger,
) (domain.MergeResult, error) {
	result := domain.NewMergeResult()
	if headers.Flag(domain.HeaderDoNotStore) {
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for _, incoming := range records {
		var existing *domain.Record
		if e, ok := s.records.Peek(incoming.Key); ok && !s.expired(e) {
			existing = e.record
		}
		merged, changed, conflicts := merger.Merge(existing, incoming)
		result.Add(domain.MergeResult{Changed: changed, Conflicts: conflicts})

		previous, _ := s.records.Peek(incoming.Key)
		s.records.Add(incoming.Key, entry{record: merged, storedAt: now})
		s.index.Update(incoming.Key, previous.record, merged)
	}
	return result, nil
}

// Remove implements ports.RecordStore.
func (s *Store) Remove(_ context.Context, key domain.CacheKey, cascade bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.remove(key, cascade)
	return n > 0, err
}

// RemoveAll implements ports.RecordStore.
func (s *Store) RemoveAll(_ context.Context, keys []domain.CacheKey, cascade bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, key := range keys {
		n, err := s.remove(key, cascade)
		if err != nil {
			return total, err
		}
		if n > 0 {
			total++
		}
	}
	return total, nil
}

// remove deletes key, and with cascade the records only it keeps reachable.
// It returns the number of records deleted.
func (s *Store) remove(key domain.CacheKey, cascade bool) (int, error) {
	if !cascade {
		if s.records.Remove(key) {
			return 1, nil
		}
		return 0, nil
	}

	plan, err := domain.PlanCascade(key, graph{s})
	if err != nil {
		return 0, err
	}
	for _, k := range plan {
		s.records.Remove(k)
	}
	return len(plan), nil
}

// Clear implements ports.RecordStore.
func (s *Store) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records.Purge()
	s.index = domain.ReferenceIndex{}
	return nil
}

// Dump implements ports.RecordStore.
func (s *Store) Dump(context.Context) (map[domain.CacheKey]*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[domain.CacheKey]*domain.Record, s.records.Len())
	for _, key := range s.records.Keys() {
		e, ok := s.records.Peek(key)
		if !ok || s.expired(e) {
			continue
		}
		out[key] = e.record.Clone()
	}
	return out, nil
}

// Len returns the number of records held, including expired ones not yet dropped.
func (s *Store) Len() int {
	return s.records.Len()
}

// Close implements ports.RecordStore.
func (s *Store) Close() error {
	return nil
}

func (s *Store) expired(e entry) bool {
	return s.expireAfter > 0 && s.clock.Now().Sub(e.storedAt) > s.expireAfter
}

// graph exposes the store to the cascade planner. It expects s.mu held.
type graph struct {
	s *Store
}

func (g graph) Record(key domain.CacheKey) (*domain.Record, error) {
	e, ok := g.s.records.Peek(key)
	if !ok {
		return nil, nil
	}
	return e.record, nil
}

func (g graph) Referrers(key domain.CacheKey) ([]domain.CacheKey, error) {
	return g.s.index.Referrers(key), nil
}

var _ ports.RecordStore = (*Store)(nil)
