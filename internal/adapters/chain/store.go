// Package chain layers record stores, fastest first.
package chain

import (
	"context"
	"errors"
	"maps"
	"time"

	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
	"go.trai.ch/normcache/internal/engine/merger"
	"golang.org/x/sync/errgroup"
)

// Store reads through and writes through an ordered list of layers. A record
// found in a slower layer is copied into every faster one. With the
// memory-cache-only header only the first layer is used.
type Store struct {
	layers []ports.RecordStore
}

// New creates a chain of layers, fastest first. It owns the layers and
// closes them on Close.
func New(layers ...ports.RecordStore) *Store {
	return &Store{layers: layers}
}

func (s *Store) active(headers domain.CacheHeaders) []ports.RecordStore {
	if headers.Flag(domain.HeaderMemoryCacheOnly) && len(s.layers) > 0 {
		return s.layers[:1]
	}
	return s.layers
}

// Load implements ports.RecordStore.
func (s *Store) Load(ctx context.Context, keys []domain.CacheKey, headers domain.CacheHeaders) (map[domain.CacheKey]*domain.Record, error) {
	layers := s.active(headers)
	out := make(map[domain.CacheKey]*domain.Record, len(keys))
	missing := keys

	for i, layer := range layers {
		if len(missing) == 0 {
			break
		}
		found, err := layer.Load(ctx, missing, headers)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			continue
		}

		if i > 0 && !headers.Flag(domain.HeaderEvictAfterRead) {
			if err := s.populate(ctx, layers[:i], found); err != nil {
				return nil, err
			}
		}
		maps.Copy(out, found)

		var next []domain.CacheKey
		for _, k := range missing {
			if _, ok := found[k]; !ok {
				next = append(next, k)
			}
		}
		missing = next
	}
	return out, nil
}

// populate writes records read from a slower layer into the faster ones.
func (s *Store) populate(ctx context.Context, faster []ports.RecordStore, found map[domain.CacheKey]*domain.Record) error {
	records := make([]*domain.Record, 0, len(found))
	for _, r := range found {
		records = append(records, r)
	}
	for _, layer := range faster {
		if _, err := layer.Merge(ctx, records, domain.NoHeaders, merger.Default{}); err != nil {
			return err
		}
	}
	return nil
}

// Merge implements ports.RecordStore. Every layer is written concurrently and
// the changed fields of all layers are returned.
func (s *Store) Merge(
	ctx context.Context,
	records []*domain.Record,
	headers domain.CacheHeaders,
	m ports.RecordMerger,
) (domain.MergeResult, error) {
	layers := s.active(headers)
	if len(layers) == 0 {
		return domain.NewMergeResult(), nil
	}
	results := make([]domain.MergeResult, len(layers))

	g, ctx := errgroup.WithContext(ctx)
	for i, layer := range layers {
		g.Go(func() error {
			res, err := layer.Merge(ctx, records, headers, m)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return domain.NewMergeResult(), err
	}

	out := domain.NewMergeResult()
	out.Changed.Union(results[0].Changed)
	out.Conflicts = results[0].Conflicts
	for _, res := range results[1:] {
		out.Changed.Union(res.Changed)
	}
	return out, nil
}

// Remove implements ports.RecordStore.
func (s *Store) Remove(ctx context.Context, key domain.CacheKey, cascade bool) (bool, error) {
	n, err := s.RemoveAll(ctx, []domain.CacheKey{key}, cascade)
	return n > 0, err
}

// RemoveAll implements ports.RecordStore. It reports the largest count of
// any layer.
func (s *Store) RemoveAll(ctx context.Context, keys []domain.CacheKey, cascade bool) (int, error) {
	counts := make([]int, len(s.layers))

	g, ctx := errgroup.WithContext(ctx)
	for i, layer := range s.layers {
		g.Go(func() error {
			n, err := layer.RemoveAll(ctx, keys, cascade)
			counts[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, n := range counts {
		total = max(total, n)
	}
	return total, nil
}

// Clear implements ports.RecordStore.
func (s *Store) Clear(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, layer := range s.layers {
		g.Go(func() error {
			return layer.Clear(ctx)
		})
	}
	return g.Wait()
}

// Dump implements ports.RecordStore. Faster layers win for keys present in several.
func (s *Store) Dump(ctx context.Context) (map[domain.CacheKey]*domain.Record, error) {
	out := make(map[domain.CacheKey]*domain.Record)
	for i := len(s.layers) - 1; i >= 0; i-- {
		dump, err := s.layers[i].Dump(ctx)
		if err != nil {
			return nil, err
		}
		maps.Copy(out, dump)
	}
	return out, nil
}

// RemoveExpired implements ports.Expirer on every layer that tracks
// expiration dates and reports the largest count of any layer. Layers
// without dates keep their copies. It returns domain.ErrExpirationNotTracked
// when no layer tracks them.
func (s *Store) RemoveExpired(ctx context.Context, now time.Time) (int, error) {
	total, tracked := 0, false
	for _, layer := range s.layers {
		e, ok := expirerOf(layer)
		if !ok {
			continue
		}
		n, err := e.RemoveExpired(ctx, now)
		if errors.Is(err, domain.ErrExpirationNotTracked) {
			continue
		}
		if err != nil {
			return 0, err
		}
		tracked = true
		total = max(total, n)
	}
	if !tracked {
		return 0, domain.ErrExpirationNotTracked
	}
	return total, nil
}

// expirerOf finds an Expirer through decorators exposing Unwrap.
func expirerOf(s ports.RecordStore) (ports.Expirer, bool) {
	for {
		if e, ok := s.(ports.Expirer); ok {
			return e, true
		}
		u, ok := s.(interface{ Unwrap() ports.RecordStore })
		if !ok {
			return nil, false
		}
		s = u.Unwrap()
	}
}

// Close implements ports.RecordStore.
func (s *Store) Close() error {
	var errs error
	for _, layer := range s.layers {
		errs = errors.Join(errs, layer.Close())
	}
	return errs
}

var (
	_ ports.RecordStore = (*Store)(nil)
	_ ports.Expirer     = (*Store)(nil)
)
