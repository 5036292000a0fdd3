// Package gc finds and removes records no longer reachable from the roots.
package gc

import (
	"context"
	"maps"
	"slices"

	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
)

// ReachableFrom returns the keys of the records reachable from roots,
// following references breadth-first. Records are loaded one frontier at a
// time. Roots that are not in the store are not reachable.
func ReachableFrom(ctx context.Context, store ports.RecordStore, roots []domain.CacheKey) (map[domain.CacheKey]struct{}, error) {
	visited := make(map[domain.CacheKey]struct{})
	frontier := dedupe(roots, visited)

	for len(frontier) > 0 {
		records, err := store.Load(ctx, frontier, domain.NoHeaders)
		if err != nil {
			return nil, err
		}

		var next []domain.CacheKey
		for _, key := range frontier {
			rec, ok := records[key]
			if !ok {
				continue
			}
			visited[key] = struct{}{}
			next = append(next, rec.References()...)
		}
		frontier = dedupe(next, visited)
	}
	return visited, nil
}

// dedupe returns keys without duplicates and without the visited ones.
func dedupe(keys []domain.CacheKey, visited map[domain.CacheKey]struct{}) []domain.CacheKey {
	seen := make(map[domain.CacheKey]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := visited[k]; ok {
			continue
		}
		seen[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Collect removes every record not reachable from roots and returns the
// removed keys, sorted. The caller must keep writers out for the whole call.
func Collect(ctx context.Context, store ports.RecordStore, roots []domain.CacheKey) ([]domain.CacheKey, error) {
	reachable, err := ReachableFrom(ctx, store, roots)
	if err != nil {
		return nil, err
	}
	all, err := store.Dump(ctx)
	if err != nil {
		return nil, err
	}

	var unreachable []domain.CacheKey
	for key := range all {
		if _, ok := reachable[key]; !ok {
			unreachable = append(unreachable, key)
		}
	}
	if len(unreachable) == 0 {
		return nil, nil
	}
	slices.Sort(unreachable)

	// Every unreachable record goes, so no cascade check is needed.
	if _, err := store.RemoveAll(ctx, unreachable, false); err != nil {
		return nil, err
	}
	return unreachable, nil
}

// RemoveUnreachable collects the records not reachable from the root record.
func RemoveUnreachable(ctx context.Context, store ports.RecordStore) ([]domain.CacheKey, error) {
	return Collect(ctx, store, []domain.CacheKey{domain.RootKey})
}
