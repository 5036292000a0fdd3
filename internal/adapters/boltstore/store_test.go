package boltstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/normcache/internal/adapters/boltstore"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/engine/merger"
)

func openStore(t *testing.T) (*boltstore.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache", "records.bolt")
	s, err := boltstore.Open(path)
	require.NoError(t, err)
	return s, path
}

func TestStore_MergeLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := openStore(t)
	defer func() { _ = s.Close() }()

	res, err := s.Merge(ctx, []*domain.Record{
		domain.NewRecord("User:1", domain.Fields{"name": "Ada"}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)
	assert.Equal(t, []string{"User:1.name"}, res.Changed.Sorted())

	res, err = s.Merge(ctx, []*domain.Record{
		domain.NewRecord("User:1", domain.Fields{"name": "Ada"}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)
	assert.Empty(t, res.Changed)

	got, err := s.Load(ctx, domain.Keys("User:1", "User:2"), domain.NoHeaders)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got["User:1"].Fields["name"])
}

func TestStore_Reopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, path := openStore(t)

	_, err := s.Merge(ctx, []*domain.Record{
		domain.NewRecord("A", domain.Fields{"b": domain.CacheKey("B")}),
		domain.NewRecord("B", domain.Fields{"v": int64(1)}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = boltstore.Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	removed, err := s.Remove(ctx, "A", true)
	require.NoError(t, err)
	assert.True(t, removed)

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.Empty(t, dump)
}

func TestStore_RemoveCascadeKeepsShared(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := openStore(t)
	defer func() { _ = s.Close() }()

	// A -> B -> C, D -> B
	_, err := s.Merge(ctx, []*domain.Record{
		domain.NewRecord("A", domain.Fields{"b": domain.CacheKey("B")}),
		domain.NewRecord("B", domain.Fields{"c": domain.CacheKey("C")}),
		domain.NewRecord("C", domain.Fields{"v": int64(1)}),
		domain.NewRecord("D", domain.Fields{"b": domain.CacheKey("B")}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)

	_, err = s.Remove(ctx, "A", true)
	require.NoError(t, err)

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.Len(t, dump, 3)
	assert.NotContains(t, dump, domain.CacheKey("A"))

	// D no longer references B once rewritten, so B and C go with it.
	_, err = s.Merge(ctx, []*domain.Record{
		domain.NewRecord("D", domain.Fields{"b": nil}),
		domain.NewRecord("E", domain.Fields{"d": domain.CacheKey("D")}),
		domain.NewRecord("F", domain.Fields{"b": domain.CacheKey("B")}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)

	n, err := s.RemoveAll(ctx, domain.Keys("F"), true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	dump, err = s.Dump(ctx)
	require.NoError(t, err)
	assert.Len(t, dump, 2)
	assert.Contains(t, dump, domain.CacheKey("D"))
	assert.Contains(t, dump, domain.CacheKey("E"))
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := openStore(t)
	defer func() { _ = s.Close() }()

	_, err := s.Merge(ctx, []*domain.Record{domain.NewRecord("A", domain.Fields{"v": int64(1)})},
		domain.NoHeaders, merger.Default{})
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx))

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.Empty(t, dump)
}
