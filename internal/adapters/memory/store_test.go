package memory_test

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/normcache/internal/adapters/memory"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/engine/merger"
)

func rec(key string, fields domain.Fields) *domain.Record {
	return domain.NewRecord(domain.CacheKey(key), fields)
}

func TestStore_MergeLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := memory.New(0)
	require.NoError(t, err)

	res, err := s.Merge(ctx, []*domain.Record{
		rec("User:1", domain.Fields{"name": "Ada"}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)
	assert.Equal(t, []string{"User:1.name"}, res.Changed.Sorted())

	res, err = s.Merge(ctx, []*domain.Record{
		rec("User:1", domain.Fields{"name": "Ada", "age": int64(36)}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)
	assert.Equal(t, []string{"User:1.age"}, res.Changed.Sorted())

	got, err := s.Load(ctx, domain.Keys("User:1", "User:404"), domain.NoHeaders)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.Fields{"name": "Ada", "age": int64(36)}, got["User:1"].Fields)

	got["User:1"].Fields["name"] = "mutated"
	again, err := s.Load(ctx, domain.Keys("User:1"), domain.NoHeaders)
	require.NoError(t, err)
	assert.Equal(t, "Ada", again["User:1"].Fields["name"], "loaded records must be copies")
}

func TestStore_DoNotStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := memory.New(0)
	require.NoError(t, err)

	res, err := s.Merge(ctx, []*domain.Record{rec("User:1", domain.Fields{"name": "Ada"})},
		domain.NoHeaders.WithFlag(domain.HeaderDoNotStore), merger.Default{})
	require.NoError(t, err)
	assert.Empty(t, res.Changed)
	assert.Equal(t, 0, s.Len())
}

func TestStore_EvictAfterRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := memory.New(0)
	require.NoError(t, err)

	_, err = s.Merge(ctx, []*domain.Record{rec("User:1", domain.Fields{"name": "Ada"})}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)

	got, err := s.Load(ctx, domain.Keys("User:1"), domain.NoHeaders.WithFlag(domain.HeaderEvictAfterRead))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.Load(ctx, domain.Keys("User:1"), domain.NoHeaders)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_MaxRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := memory.New(2)
	require.NoError(t, err)

	for _, k := range []string{"A:1", "A:2"} {
		_, err = s.Merge(ctx, []*domain.Record{rec(k, domain.Fields{"v": k})}, domain.NoHeaders, merger.Default{})
		require.NoError(t, err)
	}
	// Touch A:1 so A:2 is the least recently used.
	_, err = s.Load(ctx, domain.Keys("A:1"), domain.NoHeaders)
	require.NoError(t, err)

	_, err = s.Merge(ctx, []*domain.Record{rec("A:3", domain.Fields{"v": "A:3"})}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.Len(t, dump, 2)
	assert.Contains(t, dump, domain.CacheKey("A:1"))
	assert.Contains(t, dump, domain.CacheKey("A:3"))
}

func TestStore_ExpireAfter(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		s, err := memory.New(0, memory.WithExpireAfter(time.Minute))
		require.NoError(t, err)

		_, err = s.Merge(ctx, []*domain.Record{rec("User:1", domain.Fields{"name": "Ada"})}, domain.NoHeaders, merger.Default{})
		require.NoError(t, err)

		time.Sleep(30 * time.Second)
		got, err := s.Load(ctx, domain.Keys("User:1"), domain.NoHeaders)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		time.Sleep(31 * time.Second)
		got, err = s.Load(ctx, domain.Keys("User:1"), domain.NoHeaders)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStore_RemoveCascade(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := memory.New(0)
	require.NoError(t, err)

	// A -> B -> C, D -> C
	_, err = s.Merge(ctx, []*domain.Record{
		rec("A", domain.Fields{"b": domain.CacheKey("B")}),
		rec("B", domain.Fields{"c": domain.CacheKey("C")}),
		rec("C", domain.Fields{"v": int64(1)}),
		rec("D", domain.Fields{"c": []any{domain.CacheKey("C")}}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)

	removed, err := s.Remove(ctx, "A", true)
	require.NoError(t, err)
	assert.True(t, removed)

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.NotContains(t, dump, domain.CacheKey("A"))
	assert.NotContains(t, dump, domain.CacheKey("B"))
	assert.Contains(t, dump, domain.CacheKey("C"), "C is still referenced by D")
	assert.Contains(t, dump, domain.CacheKey("D"))

	removed, err = s.Remove(ctx, "A", true)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_RemoveWithoutCascade(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := memory.New(0)
	require.NoError(t, err)

	_, err = s.Merge(ctx, []*domain.Record{
		rec("A", domain.Fields{"b": domain.CacheKey("B")}),
		rec("B", domain.Fields{"v": int64(1)}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)

	n, err := s.RemoveAll(ctx, domain.Keys("A", "Z"), false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.Contains(t, dump, domain.CacheKey("B"))
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := memory.New(0)
	require.NoError(t, err)

	_, err = s.Merge(ctx, []*domain.Record{rec("A", domain.Fields{"v": int64(1)})}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx))

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.Empty(t, dump)
	require.NoError(t, s.Close())
}
