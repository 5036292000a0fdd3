package sqlstore_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/normcache/internal/adapters/sqlstore"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/engine/merger"
)

func openStore(t *testing.T, withDates bool) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.Open(context.Background(), "", withDates)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_MergeLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t, false)

	res, err := s.Merge(ctx, []*domain.Record{
		domain.NewRecord("User:1", domain.Fields{"name": "Ada", "best": domain.CacheKey("Repo:1")}),
		domain.NewRecord("Repo:1", domain.Fields{"stars": int64(3)}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Repo:1.stars", "User:1.best", "User:1.name"}, res.Changed.Sorted())

	res, err = s.Merge(ctx, []*domain.Record{
		domain.NewRecord("User:1", domain.Fields{"name": "Ada Lovelace"}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)
	assert.Equal(t, []string{"User:1.name"}, res.Changed.Sorted())

	got, err := s.Load(ctx, domain.Keys("User:1", "Repo:1", "Repo:404"), domain.NoHeaders)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Fields{"name": "Ada Lovelace", "best": domain.CacheKey("Repo:1")}, got["User:1"].Fields)
	assert.Equal(t, int64(3), got["Repo:1"].Fields["stars"])
}

func TestStore_LoadBatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t, false)

	var (
		records []*domain.Record
		keys    []domain.CacheKey
	)
	for i := range 1234 {
		key := domain.CacheKey(fmt.Sprintf("Item:%d", i))
		records = append(records, domain.NewRecord(key, domain.Fields{"n": int64(i)}))
		keys = append(keys, key)
	}
	_, err := s.Merge(ctx, records, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)

	got, err := s.Load(ctx, keys, domain.NoHeaders)
	require.NoError(t, err)
	assert.Len(t, got, 1234)
	assert.Equal(t, int64(1000), got["Item:1000"].Fields["n"])
}

func TestStore_DoNotStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t, false)

	_, err := s.Merge(ctx, []*domain.Record{domain.NewRecord("A", domain.Fields{"v": int64(1)})},
		domain.NoHeaders.WithFlag(domain.HeaderDoNotStore), merger.Default{})
	require.NoError(t, err)

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.Empty(t, dump)
}

func TestStore_RemoveCascade(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t, false)

	_, err := s.Merge(ctx, []*domain.Record{
		domain.NewRecord("A", domain.Fields{"b": domain.CacheKey("B"), "c": domain.CacheKey("C")}),
		domain.NewRecord("B", domain.Fields{"v": int64(1)}),
		domain.NewRecord("C", domain.Fields{"v": int64(2)}),
		domain.NewRecord("D", domain.Fields{"c": domain.CacheKey("C")}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)

	removed, err := s.Remove(ctx, "A", true)
	require.NoError(t, err)
	assert.True(t, removed)

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, domain.Keys("C", "D"), keysOf(dump))

	n, err := s.RemoveAll(ctx, domain.Keys("C", "D", "Z"), false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_Persistence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "records.db")

	s, err := sqlstore.Open(ctx, path, false)
	require.NoError(t, err)
	_, err = s.Merge(ctx, []*domain.Record{
		domain.NewRecord("User:1", domain.Fields{"address": domain.Object{"city": "London"}}),
	}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = sqlstore.Open(ctx, path, false)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Load(ctx, domain.Keys("User:1"), domain.NoHeaders)
	require.NoError(t, err)
	assert.Equal(t, domain.Object{"city": "London"}, got["User:1"].Fields["address"])

	require.NoError(t, s.Clear(ctx))
	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.Empty(t, dump)
}

func TestStore_RemoveExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t, true)

	now := time.Unix(1_700_000_000, 0)
	old := domain.NewRecord("Old", domain.Fields{"v": int64(1)})
	old.SetFieldMeta("v", domain.FieldMeta{ReceivedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)})
	fresh := domain.NewRecord("Fresh", domain.Fields{"v": int64(2)})
	fresh.SetFieldMeta("v", domain.FieldMeta{ReceivedAt: now, ExpiresAt: now.Add(time.Hour)})
	undated := domain.NewRecord("Undated", domain.Fields{"v": int64(3)})

	_, err := s.Merge(ctx, []*domain.Record{old, fresh, undated}, domain.NoHeaders, merger.Default{})
	require.NoError(t, err)

	n, err := s.RemoveExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, domain.Keys("Fresh", "Undated"), keysOf(dump))
	assert.True(t, dump["Fresh"].FieldMeta("v").ExpiresAt.Equal(now.Add(time.Hour)))
}

func TestStore_RemoveExpiredWithoutDates(t *testing.T) {
	t.Parallel()

	s := openStore(t, false)
	n, err := s.RemoveExpired(context.Background(), time.Now())
	require.ErrorIs(t, err, domain.ErrExpirationNotTracked)
	assert.Zero(t, n)
}

func TestStore_ClosedBackendFailure(t *testing.T) {
	t.Parallel()

	s, err := sqlstore.Open(context.Background(), "", false)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Load(context.Background(), domain.Keys("A"), domain.NoHeaders)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBackendFailure))
}

func keysOf(m map[domain.CacheKey]*domain.Record) []domain.CacheKey {
	out := make([]domain.CacheKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
