package app_test

import (
	"context"
	"maps"
	"slices"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/normcache/internal/adapters/memory"
	"go.trai.ch/normcache/internal/app"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
	"go.trai.ch/normcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

var usersOp = domain.Operation{
	Name: "Users",
	Selections: []domain.Field{{
		Name: "users",
		Selections: []domain.Field{
			{Name: "__typename"},
			{Name: "id"},
			{Name: "name"},
			{Name: "repos", Selections: []domain.Field{
				{Name: "__typename"},
				{Name: "id"},
				{Name: "name"},
			}},
		},
	}},
}

func usersData() map[string]any {
	return map[string]any{
		"users": []any{
			map[string]any{
				"__typename": "User", "id": "1", "name": "Ada",
				"repos": []any{
					map[string]any{"__typename": "Repo", "id": "10", "name": "engine"},
				},
			},
			map[string]any{
				"__typename": "User", "id": "2", "name": "Grace",
				"repos": []any{},
			},
		},
	}
}

func newStore(t *testing.T, log ports.Logger) *app.Store {
	t.Helper()
	base, err := memory.New(0)
	require.NoError(t, err)
	s := app.NewStore(base, log)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func dumpKeys(t *testing.T, s *app.Store) []domain.CacheKey {
	t.Helper()
	dump, err := s.Dump(context.Background())
	require.NoError(t, err)
	return slices.Sorted(maps.Keys(dump))
}

func TestStore_CascadeAndCollect(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, mocks.NewMockLogger(gomock.NewController(t)))

	res, err := s.WriteOperation(ctx, usersOp, usersData(), domain.NoHeaders)
	require.NoError(t, err)
	assert.True(t, res.Changed.Has("QUERY_ROOT.users"))
	assert.True(t, res.Changed.Has("User:1.repos"))
	assert.True(t, res.Changed.Has("Repo:10.name"))
	assert.Empty(t, res.Conflicts)

	removed, err := s.Remove(ctx, "User:2", true)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, domain.Keys("QUERY_ROOT", "Repo:10", "User:1"), dumpKeys(t, s))

	_, err = s.WriteOperation(ctx, usersOp, map[string]any{"users": []any{}}, domain.NoHeaders)
	require.NoError(t, err)

	collected, err := s.RemoveUnreachable(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Keys("Repo:10", "User:1"), collected)
	assert.Equal(t, domain.Keys("QUERY_ROOT"), dumpKeys(t, s))
}

func TestStore_ReadOperationRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, mocks.NewMockLogger(gomock.NewController(t)))

	_, err := s.WriteOperation(ctx, usersOp, usersData(), domain.NoHeaders)
	require.NoError(t, err)

	got, err := s.ReadOperation(ctx, usersOp, domain.NoHeaders)
	require.NoError(t, err)
	require.True(t, got.Complete())
	assert.Equal(t, usersData(), got.Data)

	reachable, err := s.ReachableKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Keys("QUERY_ROOT", "Repo:10", "User:1", "User:2"), reachable)
}

func TestStore_WriteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, mocks.NewMockLogger(gomock.NewController(t)))

	_, err := s.WriteOperation(ctx, usersOp, usersData(), domain.NoHeaders)
	require.NoError(t, err)
	res, err := s.WriteOperation(ctx, usersOp, usersData(), domain.NoHeaders)
	require.NoError(t, err)
	assert.Empty(t, res.Changed)
}

func TestStore_Fragment(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, mocks.NewMockLogger(gomock.NewController(t)))

	frag := domain.Operation{Selections: []domain.Field{{Name: "name"}}}
	res, err := s.WriteFragment(ctx, frag, "User:7", map[string]any{"name": "Lin"}, domain.NoHeaders)
	require.NoError(t, err)
	assert.Equal(t, []string{"User:7.name"}, res.Changed.Sorted())

	got, err := s.ReadFragment(ctx, frag, "User:7", domain.NoHeaders)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Lin"}, got.Data)

	missing, err := s.ReadFragment(ctx, frag, "User:8", domain.NoHeaders)
	require.NoError(t, err)
	assert.Nil(t, missing.Data)
	require.ErrorIs(t, missing.Err(), domain.ErrCacheMiss)
}

func TestStore_OptimisticUpdates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, mocks.NewMockLogger(gomock.NewController(t)))

	frag := domain.Operation{Selections: []domain.Field{{Name: "name"}}}
	_, err := s.WriteFragment(ctx, frag, "User:1", map[string]any{"name": "Ada"}, domain.NoHeaders)
	require.NoError(t, err)

	_, err = s.WriteOptimisticUpdates(ctx, frag, "User:1", map[string]any{"name": "Grace"}, uuid.Nil)
	require.ErrorIs(t, err, domain.ErrMissingMutationID)

	id := uuid.New()
	changed, err := s.WriteOptimisticUpdates(ctx, frag, "User:1", map[string]any{"name": "Grace"}, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"User:1.name"}, changed.Sorted())
	assert.Len(t, s.OptimisticDump()["User:1"], 1)

	got, err := s.ReadFragment(ctx, frag, "User:1", domain.NoHeaders)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Data["name"])

	changed, err = s.RollbackOptimisticUpdates(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"User:1.name"}, changed.Sorted())

	got, err = s.ReadFragment(ctx, frag, "User:1", domain.NoHeaders)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Data["name"])
	assert.Empty(t, s.OptimisticDump())
}

func TestStore_PublishesChanges(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, mocks.NewMockLogger(gomock.NewController(t)))

	sub := s.Watch()
	defer sub.Close()

	res, err := s.WriteOperationAndPublish(ctx, usersOp, usersData(), domain.NoHeaders)
	require.NoError(t, err)

	frag := domain.Operation{Selections: []domain.Field{{Name: "name"}}}
	id := uuid.New()
	optimistic, err := s.WriteOptimisticUpdatesAndPublish(ctx, frag, "User:1", map[string]any{"name": "Grace"}, id)
	require.NoError(t, err)
	rollback, err := s.RollbackOptimisticUpdatesAndPublish(ctx, id)
	require.NoError(t, err)

	for _, want := range []domain.ChangedKeys{res.Changed, optimistic, rollback} {
		got, err := sub.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want.Sorted(), got.Sorted())
	}
}

func TestStore_LogsMergeConflicts(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	var warned string
	log.EXPECT().Warn(gomock.Any()).DoAndReturn(func(msg string) { warned = msg })

	s := newStore(t, log)

	withObject := domain.Operation{Selections: []domain.Field{{
		Name:       "me",
		Selections: []domain.Field{{Name: "__typename"}, {Name: "id"}},
	}}}
	_, err := s.WriteOperation(ctx, withObject, map[string]any{
		"me": map[string]any{"__typename": "User", "id": "1"},
	}, domain.NoHeaders)
	require.NoError(t, err)

	asScalar := domain.Operation{Selections: []domain.Field{{Name: "me"}}}
	res, err := s.WriteOperation(ctx, asScalar, map[string]any{"me": "anonymous"}, domain.NoHeaders)
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, domain.CacheKey("QUERY_ROOT"), res.Conflicts[0].Key)
	assert.Contains(t, warned, "merge conflict: QUERY_ROOT.me")
}

func TestStore_ClearAllAndRemoveAll(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, mocks.NewMockLogger(gomock.NewController(t)))

	_, err := s.WriteOperation(ctx, usersOp, usersData(), domain.NoHeaders)
	require.NoError(t, err)

	n, err := s.RemoveAll(ctx, domain.Keys("User:1", "User:2", "User:3"), false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, domain.Keys("QUERY_ROOT", "Repo:10"), dumpKeys(t, s))

	require.NoError(t, s.ClearAll(ctx))
	assert.Empty(t, dumpKeys(t, s))
}

func TestStore_ConcurrentWritesAndReads(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, mocks.NewMockLogger(gomock.NewController(t)))

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			_, err := s.WriteOperation(ctx, usersOp, usersData(), domain.NoHeaders)
			assert.NoError(t, err)
			_, err = s.ReadOperation(ctx, usersOp, domain.NoHeaders)
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	got, err := s.ReadOperation(ctx, usersOp, domain.NoHeaders)
	require.NoError(t, err)
	assert.Equal(t, usersData(), got.Data)
}
