package merger_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/engine/merger"
)

func TestDefault_NewRecord(t *testing.T) {
	t.Parallel()

	incoming := domain.NewRecord("User:1", domain.Fields{"name": "Ada", "age": int64(36)})
	merged, changed, conflicts := merger.Default{}.Merge(nil, incoming)

	assert.True(t, merged.Equal(incoming))
	assert.Equal(t, []string{"User:1.age", "User:1.name"}, changed.Sorted())
	assert.Empty(t, conflicts)

	merged.Fields["name"] = "changed"
	assert.Equal(t, "Ada", incoming.Fields["name"], "incoming must not be aliased")
}

func TestDefault_ChangedKeys(t *testing.T) {
	t.Parallel()

	existing := domain.NewRecord("User:1", domain.Fields{
		"name":  "Ada",
		"repos": []any{domain.CacheKey("Repo:1")},
		"kept":  true,
	})
	incoming := domain.NewRecord("User:1", domain.Fields{
		"name":  "Ada",
		"repos": []any{domain.CacheKey("Repo:1"), domain.CacheKey("Repo:2")},
		"email": nil,
	})

	merged, changed, conflicts := merger.Default{}.Merge(existing, incoming)

	assert.Equal(t, []string{"User:1.email", "User:1.repos"}, changed.Sorted())
	assert.Empty(t, conflicts)
	assert.Equal(t, true, merged.Fields["kept"])
	assert.Len(t, merged.Fields["repos"], 2)
	assert.Len(t, existing.Fields["repos"], 1, "existing must not be modified")
}

func TestDefault_Idempotent(t *testing.T) {
	t.Parallel()

	incoming := domain.NewRecord("User:1", domain.Fields{
		"name":    "Ada",
		"address": domain.Object{"city": "London"},
	})

	first, _, _ := merger.Default{}.Merge(nil, incoming)
	second, changed, _ := merger.Default{}.Merge(first, incoming)

	assert.Empty(t, changed)
	assert.True(t, first.Equal(second))
}

func TestDefault_Conflict(t *testing.T) {
	t.Parallel()

	existing := domain.NewRecord("QUERY_ROOT", domain.Fields{
		"me":    domain.CacheKey("User:1"),
		"label": "x",
		"gone":  domain.CacheKey("User:2"),
	})
	incoming := domain.NewRecord("QUERY_ROOT", domain.Fields{
		"me":    "User:1",
		"label": domain.CacheKey("Label:x"),
		"gone":  nil,
	})

	merged, changed, conflicts := merger.Default{}.Merge(existing, incoming)

	require.Len(t, conflicts, 2)
	assert.Equal(t, domain.MergeConflict{
		Key: "QUERY_ROOT", FieldKey: "label", Existing: domain.KindScalar, Incoming: domain.KindReference,
	}, conflicts[0])
	assert.Equal(t, domain.MergeConflict{
		Key: "QUERY_ROOT", FieldKey: "me", Existing: domain.KindReference, Incoming: domain.KindScalar,
	}, conflicts[1])
	assert.Equal(t, "User:1", merged.Fields["me"], "incoming value wins")
	assert.Nil(t, merged.Fields["gone"])
	assert.Len(t, changed, 3)
}

func TestDefault_MetadataAndMutation(t *testing.T) {
	t.Parallel()

	t1 := time.Unix(100, 0)
	t2 := time.Unix(200, 0)

	existing := domain.NewRecord("User:1", domain.Fields{"name": "Ada", "age": int64(1)})
	existing.SetFieldMeta("name", domain.FieldMeta{ReceivedAt: t1})
	existing.SetFieldMeta("age", domain.FieldMeta{ReceivedAt: t1})

	incoming := domain.NewRecord("User:1", domain.Fields{"name": "Ada"})
	incoming.SetFieldMeta("name", domain.FieldMeta{ReceivedAt: t2})
	incoming.MutationID = uuid.New()

	merged, changed, _ := merger.Default{}.Merge(existing, incoming)

	assert.Empty(t, changed)
	assert.True(t, merged.FieldMeta("name").ReceivedAt.Equal(t2))
	assert.True(t, merged.FieldMeta("age").ReceivedAt.Equal(t1))
	assert.Equal(t, incoming.MutationID, merged.MutationID)
}

func TestFieldPolicy_UnionList(t *testing.T) {
	t.Parallel()

	m := merger.NewFieldPolicy(map[string]merger.Combinator{
		"feed": merger.UnionList,
		"tags": merger.Replace,
	})

	existing := domain.NewRecord("QUERY_ROOT", domain.Fields{
		"feed": []any{domain.CacheKey("Post:1"), domain.CacheKey("Post:2")},
		"tags": []any{"a"},
	})
	incoming := domain.NewRecord("QUERY_ROOT", domain.Fields{
		"feed": []any{domain.CacheKey("Post:2"), domain.CacheKey("Post:3")},
		"tags": []any{"b"},
	})

	merged, changed, _ := m.Merge(existing, incoming)
	assert.Equal(t,
		[]any{domain.CacheKey("Post:1"), domain.CacheKey("Post:2"), domain.CacheKey("Post:3")},
		merged.Fields["feed"],
	)
	assert.Equal(t, []any{"b"}, merged.Fields["tags"])
	assert.Equal(t, []string{"QUERY_ROOT.feed", "QUERY_ROOT.tags"}, changed.Sorted())

	again, changed, _ := m.Merge(merged, incoming)
	assert.Empty(t, changed)
	assert.True(t, again.Equal(merged))
}
