package resolver_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports/mocks"
	"go.trai.ch/normcache/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

func TestDefault_Resolve(t *testing.T) {
	t.Parallel()

	rec := domain.NewRecord("User:1", domain.Fields{"name": "Ada", "email": nil})

	res, err := resolver.Default{}.Resolve(domain.ResolveRequest{Parent: rec, FieldKey: "name"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", res.Value)

	res, err = resolver.Default{}.Resolve(domain.ResolveRequest{Parent: rec, FieldKey: "email"})
	require.NoError(t, err)
	assert.Nil(t, res.Value)

	_, err = resolver.Default{}.Resolve(domain.ResolveRequest{Parent: rec, FieldKey: "age"})
	require.ErrorIs(t, err, domain.ErrCacheMiss)
	var miss *domain.CacheMissError
	require.True(t, errors.As(err, &miss))
	assert.Equal(t, domain.CacheKey("User:1"), miss.Key)
	assert.Equal(t, "age", miss.FieldKey)
	assert.False(t, miss.Stale)
}

func TestCacheControl_Resolve(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	ages := resolver.MaxAgeTable{
		"User.name":  domain.FixedMaxAge(time.Minute),
		"User.email": domain.InheritMaxAge(),
	}

	record := func(received time.Time, expires time.Time) *domain.Record {
		rec := domain.NewRecord("User:1", domain.Fields{
			"__typename": "User", "name": "Ada", "email": "ada@example.com", "age": int64(36),
		})
		for _, fk := range []string{"name", "email", "age"} {
			rec.SetFieldMeta(fk, domain.FieldMeta{ReceivedAt: received, ExpiresAt: expires})
		}
		return rec
	}

	tests := []struct {
		name         string
		field        string
		received     time.Time
		expires      time.Time
		parentMaxAge domain.MaxAge
		maxStale     time.Duration
		wantStale    bool
		wantMiss     bool
		wantMaxAge   domain.MaxAge
	}{
		{
			name:       "fresh",
			field:      "name",
			received:   now.Add(-30 * time.Second),
			wantMaxAge: domain.FixedMaxAge(time.Minute),
		},
		{
			name:     "too old without max stale",
			field:    "name",
			received: now.Add(-2 * time.Minute),
			wantMiss: true,
		},
		{
			name:       "stale within max stale",
			field:      "name",
			received:   now.Add(-2 * time.Minute),
			maxStale:   5 * time.Minute,
			wantStale:  true,
			wantMaxAge: domain.FixedMaxAge(time.Minute),
		},
		{
			name:     "beyond max stale",
			field:    "name",
			received: now.Add(-10 * time.Minute),
			maxStale: 5 * time.Minute,
			wantMiss: true,
		},
		{
			name:         "explicit inherit",
			field:        "email",
			received:     now.Add(-20 * time.Second),
			parentMaxAge: domain.FixedMaxAge(10 * time.Second),
			wantMiss:     true,
		},
		{
			name:         "leaf without entry inherits",
			field:        "age",
			received:     now.Add(-20 * time.Second),
			parentMaxAge: domain.FixedMaxAge(time.Hour),
			wantMaxAge:   domain.FixedMaxAge(time.Hour),
		},
		{
			name:     "expired",
			field:    "age",
			expires:  now.Add(-time.Second),
			wantMiss: true,
		},
		{
			name:      "expired within max stale",
			field:     "age",
			expires:   now.Add(-time.Second),
			maxStale:  time.Minute,
			wantStale: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			clk := mocks.NewMockClock(ctrl)
			clk.EXPECT().Now().Return(now).AnyTimes()

			r := resolver.NewCacheControl(ages, domain.MaxAge{}, resolver.WithClock(clk))
			headers := domain.NoHeaders
			if tt.maxStale > 0 {
				headers = headers.WithDuration(domain.HeaderMaxStale, tt.maxStale)
			}

			res, err := r.Resolve(domain.ResolveRequest{
				Field:        domain.Field{Name: tt.field},
				FieldKey:     tt.field,
				Parent:       record(tt.received, tt.expires),
				ParentType:   "User",
				ParentMaxAge: tt.parentMaxAge,
				Headers:      headers,
			})

			if tt.wantMiss {
				var miss *domain.CacheMissError
				require.True(t, errors.As(err, &miss), "expected a cache miss, got %v", err)
				assert.True(t, miss.Stale)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStale, res.Stale)
			assert.Equal(t, tt.wantMaxAge, res.MaxAge)
		})
	}
}

func TestCacheControl_RootDefault(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	now := time.Unix(1_700_000_000, 0)
	clk := mocks.NewMockClock(ctrl)
	clk.EXPECT().Now().Return(now).AnyTimes()
	ages := mocks.NewMockMaxAgeProvider(ctrl)
	ages.EXPECT().MaxAge("", "me").Return(domain.MaxAge{})

	root := domain.NewRecord(domain.RootKey, domain.Fields{"me": domain.CacheKey("User:1")})
	root.SetFieldMeta("me", domain.FieldMeta{ReceivedAt: now.Add(-time.Hour)})

	r := resolver.NewCacheControl(ages, domain.FixedMaxAge(time.Minute), resolver.WithClock(clk))
	_, err := r.Resolve(domain.ResolveRequest{
		Field:    domain.Field{Name: "me", Selections: []domain.Field{{Name: "id"}}},
		FieldKey: "me",
		Parent:   root,
	})
	require.ErrorIs(t, err, domain.ErrCacheMiss)
}
