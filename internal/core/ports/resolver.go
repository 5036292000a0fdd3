package ports

import (
	"time"

	"go.trai.ch/normcache/internal/core/domain"
)

// CacheResolver resolves one requested field against its parent record.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type CacheResolver interface {
	// Resolve returns the stored value or a *domain.CacheMissError.
	Resolve(req domain.ResolveRequest) (domain.Resolution, error)
}

// MaxAgeProvider returns the freshness policy of a field.
type MaxAgeProvider interface {
	MaxAge(typename, fieldName string) domain.MaxAge
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}
