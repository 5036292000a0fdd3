// Package resolver reads fields back out of records and rebuilds result trees.
package resolver

import (
	"time"

	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
)

// Default returns the stored value of the requested field key.
type Default struct{}

// Resolve implements ports.CacheResolver.
func (Default) Resolve(req domain.ResolveRequest) (domain.Resolution, error) {
	v, ok := req.Parent.Fields[req.FieldKey]
	if !ok {
		return domain.Resolution{}, &domain.CacheMissError{Key: req.Parent.Key, FieldKey: req.FieldKey}
	}
	return domain.Resolution{Value: v}, nil
}

// MaxAgeTable is a MaxAgeProvider backed by a "Type.field" table.
type MaxAgeTable map[string]domain.MaxAge

// MaxAge implements ports.MaxAgeProvider. Fields missing from the table are unset.
func (t MaxAgeTable) MaxAge(typename, fieldName string) domain.MaxAge {
	return t[domain.MaxAgeKeyOf(typename, fieldName)]
}

// CacheControl resolves fields like its delegate, then applies freshness.
//
// A field's max age comes from the provider. Without an entry, root and
// composite fields use the default max age and leaf fields inherit their
// parent's. A field older than its max age is stale; a stale field is still
// returned while within the max-stale header, otherwise it is a miss. A field
// past its expiration date follows the same max-stale rule.
type CacheControl struct {
	delegate      ports.CacheResolver
	ages          ports.MaxAgeProvider
	defaultMaxAge domain.MaxAge
	clock         ports.Clock
}

// CacheControlOption configures a CacheControl resolver.
type CacheControlOption func(*CacheControl)

// WithDelegate sets the resolver reading the raw value.
func WithDelegate(r ports.CacheResolver) CacheControlOption {
	return func(c *CacheControl) { c.delegate = r }
}

// WithClock sets the clock freshness is measured against.
func WithClock(cl ports.Clock) CacheControlOption {
	return func(c *CacheControl) { c.clock = cl }
}

// NewCacheControl creates a freshness-aware resolver.
func NewCacheControl(ages ports.MaxAgeProvider, defaultMaxAge domain.MaxAge, opts ...CacheControlOption) *CacheControl {
	c := &CacheControl{
		delegate:      Default{},
		ages:          ages,
		defaultMaxAge: defaultMaxAge,
		clock:         wallClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve implements ports.CacheResolver.
func (c *CacheControl) Resolve(req domain.ResolveRequest) (domain.Resolution, error) {
	res, err := c.delegate.Resolve(req)
	if err != nil {
		return res, err
	}

	maxAge := c.ages.MaxAge(req.ParentType, req.Field.Name)
	if maxAge.Kind == domain.MaxAgeUnset {
		if req.Field.IsComposite() || req.Parent.Key.IsRoot() {
			maxAge = c.defaultMaxAge
		} else {
			maxAge = domain.InheritMaxAge()
		}
	}
	maxAge = maxAge.Resolve(req.ParentMaxAge)
	res.MaxAge = maxAge

	maxStale, _ := req.Headers.Duration(domain.HeaderMaxStale)
	meta := req.Parent.FieldMeta(req.FieldKey)
	now := c.clock.Now()
	miss := &domain.CacheMissError{Key: req.Parent.Key, FieldKey: req.FieldKey, Stale: true}

	if !meta.ExpiresAt.IsZero() {
		if over := now.Sub(meta.ExpiresAt); over > 0 {
			if over > maxStale {
				return domain.Resolution{}, miss
			}
			res.Stale = true
		}
	}

	if maxAge.Kind == domain.MaxAgeFixed && !meta.ReceivedAt.IsZero() {
		if age := now.Sub(meta.ReceivedAt); age > maxAge.Duration {
			if age > maxAge.Duration+maxStale {
				return domain.Resolution{}, miss
			}
			res.Stale = true
		}
	}
	return res, nil
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

var (
	_ ports.CacheResolver  = Default{}
	_ ports.CacheResolver  = (*CacheControl)(nil)
	_ ports.MaxAgeProvider = MaxAgeTable(nil)
)
