package ports

import "go.trai.ch/normcache/internal/core/domain"

// KeyContext describes where an object appears in a result tree.
type KeyContext struct {
	// Field is the field whose value is the object.
	Field domain.Field
	// ParentType is the typename of the object holding Field.
	ParentType string
	Variables  map[string]any
}

// CacheKeyGenerator computes the identity of objects in a result tree.
//
// Contract:
//   - Determinism: the same object always yields the same key.
//   - Purity: implementations have no side effects.
//
//go:generate mockgen -source=keys.go -destination=mocks/mock_keys.go -package=mocks
type CacheKeyGenerator interface {
	// CacheKey returns the key of obj, or false when obj has no identity and
	// must be embedded in its parent.
	CacheKey(typename string, obj map[string]any, ctx KeyContext) (domain.CacheKey, bool)
}

// FieldKeyGenerator computes the key under which a field is stored in a record.
//
// Contract:
//   - Determinism: the same field and argument values always yield the same key,
//     regardless of map iteration or variable binding order.
type FieldKeyGenerator interface {
	FieldKey(field domain.Field, variables map[string]any) string
}

// EmbeddedFieldsProvider declares fields whose object values are always
// embedded in their parent, even when identifiable.
type EmbeddedFieldsProvider interface {
	IsEmbedded(typename, fieldName string) bool
}
