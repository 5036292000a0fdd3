// Package keys provides the default cache key and field key generators.
package keys

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
)

// DefaultIDField is the key field used for types without a policy.
const DefaultIDField = "id"

// TypePolicyGenerator identifies objects by the key fields declared for their
// type, falling back to the id field.
type TypePolicyGenerator struct {
	policies map[string][]string
}

// NewTypePolicyGenerator creates a generator from per-type key fields.
func NewTypePolicyGenerator(policies map[string]domain.TypePolicy) *TypePolicyGenerator {
	g := &TypePolicyGenerator{policies: make(map[string][]string, len(policies))}
	for typename, p := range policies {
		g.policies[typename] = slices.Clone(p.KeyFields)
	}
	return g
}

// CacheKey returns "<typename>:<key values>" when every key field is present
// and non-null. Objects without a typename are never identifiable.
func (g *TypePolicyGenerator) CacheKey(typename string, obj map[string]any, _ ports.KeyContext) (domain.CacheKey, bool) {
	if typename == "" {
		typename, _ = obj[domain.TypenameField].(string)
	}
	if typename == "" {
		return "", false
	}

	keyFields, ok := g.policies[typename]
	if !ok || len(keyFields) == 0 {
		keyFields = []string{DefaultIDField}
	}

	values := make([]string, 0, len(keyFields))
	for _, f := range keyFields {
		v, ok := obj[f]
		if !ok || v == nil {
			return "", false
		}
		s, ok := scalarString(v)
		if !ok {
			return "", false
		}
		values = append(values, s)
	}
	return domain.NewCacheKey(typename, values...), true
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	default:
		return "", false
	}
}

// ArgumentsFieldKeyGenerator stores fields as "name" or, with arguments,
// "name({...})" where the arguments are serialized as canonical JSON.
type ArgumentsFieldKeyGenerator struct{}

// FieldKey returns the field key for field with variables substituted.
func (ArgumentsFieldKeyGenerator) FieldKey(field domain.Field, variables map[string]any) string {
	args := field.ResolvedArguments(variables)
	if len(args) == 0 {
		return field.Name
	}
	canonical, err := canonicalize(args)
	if err != nil {
		// Unserializable arguments still need a stable key.
		canonical = []byte(fmt.Sprintf("%v", args))
	}
	return field.Name + "(" + string(canonical) + ")"
}

// DefaultHashThreshold is the serialized argument length above which
// HashedFieldKeyGenerator compacts the key.
const DefaultHashThreshold = 64

// HashedFieldKeyGenerator behaves like ArgumentsFieldKeyGenerator but replaces
// long argument lists with their xxhash digest: "name#<hex>".
type HashedFieldKeyGenerator struct {
	Threshold int
}

// FieldKey returns the field key for field with variables substituted.
func (g HashedFieldKeyGenerator) FieldKey(field domain.Field, variables map[string]any) string {
	key := ArgumentsFieldKeyGenerator{}.FieldKey(field, variables)
	threshold := g.Threshold
	if threshold <= 0 {
		threshold = DefaultHashThreshold
	}
	args := strings.TrimPrefix(key, field.Name)
	if len(args) <= threshold {
		return key
	}
	return field.Name + "#" + strconv.FormatUint(xxhash.Sum64String(args), 16)
}

// EmbeddedFields declares always-embedded fields per type.
type EmbeddedFields map[string]map[string]struct{}

// NewEmbeddedFields builds the provider from typename → field names.
func NewEmbeddedFields(fields map[string][]string) EmbeddedFields {
	e := make(EmbeddedFields, len(fields))
	for typename, names := range fields {
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		e[typename] = set
	}
	return e
}

// IsEmbedded reports whether typename.fieldName is always embedded.
func (e EmbeddedFields) IsEmbedded(typename, fieldName string) bool {
	_, ok := e[typename][fieldName]
	return ok
}

var (
	_ ports.CacheKeyGenerator      = (*TypePolicyGenerator)(nil)
	_ ports.FieldKeyGenerator      = ArgumentsFieldKeyGenerator{}
	_ ports.FieldKeyGenerator      = HashedFieldKeyGenerator{}
	_ ports.EmbeddedFieldsProvider = EmbeddedFields(nil)
)
