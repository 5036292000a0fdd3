package domain

import (
	"fmt"
	"math"
	"slices"
)

// Object is an embedded object: a nested mapping with no identity of its own,
// stored inline in its parent's record.
type Object map[string]any

// Fields maps a field key to its value. A value is one of nil (null), string,
// bool, int64, float64, []any, CacheKey (a reference to another record) or
// Object. A field key that is absent was never written.
type Fields map[string]any

// ValueKind classifies a field value.
type ValueKind uint8

const (
	// KindNull is an explicit null.
	KindNull ValueKind = iota
	// KindScalar is a string, boolean or number.
	KindScalar
	// KindList is a list of values.
	KindList
	// KindReference is a CacheKey.
	KindReference
	// KindObject is an embedded object.
	KindObject
)

// String returns a readable name for the kind.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindReference:
		return "reference"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// KindOf returns the kind of a field value.
func KindOf(v any) ValueKind {
	switch v.(type) {
	case nil:
		return KindNull
	case CacheKey:
		return KindReference
	case []any:
		return KindList
	case Object:
		return KindObject
	default:
		return KindScalar
	}
}

// Canonical converts a value coming from a result tree or a decoder to the
// representation stored in records: integers become int64, floats become
// float64, and maps and slices are converted recursively. References and
// embedded objects keep their type.
func Canonical(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int64, float64, CacheKey:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return unsigned(uint64(val))
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return unsigned(val)
	case float32:
		return float64(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = Canonical(e)
		}
		return out
	case Object:
		out := make(Object, len(val))
		for k, e := range val {
			out[k] = Canonical(e)
		}
		return out
	default:
		return val
	}
}

// unsigned keeps values above the int64 range as float64 instead of
// wrapping them to negative integers.
func unsigned(v uint64) any {
	if v > math.MaxInt64 {
		return float64(v)
	}
	return int64(v)
}

// ValuesEqual reports whether two field values are the same. Lists compare
// element-wise and embedded objects compare field-wise.
func ValuesEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, ae := range av {
			be, ok := bv[k]
			if !ok || !ValuesEqual(ae, be) {
				return false
			}
		}
		return true
	case CacheKey:
		bv, ok := b.(CacheKey)
		return ok && av == bv
	default:
		switch b.(type) {
		case nil, []any, Object, CacheKey:
			return false
		}
		return a == b
	}
}

// CopyValue returns a deep copy of a field value.
func CopyValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = CopyValue(e)
		}
		return out
	case Object:
		out := make(Object, len(val))
		for k, e := range val {
			out[k] = CopyValue(e)
		}
		return out
	default:
		return val
	}
}

// References returns every CacheKey nested in v, following lists and embedded objects.
func References(v any) []CacheKey {
	var refs []CacheKey
	collectReferences(v, &refs)
	return refs
}

func collectReferences(v any, refs *[]CacheKey) {
	switch val := v.(type) {
	case CacheKey:
		*refs = append(*refs, val)
	case []any:
		for _, e := range val {
			collectReferences(e, refs)
		}
	case Object:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			collectReferences(val[k], refs)
		}
	}
}
