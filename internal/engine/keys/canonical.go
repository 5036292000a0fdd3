package keys

import (
	"encoding/json"
	"maps"
	"slices"

	"go.trai.ch/normcache/internal/core/domain"
)

// canonicalize produces a deterministic JSON representation of v.
// Maps are written with sorted keys.
func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case map[string]any:
		return canonicalizeMap(val)
	case domain.Object:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	case domain.CacheKey:
		return json.Marshal(string(val))
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	result := []byte("{")
	for i, k := range slices.Sorted(maps.Keys(m)) {
		if i > 0 {
			result = append(result, ',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	return append(result, '}'), nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}
		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	return append(result, ']'), nil
}
