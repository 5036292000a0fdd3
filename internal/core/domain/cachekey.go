// Package domain contains the core types of the normalized cache: keys, records,
// field values, query shapes and the results of merges and reads.
package domain

import "strings"

// RootKey is the reserved key of the record holding the root fields of every query.
const RootKey CacheKey = "QUERY_ROOT"

// CacheKey identifies one logical entity in the cache, for example "User:42".
// Two keys are equal when their string values are equal.
type CacheKey string

// String returns the underlying string value.
func (k CacheKey) String() string {
	return string(k)
}

// Field returns the changed-key form of a field of this record, "<key>.<field>".
func (k CacheKey) Field(fieldKey string) string {
	return string(k) + "." + fieldKey
}

// IsRoot reports whether k is the reserved root key.
func (k CacheKey) IsRoot() bool {
	return k == RootKey
}

// Append builds the key of a field of k that has no identity of its own,
// for example "QUERY_ROOT.me" or "User:1.address".
func (k CacheKey) Append(parts ...string) CacheKey {
	var b strings.Builder
	b.WriteString(string(k))
	for _, p := range parts {
		b.WriteByte('.')
		b.WriteString(p)
	}
	return CacheKey(b.String())
}

// NewCacheKey builds the canonical "<typename>:<value>" key. Multiple values are
// joined with '+'.
func NewCacheKey(typename string, values ...string) CacheKey {
	return CacheKey(typename + ":" + strings.Join(values, "+"))
}

// Keys converts a list of strings to cache keys.
func Keys(ss ...string) []CacheKey {
	keys := make([]CacheKey, len(ss))
	for i, s := range ss {
		keys[i] = CacheKey(s)
	}
	return keys
}
