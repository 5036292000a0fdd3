package domain

import (
	"errors"
	"fmt"
)

// CacheMissError reports a field or record that could not be read from the cache.
type CacheMissError struct {
	Key      CacheKey
	FieldKey string
	// Stale is true when the value was present but too old to be used.
	Stale bool
}

// Error implements error.
func (e *CacheMissError) Error() string {
	switch {
	case e.FieldKey == "":
		return fmt.Sprintf("cache miss: record %s", e.Key)
	case e.Stale:
		return fmt.Sprintf("cache miss: field %s is stale", e.Key.Field(e.FieldKey))
	default:
		return fmt.Sprintf("cache miss: field %s", e.Key.Field(e.FieldKey))
	}
}

// Is makes errors.Is(err, ErrCacheMiss) true for cache misses.
func (e *CacheMissError) Is(target error) bool {
	return target == ErrCacheMiss
}

// ResolveRequest is what a cache resolver needs to resolve one field.
type ResolveRequest struct {
	Field     Field
	FieldKey  string
	Variables map[string]any
	// Parent is the record holding the field.
	Parent *Record
	// ParentType is the typename of the parent record, if known.
	ParentType string
	// ParentMaxAge is the max age resolved for the parent field, used by inheriting fields.
	ParentMaxAge MaxAge
	Headers      CacheHeaders
}

// Resolution is the value a cache resolver returns for one field.
type Resolution struct {
	Value any
	// Stale is set when the value is older than its max age but still usable.
	Stale bool
	// MaxAge is the max age that applied to the field.
	MaxAge MaxAge
}

// ReadResult is a tree reconstructed from the cache.
type ReadResult struct {
	// Data is the reconstructed tree. Missed subtrees are nil.
	Data map[string]any
	// Headers is the union of headers encountered while reading.
	Headers CacheHeaders
	// Misses lists every field or record that could not be read.
	Misses []*CacheMissError
}

// Complete reports whether every requested field was read.
func (r *ReadResult) Complete() bool {
	return len(r.Misses) == 0
}

// Err joins all misses into one error, or returns nil for a complete result.
func (r *ReadResult) Err() error {
	if len(r.Misses) == 0 {
		return nil
	}
	errs := make([]error, len(r.Misses))
	for i, m := range r.Misses {
		errs[i] = m
	}
	return errors.Join(errs...)
}
