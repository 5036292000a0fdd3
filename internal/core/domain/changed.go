package domain

import (
	"maps"
	"slices"
)

// ChangedKeys is the set of "<key>.<field>" strings whose value changed.
type ChangedKeys map[string]struct{}

// NewChangedKeys creates a set from the given entries.
func NewChangedKeys(entries ...string) ChangedKeys {
	c := make(ChangedKeys, len(entries))
	for _, e := range entries {
		c[e] = struct{}{}
	}
	return c
}

// Add inserts the changed-key of one field.
func (c ChangedKeys) Add(key CacheKey, fieldKey string) {
	c[key.Field(fieldKey)] = struct{}{}
}

// Union adds every entry of o to c.
func (c ChangedKeys) Union(o ChangedKeys) {
	for e := range o {
		c[e] = struct{}{}
	}
}

// Has reports whether an entry is in the set.
func (c ChangedKeys) Has(entry string) bool {
	_, ok := c[entry]
	return ok
}

// Sorted returns the entries in sorted order.
func (c ChangedKeys) Sorted() []string {
	return slices.Sorted(maps.Keys(c))
}

// MergeConflict describes a field whose incoming value had a different type
// from the existing one. The incoming value is still written.
type MergeConflict struct {
	Key      CacheKey
	FieldKey string
	Existing ValueKind
	Incoming ValueKind
}

// String returns a readable description of the conflict.
func (c MergeConflict) String() string {
	return c.Key.Field(c.FieldKey) + ": " + c.Existing.String() + " overwritten by " + c.Incoming.String()
}

// MergeResult is the outcome of merging records into a store.
type MergeResult struct {
	Changed   ChangedKeys
	Conflicts []MergeConflict
}

// NewMergeResult returns an empty result.
func NewMergeResult() MergeResult {
	return MergeResult{Changed: ChangedKeys{}}
}

// Add folds another result into r.
func (r *MergeResult) Add(o MergeResult) {
	if r.Changed == nil {
		r.Changed = ChangedKeys{}
	}
	r.Changed.Union(o.Changed)
	r.Conflicts = append(r.Conflicts, o.Conflicts...)
}
