package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// FieldMeta holds the dates attached to one field of a record.
type FieldMeta struct {
	// ReceivedAt is when the field value was received from the server.
	ReceivedAt time.Time
	// ExpiresAt is when the server declared the field value expired.
	ExpiresAt time.Time
}

// IsZero reports whether no date is set.
func (m FieldMeta) IsZero() bool {
	return m.ReceivedAt.IsZero() && m.ExpiresAt.IsZero()
}

// Record is the flat set of field values of one cache key.
type Record struct {
	Key    CacheKey
	Fields Fields
	// MutationID is set on records written by an optimistic update.
	MutationID uuid.UUID
	// Meta holds per-field dates, keyed like Fields.
	Meta map[string]FieldMeta
}

// NewRecord creates a record with the given key and fields.
func NewRecord(key CacheKey, fields Fields) *Record {
	if fields == nil {
		fields = Fields{}
	}
	return &Record{Key: key, Fields: fields}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{
		Key:        r.Key,
		Fields:     make(Fields, len(r.Fields)),
		MutationID: r.MutationID,
	}
	for k, v := range r.Fields {
		out.Fields[k] = CopyValue(v)
	}
	if len(r.Meta) > 0 {
		out.Meta = maps.Clone(r.Meta)
	}
	return out
}

// FieldKeys returns the record's field keys in sorted order.
func (r *Record) FieldKeys() []string {
	return slices.Sorted(maps.Keys(r.Fields))
}

// References returns the keys of every record this record refers to,
// deduplicated and in deterministic order.
func (r *Record) References() []CacheKey {
	if r == nil {
		return nil
	}
	seen := make(map[CacheKey]struct{})
	var out []CacheKey
	for _, fk := range r.FieldKeys() {
		for _, ref := range References(r.Fields[fk]) {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}

// FieldMeta returns the dates of a field.
func (r *Record) FieldMeta(fieldKey string) FieldMeta {
	if r.Meta == nil {
		return FieldMeta{}
	}
	return r.Meta[fieldKey]
}

// SetFieldMeta sets the dates of a field. Zero metadata clears the entry.
func (r *Record) SetFieldMeta(fieldKey string, meta FieldMeta) {
	if meta.IsZero() {
		delete(r.Meta, fieldKey)
		return
	}
	if r.Meta == nil {
		r.Meta = make(map[string]FieldMeta)
	}
	r.Meta[fieldKey] = meta
}

// ReceivedAt returns the latest received date of the record's fields.
func (r *Record) ReceivedAt() time.Time {
	var latest time.Time
	for _, m := range r.Meta {
		if m.ReceivedAt.After(latest) {
			latest = m.ReceivedAt
		}
	}
	return latest
}

// ExpiresAt returns the earliest expiration date of the record's fields.
func (r *Record) ExpiresAt() time.Time {
	var earliest time.Time
	for _, m := range r.Meta {
		if m.ExpiresAt.IsZero() {
			continue
		}
		if earliest.IsZero() || m.ExpiresAt.Before(earliest) {
			earliest = m.ExpiresAt
		}
	}
	return earliest
}

// Equal reports whether two records have the same key, fields, mutation id and metadata.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.Key != o.Key || r.MutationID != o.MutationID || len(r.Fields) != len(o.Fields) {
		return false
	}
	for k, v := range r.Fields {
		ov, ok := o.Fields[k]
		if !ok || !ValuesEqual(v, ov) {
			return false
		}
	}
	return metaEqual(r.Meta, o.Meta)
}

func metaEqual(a, b map[string]FieldMeta) bool {
	if len(a) != len(b) {
		return false
	}
	for k, am := range a {
		bm, ok := b[k]
		if !ok || !am.ReceivedAt.Equal(bm.ReceivedAt) || !am.ExpiresAt.Equal(bm.ExpiresAt) {
			return false
		}
	}
	return true
}
