// Package merger combines incoming records with the records already stored.
package merger

import (
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
)

// Default is field-level last-write-wins.
//
// Every incoming field replaces the stored one. A field is reported as
// changed when its new value differs from the stored value, or when it was
// absent. A reference meeting a non-null value of another kind, in either
// direction, is reported as a conflict and the incoming value still wins.
type Default struct{}

// Merge implements ports.RecordMerger.
func (Default) Merge(existing, incoming *domain.Record) (*domain.Record, domain.ChangedKeys, []domain.MergeConflict) {
	return mergeWith(existing, incoming, nil)
}

// Combinator folds an incoming field value into the stored one. It must be
// idempotent: combining the same incoming value twice yields the same result.
type Combinator func(existing, incoming any) any

// Replace keeps the incoming value.
func Replace(_, incoming any) any {
	return incoming
}

// UnionList appends the incoming list elements that are not in the stored
// list yet. Non-list values are replaced.
func UnionList(existing, incoming any) any {
	old, ok := existing.([]any)
	if !ok {
		return incoming
	}
	inc, ok := incoming.([]any)
	if !ok {
		return incoming
	}
	out := make([]any, len(old), len(old)+len(inc))
	copy(out, old)
	for _, v := range inc {
		if !containsValue(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func containsValue(list []any, v any) bool {
	for _, e := range list {
		if domain.ValuesEqual(e, v) {
			return true
		}
	}
	return false
}

// FieldPolicy merges fields with per-field combinators, keyed by field key,
// and falls back to last-write-wins.
type FieldPolicy struct {
	Policies map[string]Combinator
}

// NewFieldPolicy creates a FieldPolicy merger.
func NewFieldPolicy(policies map[string]Combinator) *FieldPolicy {
	return &FieldPolicy{Policies: policies}
}

// Merge implements ports.RecordMerger.
func (p *FieldPolicy) Merge(existing, incoming *domain.Record) (*domain.Record, domain.ChangedKeys, []domain.MergeConflict) {
	return mergeWith(existing, incoming, p.Policies)
}

func mergeWith(
	existing, incoming *domain.Record,
	policies map[string]Combinator,
) (*domain.Record, domain.ChangedKeys, []domain.MergeConflict) {
	changed := domain.ChangedKeys{}
	if existing == nil {
		merged := incoming.Clone()
		for fk := range merged.Fields {
			changed.Add(merged.Key, fk)
		}
		return merged, changed, nil
	}

	merged := existing.Clone()
	merged.MutationID = incoming.MutationID

	var conflicts []domain.MergeConflict
	for _, fk := range incoming.FieldKeys() {
		inc := incoming.Fields[fk]
		old, had := merged.Fields[fk]

		next := domain.CopyValue(inc)
		if combine, ok := policies[fk]; ok && had {
			next = combine(old, next)
		}

		if had && conflicting(old, next) {
			conflicts = append(conflicts, domain.MergeConflict{
				Key:      incoming.Key,
				FieldKey: fk,
				Existing: domain.KindOf(old),
				Incoming: domain.KindOf(next),
			})
		}
		if !had || !domain.ValuesEqual(old, next) {
			changed.Add(incoming.Key, fk)
		}
		merged.Fields[fk] = next

		if meta := incoming.FieldMeta(fk); !meta.IsZero() {
			merged.SetFieldMeta(fk, meta)
		}
	}
	return merged, changed, conflicts
}

// conflicting reports a reference, or a list holding references, replaced by
// a non-null value of a different kind, or the other way around.
func conflicting(old, next any) bool {
	if old == nil || next == nil {
		return false
	}
	oldKind, nextKind := domain.KindOf(old), domain.KindOf(next)
	if oldKind == nextKind {
		return false
	}
	return holdsReference(old, oldKind) || holdsReference(next, nextKind)
}

func holdsReference(v any, kind domain.ValueKind) bool {
	switch kind {
	case domain.KindReference:
		return true
	case domain.KindList:
		return len(domain.References(v)) > 0
	default:
		return false
	}
}

var (
	_ ports.RecordMerger = Default{}
	_ ports.RecordMerger = (*FieldPolicy)(nil)
)
