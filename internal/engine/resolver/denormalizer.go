package resolver

import (
	"context"
	"errors"
	"maps"
	"slices"

	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
	"go.trai.ch/normcache/internal/engine/keys"
)

// Denormalizer rebuilds result trees from records. It loads the records of
// one tree level per store call.
type Denormalizer struct {
	resolver ports.CacheResolver
	fields   ports.FieldKeyGenerator
}

// NewDenormalizer creates a Denormalizer. A nil resolver or field key
// generator selects the defaults.
func NewDenormalizer(resolver ports.CacheResolver, fields ports.FieldKeyGenerator) *Denormalizer {
	if resolver == nil {
		resolver = Default{}
	}
	if fields == nil {
		fields = keys.ArgumentsFieldKeyGenerator{}
	}
	return &Denormalizer{resolver: resolver, fields: fields}
}

// pending is a record waiting to be loaded and written through assign.
type pending struct {
	key        domain.CacheKey
	selections []domain.Field
	maxAge     domain.MaxAge
	assign     func(map[string]any)
}

type read struct {
	d         *Denormalizer
	variables map[string]any
	headers   domain.CacheHeaders
	result    *domain.ReadResult
	stale     bool
	next      []pending
}

// Read rebuilds the tree selected by selections from the record of rootKey.
// Missing records and fields become nil in the tree and are listed in the
// result's misses. Store failures abort the read.
func (d *Denormalizer) Read(
	ctx context.Context,
	store ports.RecordStore,
	rootKey domain.CacheKey,
	selections []domain.Field,
	variables map[string]any,
	headers domain.CacheHeaders,
) (*domain.ReadResult, error) {
	r := &read{
		d:         d,
		variables: variables,
		headers:   headers,
		result:    &domain.ReadResult{},
	}
	level := []pending{{
		key:        rootKey,
		selections: selections,
		assign:     func(obj map[string]any) { r.result.Data = obj },
	}}

	for len(level) > 0 {
		records, err := store.Load(ctx, levelKeys(level), headers)
		if err != nil {
			return nil, err
		}
		r.next = nil
		for _, p := range level {
			rec, ok := records[p.key]
			if !ok {
				r.miss(&domain.CacheMissError{Key: p.key})
				p.assign(nil)
				continue
			}
			obj, err := r.object(rec, p.selections, p.maxAge)
			if err != nil {
				return nil, err
			}
			p.assign(obj)
		}
		level = r.next
	}

	if r.stale {
		r.result.Headers = domain.NoHeaders.WithFlag(domain.HeaderStale)
	}
	return r.result, nil
}

func levelKeys(level []pending) []domain.CacheKey {
	seen := make(map[domain.CacheKey]struct{}, len(level))
	for _, p := range level {
		seen[p.key] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

func (r *read) miss(err *domain.CacheMissError) {
	r.result.Misses = append(r.result.Misses, err)
}

// object resolves the selected fields of rec.
func (r *read) object(rec *domain.Record, selections []domain.Field, parentMaxAge domain.MaxAge) (map[string]any, error) {
	typename, _ := rec.Fields[domain.TypenameField].(string)
	obj := make(map[string]any, len(selections))

	for _, field := range selections {
		fieldKey := r.d.fields.FieldKey(field, r.variables)
		res, err := r.d.resolver.Resolve(domain.ResolveRequest{
			Field:        field,
			FieldKey:     fieldKey,
			Variables:    r.variables,
			Parent:       rec,
			ParentType:   typename,
			ParentMaxAge: parentMaxAge,
			Headers:      r.headers,
		})
		if err != nil {
			var miss *domain.CacheMissError
			if errors.As(err, &miss) {
				r.miss(miss)
				obj[field.ResponseName()] = nil
				continue
			}
			return nil, err
		}
		if res.Stale {
			r.stale = true
		}

		name := field.ResponseName()
		v, err := r.value(rec, field, fieldKey, res.Value, res.MaxAge, func(v any) { obj[name] = v })
		if err != nil {
			return nil, err
		}
		obj[name] = v
	}
	return obj, nil
}

// value converts a stored value to its tree form. References are queued for
// the next level and written through set once loaded.
func (r *read) value(
	parent *domain.Record,
	field domain.Field,
	fieldKey string,
	stored any,
	maxAge domain.MaxAge,
	set func(any),
) (any, error) {
	switch v := stored.(type) {
	case nil:
		return nil, nil
	case domain.CacheKey:
		if !field.IsComposite() {
			return string(v), nil
		}
		r.next = append(r.next, pending{
			key:        v,
			selections: field.Selections,
			maxAge:     maxAge,
			assign: func(obj map[string]any) {
				if obj == nil {
					set(nil)
					return
				}
				set(obj)
			},
		})
		return nil, nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			converted, err := r.value(parent, field, fieldKey, e, maxAge, func(x any) { out[i] = x })
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case domain.Object:
		if !field.IsComposite() {
			return plain(v), nil
		}
		return r.object(embeddedRecord(parent, fieldKey, v), field.Selections, maxAge)
	default:
		return v, nil
	}
}

// embeddedRecord presents an embedded object as a record whose fields carry
// the dates of the field holding it.
func embeddedRecord(parent *domain.Record, fieldKey string, obj domain.Object) *domain.Record {
	rec := domain.NewRecord(parent.Key.Append(fieldKey), domain.Fields(obj))
	if meta := parent.FieldMeta(fieldKey); !meta.IsZero() {
		for fk := range obj {
			rec.SetFieldMeta(fk, meta)
		}
	}
	return rec
}

func plain(obj domain.Object) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case domain.Object:
			out[k] = plain(val)
		case []any:
			list := make([]any, len(val))
			for i, e := range val {
				if o, ok := e.(domain.Object); ok {
					list[i] = plain(o)
				} else {
					list[i] = e
				}
			}
			out[k] = list
		default:
			out[k] = val
		}
	}
	return out
}
