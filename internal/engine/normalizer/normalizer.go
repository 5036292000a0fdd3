// Package normalizer flattens result trees into records.
package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
	"go.trai.ch/normcache/internal/engine/keys"
	"go.trai.ch/zerr"
)

// Normalizer converts result trees into flat records keyed by cache key.
// It is stateless and safe for concurrent use.
type Normalizer struct {
	keys     ports.CacheKeyGenerator
	fields   ports.FieldKeyGenerator
	embedded ports.EmbeddedFieldsProvider
	meta     ports.MetadataGenerator
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithCacheKeyGenerator sets the object key generator.
func WithCacheKeyGenerator(g ports.CacheKeyGenerator) Option {
	return func(n *Normalizer) { n.keys = g }
}

// WithFieldKeyGenerator sets the field key generator.
func WithFieldKeyGenerator(g ports.FieldKeyGenerator) Option {
	return func(n *Normalizer) { n.fields = g }
}

// WithEmbeddedFields sets the provider of always-embedded fields.
func WithEmbeddedFields(p ports.EmbeddedFieldsProvider) Option {
	return func(n *Normalizer) { n.embedded = p }
}

// WithMetadataGenerator sets the generator of per-field dates.
func WithMetadataGenerator(g ports.MetadataGenerator) Option {
	return func(n *Normalizer) { n.meta = g }
}

// New creates a Normalizer. Without options objects are keyed by typename and
// id, fields by name and arguments, and dates are taken from the headers.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		keys:     keys.NewTypePolicyGenerator(nil),
		fields:   keys.ArgumentsFieldKeyGenerator{},
		embedded: keys.EmbeddedFields(nil),
		meta:     HeaderDates{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// FieldKeys returns the field key generator used by n.
func (n *Normalizer) FieldKeys() ports.FieldKeyGenerator {
	return n.fields
}

// Normalize flattens data, shaped by op's selections, into records. The top
// level object is stored under rootKey.
func (n *Normalizer) Normalize(
	op domain.Operation,
	data map[string]any,
	rootKey domain.CacheKey,
	headers domain.CacheHeaders,
) (map[domain.CacheKey]*domain.Record, error) {
	w := &walk{
		n:         n,
		variables: op.Variables,
		headers:   headers,
		records:   make(map[domain.CacheKey]*domain.Record),
	}
	typename, _ := data[domain.TypenameField].(string)
	if err := w.object(rootKey, typename, op.Selections, data, nil); err != nil {
		return nil, err
	}
	return w.records, nil
}

type walk struct {
	n         *Normalizer
	variables map[string]any
	headers   domain.CacheHeaders
	records   map[domain.CacheKey]*domain.Record
}

// object writes the selected fields of obj into the record of key.
func (w *walk) object(key domain.CacheKey, typename string, selections []domain.Field, obj map[string]any, path []string) error {
	rec, ok := w.records[key]
	if !ok {
		rec = domain.NewRecord(key, nil)
		w.records[key] = rec
	}

	for _, field := range selections {
		raw, present := obj[field.ResponseName()]
		if !present {
			continue
		}
		value, err := w.value(field, typename, raw, child(path, field.ResponseName()))
		if err != nil {
			return err
		}

		fieldKey := w.n.fields.FieldKey(field, w.variables)
		rec.Fields[fieldKey] = value
		rec.SetFieldMeta(fieldKey, w.n.meta.Metadata(ports.MetadataContext{
			Key:      key,
			FieldKey: fieldKey,
			Field:    field,
			Typename: typename,
			Headers:  w.headers,
		}))
	}
	return nil
}

// value converts one raw value of field into its stored form.
func (w *walk) value(field domain.Field, parentType string, raw any, path []string) (any, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			v, err := w.value(field, parentType, e, child(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case map[string]any:
		if !field.IsComposite() {
			return scalar(val), nil
		}
		return w.composite(field, parentType, val, path)
	default:
		if field.IsComposite() {
			return nil, invalidData(path, "object", raw)
		}
		return scalar(val), nil
	}
}

// composite stores an object value as a reference or an embedded object.
func (w *walk) composite(field domain.Field, parentType string, obj map[string]any, path []string) (any, error) {
	typename, _ := obj[domain.TypenameField].(string)

	key, identifiable := w.n.keys.CacheKey(typename, obj, ports.KeyContext{
		Field:      field,
		ParentType: parentType,
		Variables:  w.variables,
	})
	if identifiable && !w.n.embedded.IsEmbedded(parentType, field.Name) {
		if err := w.object(key, typename, field.Selections, obj, path); err != nil {
			return nil, err
		}
		return key, nil
	}

	embedded := make(domain.Object, len(field.Selections))
	for _, sub := range field.Selections {
		raw, present := obj[sub.ResponseName()]
		if !present {
			continue
		}
		v, err := w.value(sub, typename, raw, child(path, sub.ResponseName()))
		if err != nil {
			return nil, err
		}
		embedded[w.n.fields.FieldKey(sub, w.variables)] = v
	}
	return embedded, nil
}

// scalar converts a leaf value. Maps below a leaf field are custom scalars
// and are kept as embedded objects.
func scalar(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		out := make(domain.Object, len(val))
		for k, e := range val {
			out[k] = scalar(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = scalar(e)
		}
		return out
	default:
		return domain.Canonical(val)
	}
}

func child(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}

func invalidData(path []string, expected string, got any) error {
	err := zerr.With(zerr.New(fmt.Sprintf("expected %s, got %T", expected, got)), "path", strings.Join(path, "."))
	return errors.Join(domain.ErrInvalidData, err)
}
