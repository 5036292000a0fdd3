// Package codec serializes records for the persistent stores.
//
// Records are written as msgpack. Field values are plain msgpack values
// except references and embedded objects, which are tagged maps:
// {"$ref": "<key>"} and {"$obj": {...}}. Every map in the encoded value tree
// is a tag, so decoding is unambiguous.
package codec

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	refTag = "$ref"
	objTag = "$obj"
)

type wireMeta struct {
	ReceivedAt int64 `msgpack:"r,omitempty"`
	ExpiresAt  int64 `msgpack:"e,omitempty"`
}

type wireRecord struct {
	Key        string              `msgpack:"k"`
	Fields     map[string]any      `msgpack:"f"`
	MutationID string              `msgpack:"m,omitempty"`
	Meta       map[string]wireMeta `msgpack:"d,omitempty"`
}

// Encode serializes a record.
func Encode(r *domain.Record) ([]byte, error) {
	w := wireRecord{
		Key:    string(r.Key),
		Fields: make(map[string]any, len(r.Fields)),
	}
	for k, v := range r.Fields {
		w.Fields[k] = toWire(v)
	}
	if r.MutationID != uuid.Nil {
		w.MutationID = r.MutationID.String()
	}
	if len(r.Meta) > 0 {
		w.Meta = make(map[string]wireMeta, len(r.Meta))
		for k, m := range r.Meta {
			w.Meta[k] = wireMeta{ReceivedAt: unixNano(m.ReceivedAt), ExpiresAt: unixNano(m.ExpiresAt)}
		}
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)
	if err := enc.Encode(&w); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRecordEncodeFailed.Error()), "key", string(r.Key))
	}
	return buf.Bytes(), nil
}

// Decode deserializes a record written by Encode.
func Decode(data []byte) (*domain.Record, error) {
	var w wireRecord
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(&w); err != nil {
		return nil, zerr.Wrap(err, domain.ErrRecordDecodeFailed.Error())
	}

	r := domain.NewRecord(domain.CacheKey(w.Key), make(domain.Fields, len(w.Fields)))
	for k, v := range w.Fields {
		value, err := fromWire(v)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrRecordDecodeFailed.Error()), "field", k)
		}
		r.Fields[k] = value
	}
	if w.MutationID != "" {
		id, err := uuid.Parse(w.MutationID)
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrRecordDecodeFailed.Error())
		}
		r.MutationID = id
	}
	for k, m := range w.Meta {
		r.SetFieldMeta(k, domain.FieldMeta{ReceivedAt: fromUnixNano(m.ReceivedAt), ExpiresAt: fromUnixNano(m.ExpiresAt)})
	}
	return r, nil
}

func toWire(v any) any {
	switch val := v.(type) {
	case domain.CacheKey:
		return map[string]any{refTag: string(val)}
	case domain.Object:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = toWire(e)
		}
		return map[string]any{objTag: out}
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = toWire(e)
		}
		return out
	default:
		return val
	}
}

func fromWire(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		return fromTag(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			d, err := fromWire(e)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil
	default:
		return domain.Canonical(val), nil
	}
}

func fromTag(m map[string]any) (any, error) {
	if len(m) != 1 {
		return nil, fmt.Errorf("untagged map with %d entries", len(m))
	}
	if ref, ok := m[refTag]; ok {
		s, ok := ref.(string)
		if !ok {
			return nil, fmt.Errorf("reference of type %T", ref)
		}
		return domain.CacheKey(s), nil
	}
	raw, ok := m[objTag].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unknown tag in %v", m)
	}
	out := make(domain.Object, len(raw))
	for k, e := range raw {
		d, err := fromWire(e)
		if err != nil {
			return nil, err
		}
		out[k] = d
	}
	return out, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
