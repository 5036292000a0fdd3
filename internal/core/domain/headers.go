package domain

import (
	"maps"
	"strconv"
	"time"
)

// Cache header names understood by the stores and resolvers.
const (
	// HeaderDoNotStore prevents records of a write from being stored.
	HeaderDoNotStore = "do-not-store"
	// HeaderMemoryCacheOnly restricts reads and writes to the memory layer.
	HeaderMemoryCacheOnly = "memory-cache-only"
	// HeaderEvictAfterRead evicts records from the memory store once read.
	HeaderEvictAfterRead = "evict-after-read"
	// HeaderReceivedDate is stored as the received date of written fields, in unix seconds.
	HeaderReceivedDate = "apollo-received-date"
	// HeaderExpirationDate is stored as the expiration date of written fields, in unix seconds.
	HeaderExpirationDate = "apollo-expiration-date"
	// HeaderMaxStale is how long, in seconds, stale fields are still accepted.
	HeaderMaxStale = "apollo-max-stale"
	// HeaderStale is set on read results when at least one field was stale.
	HeaderStale = "apollo-stale"
)

// CacheHeaders carries per-operation cache directives. The zero value has no headers.
type CacheHeaders struct {
	values map[string]string
}

// NoHeaders is the empty header set.
var NoHeaders = CacheHeaders{}

// NewCacheHeaders builds headers from a name/value map.
func NewCacheHeaders(values map[string]string) CacheHeaders {
	return CacheHeaders{values: maps.Clone(values)}
}

// With returns a copy of h with name set to value.
func (h CacheHeaders) With(name, value string) CacheHeaders {
	out := make(map[string]string, len(h.values)+1)
	maps.Copy(out, h.values)
	out[name] = value
	return CacheHeaders{values: out}
}

// WithFlag returns a copy of h with a boolean header set.
func (h CacheHeaders) WithFlag(name string) CacheHeaders {
	return h.With(name, "true")
}

// WithTime returns a copy of h with a date header set, in unix seconds.
func (h CacheHeaders) WithTime(name string, t time.Time) CacheHeaders {
	return h.With(name, strconv.FormatInt(t.Unix(), 10))
}

// WithDuration returns a copy of h with a duration header set, in seconds.
func (h CacheHeaders) WithDuration(name string, d time.Duration) CacheHeaders {
	return h.With(name, strconv.FormatInt(int64(d/time.Second), 10))
}

// Merge returns the union of h and o. Values of o win.
func (h CacheHeaders) Merge(o CacheHeaders) CacheHeaders {
	if len(o.values) == 0 {
		return h
	}
	out := make(map[string]string, len(h.values)+len(o.values))
	maps.Copy(out, h.values)
	maps.Copy(out, o.values)
	return CacheHeaders{values: out}
}

// Get returns the value of a header.
func (h CacheHeaders) Get(name string) (string, bool) {
	v, ok := h.values[name]
	return v, ok
}

// Has reports whether a header is present.
func (h CacheHeaders) Has(name string) bool {
	_, ok := h.values[name]
	return ok
}

// Flag reports whether a boolean header is present and not "false".
func (h CacheHeaders) Flag(name string) bool {
	v, ok := h.values[name]
	return ok && v != "false"
}

// Time parses a date header given in unix seconds.
func (h CacheHeaders) Time(name string) (time.Time, bool) {
	v, ok := h.values[name]
	if !ok {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

// Duration parses a duration header given in seconds.
func (h CacheHeaders) Duration(name string) (time.Duration, bool) {
	v, ok := h.values[name]
	if !ok {
		return 0, false
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// Map returns a copy of the headers as a map.
func (h CacheHeaders) Map() map[string]string {
	return maps.Clone(h.values)
}
