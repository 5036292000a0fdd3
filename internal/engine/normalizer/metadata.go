package normalizer

import (
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
)

// HeaderDates stamps every written field with the received and expiration
// dates carried by the write's headers.
type HeaderDates struct{}

// Metadata implements ports.MetadataGenerator.
func (HeaderDates) Metadata(ctx ports.MetadataContext) domain.FieldMeta {
	var meta domain.FieldMeta
	if t, ok := ctx.Headers.Time(domain.HeaderReceivedDate); ok {
		meta.ReceivedAt = t
	}
	if t, ok := ctx.Headers.Time(domain.HeaderExpirationDate); ok {
		meta.ExpiresAt = t
	}
	return meta
}

// NoDates attaches no metadata.
type NoDates struct{}

// Metadata implements ports.MetadataGenerator.
func (NoDates) Metadata(ports.MetadataContext) domain.FieldMeta {
	return domain.FieldMeta{}
}

var (
	_ ports.MetadataGenerator = HeaderDates{}
	_ ports.MetadataGenerator = NoDates{}
)
