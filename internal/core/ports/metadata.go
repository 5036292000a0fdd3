package ports

import "go.trai.ch/normcache/internal/core/domain"

// MetadataContext describes one field being normalized.
type MetadataContext struct {
	Key      domain.CacheKey
	FieldKey string
	Field    domain.Field
	Typename string
	Headers  domain.CacheHeaders
}

// MetadataGenerator attaches dates to fields during normalization.
type MetadataGenerator interface {
	Metadata(ctx MetadataContext) domain.FieldMeta
}
