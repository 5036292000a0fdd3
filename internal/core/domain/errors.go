package domain

import "go.trai.ch/zerr"

var (
	// ErrCacheMiss is returned when a requested field or referenced record is absent or stale.
	ErrCacheMiss = zerr.New("cache miss")

	// ErrBackendFailure is returned when a persistent store could not complete an I/O operation.
	ErrBackendFailure = zerr.New("record store backend failure")

	// ErrInvalidData is returned when a result tree does not match the shape of its selection.
	ErrInvalidData = zerr.New("result data does not match selection")

	// ErrMissingMutationID is returned when an optimistic record carries no mutation id.
	ErrMissingMutationID = zerr.New("optimistic record has no mutation id")

	// ErrNotifierClosed is returned when publishing to or reading from a closed notifier.
	ErrNotifierClosed = zerr.New("change notifier closed")

	// ErrSubscriptionClosed is returned when reading from a closed subscription.
	ErrSubscriptionClosed = zerr.New("subscription closed")

	// ErrRecordEncodeFailed is returned when a record cannot be serialized.
	ErrRecordEncodeFailed = zerr.New("failed to encode record")

	// ErrRecordDecodeFailed is returned when a stored record cannot be deserialized.
	ErrRecordDecodeFailed = zerr.New("failed to decode record")

	// ErrUnknownBackend is returned when the configuration names an unsupported store backend.
	ErrUnknownBackend = zerr.New("unknown store backend")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidMaxAge is returned when a max-age entry is neither -1 nor a non-negative number of seconds.
	ErrInvalidMaxAge = zerr.New("invalid max age, expected -1 (inherit) or seconds")

	// ErrQueryReadFailed is returned when a query shape file cannot be read.
	ErrQueryReadFailed = zerr.New("failed to read query file")

	// ErrQueryParseFailed is returned when a query shape file cannot be parsed.
	ErrQueryParseFailed = zerr.New("failed to parse query file")

	// ErrDataReadFailed is returned when a result data file cannot be read or decoded.
	ErrDataReadFailed = zerr.New("failed to read result data")

	// ErrExpirationNotTracked is returned when a record store keeps no expiration dates to remove by.
	ErrExpirationNotTracked = zerr.New("record store does not track expiration dates")

	// ErrStoreOpenFailed is returned when a record store cannot be opened.
	ErrStoreOpenFailed = zerr.New("failed to open record store")
)
