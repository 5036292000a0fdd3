package domain

import (
	"fmt"
	"time"
)

// MaxAgeKind tells how a field's max age is determined.
type MaxAgeKind uint8

const (
	// MaxAgeUnset means no max age applies; values never go stale by age.
	MaxAgeUnset MaxAgeKind = iota
	// MaxAgeInherit means the field uses its parent field's max age.
	MaxAgeInherit
	// MaxAgeFixed means the field has its own max age.
	MaxAgeFixed
)

// InheritSeconds is the value used in the max-age table for inheriting fields.
const InheritSeconds = -1

// MaxAge is the freshness policy of one field.
type MaxAge struct {
	Kind     MaxAgeKind
	Duration time.Duration
}

// InheritMaxAge returns a max age that defers to the parent field.
func InheritMaxAge() MaxAge {
	return MaxAge{Kind: MaxAgeInherit}
}

// FixedMaxAge returns a fixed max age.
func FixedMaxAge(d time.Duration) MaxAge {
	return MaxAge{Kind: MaxAgeFixed, Duration: d}
}

// MaxAgeFromSeconds converts a max-age table entry: -1 inherits, any other
// non-negative value is a duration in seconds.
func MaxAgeFromSeconds(secs int) (MaxAge, error) {
	switch {
	case secs == InheritSeconds:
		return InheritMaxAge(), nil
	case secs >= 0:
		return FixedMaxAge(time.Duration(secs) * time.Second), nil
	default:
		return MaxAge{}, ErrInvalidMaxAge
	}
}

// Resolve returns the effective max age given the parent's.
func (m MaxAge) Resolve(parent MaxAge) MaxAge {
	if m.Kind == MaxAgeInherit {
		return parent
	}
	return m
}

// String returns a readable form of the max age.
func (m MaxAge) String() string {
	switch m.Kind {
	case MaxAgeInherit:
		return "inherit"
	case MaxAgeFixed:
		return m.Duration.String()
	default:
		return "unset"
	}
}

// MaxAgeKeyOf returns the key under which a field appears in the max-age table.
func MaxAgeKeyOf(typename, fieldName string) string {
	return fmt.Sprintf("%s.%s", typename, fieldName)
}
