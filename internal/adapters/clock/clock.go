// Package clock provides the wall clock used by stores and resolvers.
package clock

import (
	"time"

	"go.trai.ch/normcache/internal/core/ports"
)

// System reads the wall clock.
type System struct{}

// Now returns the current time.
func (System) Now() time.Time {
	return time.Now()
}

var _ ports.Clock = System{}
