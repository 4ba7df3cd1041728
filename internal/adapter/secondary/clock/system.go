package clock

import (
	"time"

	"fasttrack/internal/domain"
)

// System implements domain.Clock with the host wall clock, in UTC.
// This is a secondary adapter.
type System struct{}

// NewSystem creates the production clock.
func NewSystem() domain.Clock {
	return System{}
}

// Now returns the current time with millisecond precision, matching the
// resolution used for duration arithmetic.
func (System) Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
