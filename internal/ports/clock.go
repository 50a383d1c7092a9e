package ports

import "time"

// SystemClock implements Clock using the wall clock.
type SystemClock struct{}

// NewSystemClock creates a wall clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time in UTC.
func (c *SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// NowISO returns the current UTC time in RFC 3339 format.
func (c *SystemClock) NowISO() string {
	return c.Now().Format(time.RFC3339Nano)
}
