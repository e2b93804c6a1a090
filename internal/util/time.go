package util

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Layouts used when rendering record timestamps
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
	clock24Layout   = "15:04:05"
	clock12Layout   = "03:04:05 PM"
)

// TimeProvider renders instants in the display timezone chosen with
// --timezone. It is immutable; InitializeTimeProvider swaps the global one.
type TimeProvider struct {
	location *time.Location
}

var globalTimeProvider atomic.Pointer[TimeProvider]

// LoadDisplayLocation resolves a --timezone value. Empty and "Local" mean
// the host timezone.
func LoadDisplayLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/New_York, Europe/Istanbul", timezone, err)
	}
	return loc, nil
}

// NewTimeProvider returns a provider rendering in timezone
func NewTimeProvider(timezone string) (*TimeProvider, error) {
	loc, err := LoadDisplayLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &TimeProvider{location: loc}, nil
}

// InitializeTimeProvider replaces the global provider. On error the previous
// one stays in place.
func InitializeTimeProvider(timezone string) error {
	tp, err := NewTimeProvider(timezone)
	if err != nil {
		return err
	}
	globalTimeProvider.Store(tp)
	return nil
}

// GetTimeProvider returns the global provider, rendering in local time until
// InitializeTimeProvider succeeds
func GetTimeProvider() *TimeProvider {
	if tp := globalTimeProvider.Load(); tp != nil {
		return tp
	}
	globalTimeProvider.CompareAndSwap(nil, &TimeProvider{location: time.Local})
	return globalTimeProvider.Load()
}

// Location returns the display timezone
func (tp *TimeProvider) Location() *time.Location {
	return tp.location
}

// Now returns the current time in the display timezone
func (tp *TimeProvider) Now() time.Time {
	return time.Now().In(tp.location)
}

// Format renders t with layout in the display timezone
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	return t.In(tp.location).Format(layout)
}

// FormatTimestamp renders a record timestamp for one-shot listings
func (tp *TimeProvider) FormatTimestamp(t time.Time) string {
	return tp.Format(t, TimestampLayout)
}

// FormatClock renders t as a wall-clock time. timeFormat is "12h" or "24h".
func (tp *TimeProvider) FormatClock(t time.Time, timeFormat string) string {
	if timeFormat == "12h" {
		return tp.Format(t, clock12Layout)
	}
	return tp.Format(t, clock24Layout)
}

// Today returns the current date in the display timezone
func (tp *TimeProvider) Today() string {
	return tp.Format(time.Now(), DateLayout)
}
