package model

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is fixed width and always UTC so stored timestamps sort
// lexicographically in the same order as chronologically.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DateLayout is the calendar date format used by appointment and prescription dates
const DateLayout = "2006-01-02"

// Timestamp is a point in time persisted in TimestampLayout
type Timestamp struct {
	time.Time
}

// Now returns the current time at millisecond precision
func Now() Timestamp {
	return Timestamp{time.Now().UTC().Truncate(time.Millisecond)}
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Millisecond)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(TimestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}

func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

// Today returns the current calendar date in DateLayout
func Today() string {
	return time.Now().Format(DateLayout)
}
