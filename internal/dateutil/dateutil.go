// Package dateutil normalizes calendar dates and weekday indices for the
// scheduling core. A "date key" is the canonical YYYY-MM-DD form used for
// cache keys and store queries.
package dateutil

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate accepts a YYYY-MM-DD string and returns the date truncated to
// midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Key returns the canonical date key for t.
func Key(t time.Time) string {
	return t.Format(DateLayout)
}

// Weekday returns the weekday index of t, 0=Sunday through 6=Saturday.
func Weekday(t time.Time) int {
	return int(t.Weekday())
}
