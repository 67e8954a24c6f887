// Package dates does local-calendar arithmetic on fixed-width ISO dates.
//
// Every date string produced here is exactly YYYY-MM-DD, zero-padded, so
// plain string comparison orders dates chronologically.
package dates

import (
	"fmt"
	"time"
)

// Layout is the ISO-8601 calendar date layout.
const Layout = "2006-01-02"

// Clock returns the current instant. Tests inject a fixed clock.
type Clock func() time.Time

// Today returns the local calendar day of now.
func Today(now Clock) string {
	if now == nil {
		now = time.Now
	}
	return Format(now())
}

// Format returns the local Y/M/D of t as an ISO date.
func Format(t time.Time) string {
	y, m, d := t.Local().Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// Parse parses an ISO date into midnight local time.
func Parse(iso string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, iso, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", iso, err)
	}
	return t, nil
}

// AddDays returns the date n calendar days after iso. n may be zero or negative.
func AddDays(iso string, n int) (string, error) {
	t, err := Parse(iso)
	if err != nil {
		return "", err
	}
	// Calendar-day arithmetic, immune to DST-length days.
	return Format(t.AddDate(0, 0, n)), nil
}

// Valid reports whether s is a well-formed ISO calendar date.
func Valid(s string) bool {
	if len(s) != len(Layout) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}
