// Package deadline parses and renders the registration deadlines reported by the staking API.
package deadline

import (
	"time"
)

const (
	// UpstreamLayout is YYYY-MM-DDTHH:MM:SS.ffffffZ; Parse also accepts 1-9 fractional digits.
	UpstreamLayout = "2006-01-02T15:04:05.000000Z"
	DisplayLayout  = "2006-01-02 15:04:05 UTC"

	NotAvailable  = "N/A"
	InvalidFormat = "Invalid date format"
	FetchFailed   = "Error fetching date"
)

const parseLayout = "2006-01-02T15:04:05.999999999Z"

// Parse reads an upstream timestamp. The fractional part is required.
func Parse(raw string) (time.Time, error) {
	t, err := time.Parse(parseLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	if len(raw) <= len("2006-01-02T15:04:05Z") {
		return time.Time{}, &time.ParseError{Layout: UpstreamLayout, Value: raw, Message: ": missing fractional seconds"}
	}
	return t.UTC(), nil
}

// Display renders a raw upstream timestamp for the page. "N/A" passes through and
// unparseable values become "Invalid date format".
func Display(raw string) string {
	if raw == NotAvailable {
		return raw
	}
	t, err := Parse(raw)
	if err != nil {
		return InvalidFormat
	}
	return t.Format(DisplayLayout)
}

// Check reports whether the deadline is strictly before now.
// An unparseable deadline is reported as not ended.
func Check(raw string, now time.Time) bool {
	t, err := Parse(raw)
	if err != nil {
		return false
	}
	return now.UTC().After(t)
}

// Ended is Check against the current time.
func Ended(raw string) bool {
	return Check(raw, time.Now())
}
