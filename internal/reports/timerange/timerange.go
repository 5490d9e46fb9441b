// Package timerange parses the from/to query parameters shared by the
// reporting and dashboard endpoints into a half-open UTC interval.
package timerange

import (
	"time"

	"medspa_crm_backend/platform/apperr"
)

const dateLayout = "2006-01-02"

// Range is a half-open interval [From, To) in UTC.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// Parse builds a range from raw from/to values. A bare date is pinned to
// UTC midnight; for `to` it means the whole day is included, so the bound
// becomes the start of the next UTC day. Anything else must be RFC 3339 and
// is used as-is, with `to` exclusive. Empty values fall back to the last
// `fallback` duration ending now.
func Parse(from, to string, fallback time.Duration) (Range, error) {
	now := time.Now().UTC()

	r := Range{From: now.Add(-fallback), To: now}

	if from != "" {
		parsed, err := parseBound(from, false)
		if err != nil {
			return Range{}, apperr.BadRequest("from must be YYYY-MM-DD or RFC 3339")
		}
		r.From = parsed
	}
	if to != "" {
		parsed, err := parseBound(to, true)
		if err != nil {
			return Range{}, apperr.BadRequest("to must be YYYY-MM-DD or RFC 3339")
		}
		r.To = parsed
	}

	if !r.To.After(r.From) {
		return Range{}, apperr.BadRequest("to must be after from")
	}

	return r, nil
}

// Bounds is an optionally open interval. A nil side means unbounded.
type Bounds struct {
	From *time.Time
	To   *time.Time
}

// ParseOpen is like Parse but leaves missing bounds open instead of
// applying a fallback window.
func ParseOpen(from, to string) (Bounds, error) {
	var b Bounds

	if from != "" {
		parsed, err := parseBound(from, false)
		if err != nil {
			return Bounds{}, apperr.BadRequest("from must be YYYY-MM-DD or RFC 3339")
		}
		b.From = &parsed
	}
	if to != "" {
		parsed, err := parseBound(to, true)
		if err != nil {
			return Bounds{}, apperr.BadRequest("to must be YYYY-MM-DD or RFC 3339")
		}
		b.To = &parsed
	}

	if b.From != nil && b.To != nil && !b.To.After(*b.From) {
		return Bounds{}, apperr.BadRequest("to must be after from")
	}

	return b, nil
}

func parseBound(raw string, endOfDay bool) (time.Time, error) {
	if day, err := time.ParseInLocation(dateLayout, raw, time.UTC); err == nil {
		if endOfDay {
			return day.AddDate(0, 0, 1), nil
		}
		return day, nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
