// Package dates parses the heterogeneous timestamp formats the two platforms
// emit and normalises them for ordering comparisons.
package dates

import (
	"time"

	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

// layouts is tried in priority order; the first successful parse wins. The
// list covers every format observed from the platforms: ISO with and without
// fractional seconds and Z, SQL style, 12-hour clock variants, month-name
// spellings, slash and dash delimited.
var layouts = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"01/02/2006 03:04:05 PM",
	"2006/01/02 03:04:05 PM",
	"01/02/06 03:04:05 PM",
	"2 January 2006 03:04:05 PM",
	"2 Jan 2006 03:04:05 PM",
	"January 2, 2006 03:04:05 PM",
	"Jan 2, 2006 03:04:05 PM",
	"2006/01/02 15:04:05",
	"2006-01-02",
}

const (
	// SISDateLayout is the date-only form the SIS expects on start-date fields.
	SISDateLayout = "2006/01/02 00:00:00"
	// EndOfDayLayout renders a timestamp pinned to 23:59:59.
	EndOfDayLayout = "2006-01-02T23:59:59"
	// CanonicalLayout is the wire form used for participation dates.
	CanonicalLayout = "2006-01-02T15:04:05"
)

// Parse converts a platform timestamp string into a time.Time. An
// unrecognised format is a hard failure, never a default date.
func Parse(s string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, appErrors.Clone(appErrors.ErrBadTimestamp, "unparseable timestamp: "+s)
}

// DayOf truncates a timestamp to its calendar date.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay pins a timestamp to 23:59:59 on the same calendar date, so that
// same-day comparisons against participation timestamps treat the whole day
// as having occurred.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// FormatEndOfDay renders the end-of-day normalised form of a timestamp.
func FormatEndOfDay(t time.Time) string {
	return t.Format(EndOfDayLayout)
}

// FormatSISDate renders the date-only form the SIS expects.
func FormatSISDate(t time.Time) string {
	return t.Format(SISDateLayout)
}

// ToCampusTime reinterprets a UTC timestamp string in the campus timezone and
// renders it without an offset, matching the participation date convention.
func ToCampusTime(s string, loc *time.Location) (string, error) {
	t, err := time.Parse("2006-01-02T15:04:05Z", s)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrBadTimestamp, "unparseable UTC timestamp: "+s)
	}
	return t.UTC().In(loc).Format(CanonicalLayout), nil
}

// SameOrBefore reports whether a occurs on or before b.
func SameOrBefore(a, b time.Time) bool {
	return !a.After(b)
}
