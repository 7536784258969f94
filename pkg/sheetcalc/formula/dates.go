package formula

import (
	"math"
	"strings"
	"time"
)

const millisPerDay = 86_400_000

// dateLayouts are the accepted calendar date formats, all read as UTC.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"01-02-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	time.RFC1123,
}

// parseDate parses a cell value as a date. Only strings and time.Time
// values are dates.
func parseDate(v interface{}) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// daysBetween returns a - b in whole days, rounding partial days up.
func daysBetween(a, b time.Time) float64 {
	// a.Sub(b) saturates beyond ~292 years
	ms := float64(a.UnixMilli() - b.UnixMilli())
	days := math.Ceil(ms / millisPerDay)
	if days == 0 {
		days = 0 // drop negative zero
	}
	return days
}

// IsDate reports whether v is a value DATEDIFF can read as a date.
func IsDate(v interface{}) bool {
	_, ok := parseDate(v)
	return ok
}
