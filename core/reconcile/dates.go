package reconcile

import (
	"strings"
	"time"
)

// DefaultDateLayouts are the layouts accepted for snapshot date values.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"02-01-2006",
	"02.01.2006",
}

// civil truncates t to midnight UTC of its calendar date.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a value against the given layouts and returns its calendar date.
func ParseDate(value string, layouts []string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if shortYear(layout) {
			t = in2000s(t)
		}
		return civil(t), true
	}
	return time.Time{}, false
}

// shortYear reports whether a layout carries a two-digit year.
func shortYear(layout string) bool {
	return !strings.Contains(layout, "2006") && strings.Contains(layout, "06")
}

// in2000s places a two-digit year in 2000-2099.
func in2000s(t time.Time) time.Time {
	return time.Date(2000+t.Year()%100, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseLogDate parses an event log date in DD/MM/YY form.
// Only the first whitespace-separated token is read and the year is placed in the 2000s.
func ParseLogDate(value string) (time.Time, bool) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return time.Time{}, false
	}
	t, err := time.Parse("2/1/06", fields[0])
	if err != nil {
		return time.Time{}, false
	}
	return in2000s(t), true
}
