package projection

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on every boundary.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// ParseDate parses a calendar date given as "2006-01-02", an ISO local datetime
// without offset, or RFC3339. The result is midnight UTC of the date as written:
// an offset never moves the value into another day.
func ParseDate(str string) (time.Time, error) {
	str = strings.TrimSpace(str)
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, str)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date %q: %w", str, firstErr)
}

// MonthLabel returns the short English month name of t, e.g. "Jan".
func MonthLabel(t time.Time) string {
	return t.Month().String()[:3]
}

// MonthLabels lists the short month names January through December.
func MonthLabels() []string {
	labels := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		labels = append(labels, m.String()[:3])
	}
	return labels
}

// rollToYear moves t into year, keeping month, day and clock time.
// A Feb 29 moved into a non-leap year normalizes to Mar 1.
func rollToYear(t time.Time, year int) time.Time {
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
