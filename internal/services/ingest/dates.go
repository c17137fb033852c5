package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dashDatePattern = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)

// ParseDate interprets a raw CSV date value under an ordered list of
// formats: ISO (YYYY-MM-DD), DD/MM/YYYY, dash-separated D-M-YYYY,
// YYYY/MM/DD, then an RFC 3339 fallback. The result is normalized to UTC
// midnight. Dash-separated dates are ambiguous between month-first and
// day-first; a first component greater than 12 forces day-first, otherwise
// month-first wins.
func ParseDate(value string) (time.Time, bool) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, false
	}

	for _, format := range []string{"2006-01-02", "2/1/2006", "2006/1/2"} {
		if parsed, err := time.Parse(format, raw); err == nil {
			return toUTCDate(parsed), true
		}
	}

	if m := dashDatePattern.FindStringSubmatch(raw); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])

		month, day := first, second
		if first > 12 {
			month, day = second, first
		}
		if date, ok := calendarDate(year, month, day); ok {
			return date, true
		}
		return time.Time{}, false
	}

	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return toUTCDate(parsed), true
	}

	return time.Time{}, false
}

func toUTCDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// calendarDate builds a UTC date and rejects values time.Date would have
// silently normalized, such as February 31st.
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}
