package timeutil

import (
	"fmt"
	"strings"
	"time"
)

var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseWhen parses a point in time given on the command line:
//
//	2026-05-01T09:00:00+02:00   RFC3339
//	2026-05-01 09:00            local time
//	2026-05-01                  local midnight
//	09:00                       today, or tomorrow if already past
//	+1h30m                      relative to now, see ParseWindow
func ParseWhen(input string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("timeutil: empty time")
	}
	if strings.HasPrefix(s, "+") {
		if strings.TrimSpace(s[1:]) == "" {
			return time.Time{}, fmt.Errorf("timeutil: missing duration after +")
		}
		d, _, err := ParseWindow(s[1:])
		if err != nil {
			return time.Time{}, err
		}
		return now.Add(d), nil
	}

	loc := now.Location()
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation("15:04", s, loc); err == nil {
		at := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return at, nil
	}
	return time.Time{}, fmt.Errorf("timeutil: cannot parse time %q", input)
}

// ParseWhens parses every input with ParseWhen.
func ParseWhens(inputs []string, now time.Time) ([]time.Time, error) {
	out := make([]time.Time, 0, len(inputs))
	for _, in := range inputs {
		t, err := ParseWhen(in, now)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Relative describes t from now, such as "in 2h5m" or "3d ago".
func Relative(t, now time.Time) string {
	d := t.Sub(now).Truncate(time.Minute)
	switch {
	case d > 0:
		return "in " + FormatWindow(d)
	case d < 0:
		return FormatWindow(-d) + " ago"
	default:
		return "now"
	}
}
