package note

import (
	"time"
)

// Millis converts t to epoch milliseconds, the unit reminders are stored in.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds back to a local time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

func ParseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func FormatTime(v time.Time) string {
	return v.UTC().Format(time.RFC3339)
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	a, b = a.Local(), b.Local()
	return a.Day() == b.Day() && a.Month() == b.Month() && a.Year() == b.Year()
}
