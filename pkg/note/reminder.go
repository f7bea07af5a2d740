package note

import (
	"sort"
	"time"
)

// Reminder is a point in time at which a task should be announced. The ID is
// also the key of the alarm registered for it, so it must never be reused for
// a different fire time.
type Reminder struct {
	ID     int64     `json:"id"`
	NoteID int64     `json:"noteId"`
	FireAt time.Time `json:"fireAt"`
	Active bool      `json:"active"`
}

// FireAtMillis returns the fire time as epoch milliseconds.
func (r *Reminder) FireAtMillis() int64 {
	return Millis(r.FireAt)
}

// Future reports whether the reminder fires strictly after now.
func (r *Reminder) Future(now time.Time) bool {
	return r.FireAt.After(now)
}

// NormalizeTimes drops zero values and duplicates (at millisecond precision)
// and sorts the remaining times ascending.
func NormalizeTimes(times []time.Time) []time.Time {
	seen := make(map[int64]struct{}, len(times))
	out := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		ms := Millis(t)
		if _, ok := seen[ms]; ok {
			continue
		}
		seen[ms] = struct{}{}
		out = append(out, FromMillis(ms))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Before(out[j])
	})
	return out
}

// SortReminders orders reminders by fire time, then ID.
func SortReminders(rs []*Reminder) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].FireAt.Equal(rs[j].FireAt) {
			return rs[i].ID < rs[j].ID
		}
		return rs[i].FireAt.Before(rs[j].FireAt)
	})
}
