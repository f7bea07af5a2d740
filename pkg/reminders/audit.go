package reminders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/notes/pkg/alarm"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/repository"
)

// ErrNoLister is returned by Audit and Resync when the Scheduler cannot list
// its registrations.
var ErrNoLister = errors.New("reminders: scheduler cannot list registrations")

// Report compares reminder rows with registrations.
type Report struct {
	// Expected is how many registrations the rows call for.
	Expected int
	// Registered is how many registrations exist for alarms still in the future.
	Registered int
	// Missing rows should be registered and are not.
	Missing []*note.Reminder
	// Orphaned registrations have no live row behind them.
	Orphaned []alarm.Alarm
}

// Consistent reports whether rows and registrations agree.
func (r *Report) Consistent() bool {
	return len(r.Missing) == 0 && len(r.Orphaned) == 0
}

// Audit compares the reminder rows with the registrations of the Scheduler.
// Registrations for times at or before now are about to fire and are ignored.
func (c *Coordinator) Audit(ctx context.Context, now time.Time) (*Report, error) {
	lister, ok := c.Scheduler.(alarm.Lister)
	if !ok {
		return nil, ErrNoLister
	}

	// Registrations first: a reminder saved between the two reads then shows
	// up as missing, which Resync repairs harmlessly, instead of orphaned.
	pending, err := lister.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("reminders: audit: %w", err)
	}
	want, err := c.expected(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("reminders: audit: %w", err)
	}

	report := &Report{Expected: len(want)}
	registered := make(map[int64]bool, len(pending))
	for _, a := range pending {
		if !a.At.After(now) {
			continue
		}
		report.Registered++
		registered[a.ID] = true
		if _, ok := want[a.ID]; !ok {
			report.Orphaned = append(report.Orphaned, a)
		}
	}
	for id, r := range want {
		if !registered[id] {
			report.Missing = append(report.Missing, r)
		}
	}
	note.SortReminders(report.Missing)
	sort.Slice(report.Orphaned, func(i, j int) bool { return report.Orphaned[i].ID < report.Orphaned[j].ID })
	return report, nil
}

// Resync repairs what Audit finds: orphaned registrations are cancelled and
// missing ones registered. The returned report describes the state before the
// repair.
func (c *Coordinator) Resync(ctx context.Context, now time.Time) (*Report, error) {
	report, err := c.Audit(ctx, now)
	if err != nil {
		return nil, err
	}
	if report.Consistent() {
		return report, nil
	}

	for _, a := range report.Orphaned {
		c.cancel(ctx, a.ID)
	}

	byNote := make(map[int64]map[int64]bool)
	var noteIDs []int64
	for _, r := range report.Missing {
		if byNote[r.NoteID] == nil {
			byNote[r.NoteID] = make(map[int64]bool)
			noteIDs = append(noteIDs, r.NoteID)
		}
		byNote[r.NoteID][r.ID] = true
	}
	var errs []error
	for _, id := range noteIDs {
		if _, err := c.recoverNote(ctx, id, now, byNote[id]); err != nil {
			errs = append(errs, err)
		}
	}

	c.logger().WithFields(logrus.Fields{
		"missing":  len(report.Missing),
		"orphaned": len(report.Orphaned),
	}).Info("reminders resynced")
	return report, errors.Join(errs...)
}

// expected returns the reminders that should be registered, keyed by id.
func (c *Coordinator) expected(ctx context.Context, now time.Time) (map[int64]*note.Reminder, error) {
	rs, err := c.Repo.GetAllFutureReminders(ctx, now)
	if err != nil {
		return nil, err
	}
	open := make(map[int64]bool)
	want := make(map[int64]*note.Reminder, len(rs))
	for _, r := range rs {
		if !r.Active {
			continue
		}
		ok, seen := open[r.NoteID]
		if !seen {
			n, err := c.Repo.GetNoteByID(ctx, r.NoteID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				ok = false
			case err != nil:
				return nil, err
			default:
				ok = n.IsActiveTask()
			}
			open[r.NoteID] = ok
		}
		if ok {
			want[r.ID] = r
		}
	}
	return want, nil
}
