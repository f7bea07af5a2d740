// Package reminders keeps reminder rows and alarm registrations consistent.
//
// A registration exists for a reminder if and only if the reminder fires
// strictly after now, is active, and belongs to a task that is not completed.
// The registration is always keyed by the reminder's own identifier. Rows are
// never edited in place: changing a fire time replaces the row, which gives it
// a new identifier and a new registration.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/notes/pkg/alarm"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/repository"
)

// ErrNotTask is returned when completing something that is not a task.
var ErrNotTask = errors.New("reminders: note is not a task")

// Coordinator reconciles the reminders of a note with the Scheduler whenever
// the note is saved, completed or deleted, and replays registrations after a
// restart. Calls for the same note are serialized; different notes proceed
// concurrently.
type Coordinator struct {
	Repo      repository.Repository
	Scheduler alarm.Scheduler
	Log       logrus.FieldLogger
	// Now defaults to time.Now.
	Now func() time.Time

	locks NoteLocks
}

// New returns a Coordinator over repo and scheduler.
func New(repo repository.Repository, scheduler alarm.Scheduler, log logrus.FieldLogger) *Coordinator {
	return &Coordinator{Repo: repo, Scheduler: scheduler, Log: log}
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (c *Coordinator) logger() logrus.FieldLogger {
	if c.Log == nil {
		return discard
	}
	return c.Log
}

// OnSave replaces the reminders of a persisted note with one row per desired
// time and registers the rows that are still in the future.
//
// Non-tasks end up with no reminders. A task saved without desired times but
// with a due date gets that due date as its only reminder. Completed tasks keep
// their rows but get no registrations.
//
// The delete and inserts run in one transaction. If it fails, the error is
// returned and the previous rows and registrations are untouched.
func (c *Coordinator) OnSave(ctx context.Context, n *note.Note, desired []time.Time) ([]*note.Reminder, error) {
	if n == nil || n.ID <= 0 {
		return nil, errors.New("reminders: note must be saved first")
	}
	unlock := c.locks.Lock(n.ID)
	defer unlock()

	times := desired
	if len(times) == 0 && n.IsTask() && n.Due != nil {
		times = []time.Time{*n.Due}
	}
	times = note.NormalizeTimes(times)
	if !n.IsTask() {
		times = nil
	}

	var old, fresh []*note.Reminder
	err := c.Repo.Transact(ctx, func(tx repository.Repository) error {
		var err error
		if old, err = tx.GetRemindersByNoteID(ctx, n.ID); err != nil {
			return err
		}
		if len(old) > 0 {
			if err := tx.DeleteRemindersByNoteID(ctx, n.ID); err != nil {
				return err
			}
		}
		fresh = make([]*note.Reminder, 0, len(times))
		for _, t := range times {
			id, err := tx.InsertReminder(ctx, n.ID, t)
			if err != nil {
				return err
			}
			fresh = append(fresh, &note.Reminder{ID: id, NoteID: n.ID, FireAt: t, Active: true})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reminders: save note %d: %w", n.ID, err)
	}

	for _, r := range old {
		c.cancel(ctx, r.ID)
	}
	if n.IsActiveTask() {
		now := c.now()
		for _, r := range fresh {
			if r.Future(now) {
				c.schedule(ctx, n, r)
			}
		}
	}

	c.logger().WithFields(logrus.Fields{
		"note_id":  n.ID,
		"replaced": len(old),
		"count":    len(fresh),
	}).Debug("reminders saved")
	return fresh, nil
}

// OnComplete stores the completed flag of a task. Completing cancels every
// registration but keeps the rows. Un-completing registers again the active
// rows that are still in the future.
func (c *Coordinator) OnComplete(ctx context.Context, noteID int64, completed bool) (*note.Note, error) {
	unlock := c.locks.Lock(noteID)
	defer unlock()

	var (
		n  *note.Note
		rs []*note.Reminder
	)
	err := c.Repo.Transact(ctx, func(tx repository.Repository) error {
		var err error
		if n, err = tx.GetNoteByID(ctx, noteID); err != nil {
			return err
		}
		if !n.IsTask() {
			return ErrNotTask
		}
		n.Completed = completed
		if err := tx.UpdateNote(ctx, n); err != nil {
			return err
		}
		rs, err = tx.GetRemindersByNoteID(ctx, noteID)
		return err
	})
	if errors.Is(err, ErrNotTask) {
		return nil, ErrNotTask
	}
	if err != nil {
		return nil, fmt.Errorf("reminders: complete note %d: %w", noteID, err)
	}

	if completed {
		for _, r := range rs {
			c.cancel(ctx, r.ID)
		}
		return n, nil
	}
	now := c.now()
	for _, r := range rs {
		if r.Active && r.Future(now) {
			c.schedule(ctx, n, r)
		}
	}
	return n, nil
}

// OnDelete cancels every registration of the note and then deletes it, which
// removes its media and reminders with it. If the delete fails the
// registrations are put back.
func (c *Coordinator) OnDelete(ctx context.Context, noteID int64) error {
	unlock := c.locks.Lock(noteID)
	defer unlock()

	n, err := c.Repo.GetNoteByID(ctx, noteID)
	if err != nil {
		return fmt.Errorf("reminders: delete note %d: %w", noteID, err)
	}
	rs, err := c.Repo.GetRemindersByNoteID(ctx, noteID)
	if err != nil {
		return fmt.Errorf("reminders: delete note %d: %w", noteID, err)
	}

	for _, r := range rs {
		c.cancel(ctx, r.ID)
	}
	if err := c.Repo.DeleteNoteByID(ctx, noteID); err != nil {
		if n.IsActiveTask() {
			now := c.now()
			for _, r := range rs {
				if r.Active && r.Future(now) {
					c.schedule(ctx, n, r)
				}
			}
		}
		return fmt.Errorf("reminders: delete note %d: %w", noteID, err)
	}
	return nil
}

// RecoverAfterRestart registers every reminder firing after now whose note is
// an open task. Registrations do not survive a restart of the registry, the
// rows do, so this rebuilds the registry from the rows. It returns how many
// alarms were registered.
//
// Each note is re-read under its lock, so an edit that lands while recovery
// runs is never undone with stale identifiers. Notes that cannot be read are
// logged and skipped; their errors are joined into the returned error.
func (c *Coordinator) RecoverAfterRestart(ctx context.Context, now time.Time) (int, error) {
	rs, err := c.Repo.GetAllFutureReminders(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("reminders: recover: %w", err)
	}

	var (
		noteIDs []int64
		seen    = make(map[int64]bool)
	)
	for _, r := range rs {
		if !seen[r.NoteID] {
			seen[r.NoteID] = true
			noteIDs = append(noteIDs, r.NoteID)
		}
	}

	var (
		count int
		errs  []error
	)
	for _, id := range noteIDs {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		n, err := c.recoverNote(ctx, id, now, nil)
		count += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	c.logger().WithFields(logrus.Fields{
		"notes":      len(noteIDs),
		"registered": count,
	}).Info("reminders recovered")
	return count, errors.Join(errs...)
}

// recoverNote registers the future reminders of one note. When only is not
// nil, reminders outside it are left alone.
func (c *Coordinator) recoverNote(ctx context.Context, noteID int64, now time.Time, only map[int64]bool) (int, error) {
	unlock := c.locks.Lock(noteID)
	defer unlock()

	log := c.logger().WithField("note_id", noteID)
	n, err := c.Repo.GetNoteByID(ctx, noteID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("skipping reminders of missing note")
		return 0, nil
	}
	if err != nil {
		log.WithError(err).Error("failed to read note")
		return 0, fmt.Errorf("reminders: recover note %d: %w", noteID, err)
	}
	if !n.IsActiveTask() {
		log.Debug("skipping reminders of closed note")
		return 0, nil
	}

	rs, err := c.Repo.GetRemindersByNoteID(ctx, noteID)
	if err != nil {
		log.WithError(err).Error("failed to read reminders")
		return 0, fmt.Errorf("reminders: recover note %d: %w", noteID, err)
	}
	count := 0
	for _, r := range rs {
		if only != nil && !only[r.ID] {
			continue
		}
		if r.Active && r.Future(now) && c.schedule(ctx, n, r) {
			count++
		}
	}
	return count, nil
}

// schedule registers r, retrying with inexact delivery when exact delivery is
// refused. Other failures are logged and dropped.
func (c *Coordinator) schedule(ctx context.Context, n *note.Note, r *note.Reminder) bool {
	a := alarm.Alarm{
		ID:    r.ID,
		At:    r.FireAt,
		Title: n.Title,
		Body:  n.Body,
	}
	log := c.logger().WithFields(logrus.Fields{
		"note_id":     n.ID,
		"reminder_id": r.ID,
		"fire_at":     r.FireAt.Format(time.RFC3339),
	})

	err := c.Scheduler.Schedule(ctx, a)
	if errors.Is(err, alarm.ErrExactNotPermitted) {
		log.Debug("exact alarm refused, falling back to inexact")
		a.Precision = alarm.Inexact
		err = c.Scheduler.Schedule(ctx, a)
	}
	if err != nil {
		log.WithError(err).Warn("failed to schedule reminder")
		return false
	}
	log.Debug("reminder scheduled")
	return true
}

func (c *Coordinator) cancel(ctx context.Context, id int64) {
	if err := c.Scheduler.Cancel(ctx, id); err != nil {
		c.logger().WithError(err).WithField("reminder_id", id).Warn("failed to cancel reminder")
	}
}
