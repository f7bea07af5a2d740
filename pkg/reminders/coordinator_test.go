package reminders

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/notes/pkg/alarm"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/notify"
	"tableflip.dev/notes/pkg/repository"
	"tableflip.dev/notes/pkg/store"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	ctx   context.Context
	repo  repository.Repository
	clock *alarm.FakeClock
	reg   *alarm.Registry
	c     *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := store.OpenMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := alarm.NewFakeClock(t0)
	reg := alarm.NewRegistry(alarm.WithClock(clock))
	repo := repository.New(db)
	logger, _ := test.NewNullLogger()
	c := New(repo, reg, logger)
	c.Now = clock.Now
	return &fixture{ctx: ctx, repo: repo, clock: clock, reg: reg, c: c}
}

func (f *fixture) insert(t *testing.T, kind note.Kind, title string) *note.Note {
	t.Helper()
	n := note.New(kind, title, title+" body")
	n.Created = f.clock.Now()
	_, err := f.repo.InsertNote(f.ctx, n)
	require.NoError(t, err)
	return n
}

func (f *fixture) rows(t *testing.T, noteID int64) []*note.Reminder {
	t.Helper()
	rs, err := f.repo.GetRemindersByNoteID(f.ctx, noteID)
	require.NoError(t, err)
	return rs
}

func (f *fixture) registered(t *testing.T) []int64 {
	t.Helper()
	pending, err := f.reg.Pending(f.ctx)
	require.NoError(t, err)
	ids := make([]int64, 0, len(pending))
	for _, a := range pending {
		ids = append(ids, a.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// assertConsistent checks that a registration exists exactly for the future,
// active reminders of open tasks.
func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	now := f.clock.Now()
	notes, err := f.repo.ListNotes(f.ctx, note.CategoryAll)
	require.NoError(t, err)
	want := make([]int64, 0)
	for _, n := range notes {
		for _, r := range f.rows(t, n.ID) {
			if n.IsActiveTask() && r.Active && r.Future(now) {
				want = append(want, r.ID)
			}
		}
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	assert.Equal(t, want, f.registered(t))
}

func ids(rs []*note.Reminder) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestTaskLifecycle(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "Pay rent")

	// Create with a due time an hour out.
	created, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, created, 1)
	rows := f.rows(t, task.ID)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].FireAt.Equal(t0.Add(time.Hour)))
	assert.Equal(t, []int64{rows[0].ID}, f.registered(t))
	first := rows[0].ID

	// Move it to two hours out.
	edited, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(2 * time.Hour)})
	require.NoError(t, err)
	rows = f.rows(t, task.ID)
	require.Len(t, rows, 1)
	assert.NotEqual(t, first, rows[0].ID, "a new fire time gets a new reminder")
	assert.Equal(t, ids(edited), ids(rows))
	assert.True(t, rows[0].FireAt.Equal(t0.Add(2*time.Hour)))
	assert.Equal(t, []int64{rows[0].ID}, f.registered(t))

	// Complete it before it fires.
	f.clock.Advance(30 * time.Minute)
	done, err := f.c.OnComplete(f.ctx, task.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Len(t, f.rows(t, task.ID), 1, "completing keeps reminder history")
	assert.Empty(t, f.registered(t))

	n, err := f.c.RecoverAfterRestart(f.ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, f.registered(t), "completed tasks are not recovered")

	// Delete it.
	require.NoError(t, f.c.OnDelete(f.ctx, task.ID))
	assert.Empty(t, f.rows(t, task.ID))
	media, err := f.repo.GetMediaByNoteID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, media)
	assert.Empty(t, f.registered(t))
	f.assertConsistent(t)
}

func TestOnSaveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "water plants")
	times := []time.Time{t0.Add(time.Hour), t0.Add(3 * time.Hour)}

	_, err := f.c.OnSave(f.ctx, task, times)
	require.NoError(t, err)
	_, err = f.c.OnSave(f.ctx, task, times)
	require.NoError(t, err)

	rows := f.rows(t, task.ID)
	assert.Len(t, rows, 2)
	assert.Equal(t, ids(rows), f.registered(t))
	assert.Equal(t, 2, f.reg.Len(), "no stale registrations accumulate")
	f.assertConsistent(t)
}

func TestOnSaveNormalizesTimes(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "dupes")
	at := t0.Add(time.Hour)

	got, err := f.c.OnSave(f.ctx, task, []time.Time{at.Add(time.Hour), at, at, {}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].FireAt.Equal(at))
	assert.True(t, got[1].FireAt.Equal(at.Add(time.Hour)))
}

func TestOnSavePersistsPastTimesWithoutScheduling(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "past")

	got, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(-time.Hour), t0, t0.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Len(t, f.rows(t, task.ID), 3)
	assert.Equal(t, []int64{got[2].ID}, f.registered(t))
}

func TestOnSaveLegacyDueDate(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "legacy")
	due := t0.Add(45 * time.Minute)
	task.Due = &due

	got, err := f.c.OnSave(f.ctx, task, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].FireAt.Equal(due))
	assert.Equal(t, []int64{got[0].ID}, f.registered(t))
}

func TestOnSaveClearsRemindersOfNonTasks(t *testing.T) {
	f := newFixture(t)
	n := f.insert(t, note.KindTask, "becomes a note")
	_, err := f.c.OnSave(f.ctx, n, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, f.registered(t), 1)

	n.Kind = note.KindNote
	n.Normalize()
	require.NoError(t, f.repo.UpdateNote(f.ctx, n))
	got, err := f.c.OnSave(f.ctx, n, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, f.rows(t, n.ID))
	assert.Empty(t, f.registered(t))
}

func TestOnSaveEmptyListClearsReminders(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "cleared")
	_, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(time.Hour), t0.Add(2 * time.Hour)})
	require.NoError(t, err)

	_, err = f.c.OnSave(f.ctx, task, nil)
	require.NoError(t, err)
	assert.Empty(t, f.rows(t, task.ID))
	assert.Empty(t, f.registered(t))
}

func TestOnSaveCompletedTaskKeepsRowsOnly(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "already done")
	task.Completed = true
	require.NoError(t, f.repo.UpdateNote(f.ctx, task))

	got, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Empty(t, f.registered(t))
}

func TestOnSaveRequiresPersistedNote(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.OnSave(f.ctx, note.New(note.KindTask, "unsaved", ""), []time.Time{t0.Add(time.Hour)})
	assert.Error(t, err)
}

func TestOnSaveStoreFailureLeavesOldSet(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "fragile")
	_, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)
	before := f.rows(t, task.ID)
	beforeRegs := f.registered(t)

	faulty := &faultyRepo{Repository: f.repo, failInsertReminder: true}
	f.c.Repo = faulty
	_, err = f.c.OnSave(f.ctx, task, []time.Time{t0.Add(2 * time.Hour), t0.Add(3 * time.Hour)})
	require.Error(t, err)
	assert.ErrorIs(t, err, errStore)

	f.c.Repo = f.repo
	assert.Equal(t, ids(before), ids(f.rows(t, task.ID)))
	assert.Equal(t, beforeRegs, f.registered(t))
	f.assertConsistent(t)
}

func TestCompletionToggling(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "toggle")
	_, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(time.Hour), t0.Add(2 * time.Hour), t0.Add(3 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, f.registered(t), 3)

	_, err = f.c.OnComplete(f.ctx, task.ID, true)
	require.NoError(t, err)
	assert.Empty(t, f.registered(t))
	assert.Len(t, f.rows(t, task.ID), 3)

	// The first reminder passes while the task is completed.
	f.clock.Advance(90 * time.Minute)

	n, err := f.c.OnComplete(f.ctx, task.ID, false)
	require.NoError(t, err)
	assert.False(t, n.Completed)
	rows := f.rows(t, task.ID)
	assert.Equal(t, []int64{rows[1].ID, rows[2].ID}, f.registered(t))
	f.assertConsistent(t)
}

func TestUncompleteSkipsInactiveRows(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "inactive")
	got, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(time.Hour), t0.Add(2 * time.Hour)})
	require.NoError(t, err)
	_, err = f.c.OnComplete(f.ctx, task.ID, true)
	require.NoError(t, err)
	require.NoError(t, f.repo.SetReminderActive(f.ctx, got[0].ID, false))

	_, err = f.c.OnComplete(f.ctx, task.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{got[1].ID}, f.registered(t))
}

func TestOnCompleteRejectsNotes(t *testing.T) {
	f := newFixture(t)
	n := f.insert(t, note.KindNote, "just a note")
	_, err := f.c.OnComplete(f.ctx, n.ID, true)
	assert.ErrorIs(t, err, ErrNotTask)

	got, err := f.repo.GetNoteByID(f.ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestOnCompleteMissingNote(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.OnComplete(f.ctx, 404, true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOnDeleteCascades(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "doomed")
	keep := f.insert(t, note.KindTask, "kept")
	_, err := f.repo.InsertMedia(f.ctx, &note.Media{NoteID: task.ID, Kind: note.MediaPhoto, URI: "media:x.jpg"})
	require.NoError(t, err)
	_, err = f.c.OnSave(f.ctx, task, []time.Time{t0.Add(time.Hour), t0.Add(2 * time.Hour)})
	require.NoError(t, err)
	kept, err := f.c.OnSave(f.ctx, keep, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, f.c.OnDelete(f.ctx, task.ID))

	_, err = f.repo.GetNoteByID(f.ctx, task.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, f.rows(t, task.ID))
	media, err := f.repo.GetMediaByNoteID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, media)
	assert.Equal(t, ids(kept), f.registered(t))
	f.assertConsistent(t)
}

func TestOnDeleteFailureRestoresRegistrations(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "sticky")
	got, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)

	f.c.Repo = &faultyRepo{Repository: f.repo, failDeleteNote: true}
	err = f.c.OnDelete(f.ctx, task.ID)
	assert.ErrorIs(t, err, errStore)

	f.c.Repo = f.repo
	assert.Equal(t, ids(got), f.registered(t))
	f.assertConsistent(t)
}

func TestOnDeleteMissingNote(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.c.OnDelete(f.ctx, 404), repository.ErrNotFound)
}

func TestRecoverAfterRestartIsStrictlyFuture(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "recover")
	now := t0
	t1, t2, t3 := now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour)
	_, err := f.c.OnSave(f.ctx, task, []time.Time{t1, now, t2, t3})
	require.NoError(t, err)
	rows := f.rows(t, task.ID)
	require.Len(t, rows, 4)

	// A restart loses every registration.
	f.reg.Close()
	require.Empty(t, f.registered(t))

	n, err := f.c.RecoverAfterRestart(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{rows[2].ID, rows[3].ID}, f.registered(t))
	f.assertConsistent(t)

	// Running it again changes nothing.
	n, err = f.c.RecoverAfterRestart(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, f.reg.Len())
}

func TestRecoverAfterRestartAcrossNotes(t *testing.T) {
	f := newFixture(t)
	open := f.insert(t, note.KindTask, "open")
	done := f.insert(t, note.KindTask, "done")
	plain := f.insert(t, note.KindNote, "plain")

	_, err := f.c.OnSave(f.ctx, open, []time.Time{t0.Add(time.Hour), t0.Add(2 * time.Hour)})
	require.NoError(t, err)
	_, err = f.c.OnSave(f.ctx, done, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)
	_, err = f.c.OnComplete(f.ctx, done.ID, true)
	require.NoError(t, err)
	// Rows for a plain note can only come from outside the coordinator.
	_, err = f.repo.InsertReminder(f.ctx, plain.ID, t0.Add(time.Hour))
	require.NoError(t, err)

	f.reg.Close()
	n, err := f.c.RecoverAfterRestart(f.ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, ids(f.rows(t, open.ID)), f.registered(t))
}

func TestRecoverSkipsMissingNotes(t *testing.T) {
	f := newFixture(t)
	lost := f.insert(t, note.KindTask, "lost")
	kept := f.insert(t, note.KindTask, "kept")
	_, err := f.c.OnSave(f.ctx, lost, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)
	keptRows, err := f.c.OnSave(f.ctx, kept, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)
	f.reg.Close()

	logger, hook := test.NewNullLogger()
	f.c.Log = logger
	f.c.Repo = &faultyRepo{Repository: f.repo, missing: map[int64]bool{lost.ID: true}}
	n, err := f.c.RecoverAfterRestart(f.ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, ids(keptRows), f.registered(t))

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "skipping reminders of missing note" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRecoverSurfacesStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.c.Repo = &faultyRepo{Repository: f.repo, failFuture: true}
	_, err := f.c.RecoverAfterRestart(f.ctx, t0)
	assert.ErrorIs(t, err, errStore)
}

func TestRecoverHonoursCancellation(t *testing.T) {
	f := newFixture(t)
	task := f.insert(t, note.KindTask, "cancelled")
	_, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(f.ctx)
	cancel()
	_, err = f.c.RecoverAfterRestart(ctx, t0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExactRefusalFallsBackToInexact(t *testing.T) {
	f := newFixture(t)
	strict := &strictScheduler{Scheduler: f.reg}
	f.c.Scheduler = strict
	task := f.insert(t, note.KindTask, "fallback")

	got, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(90 * time.Second)})
	require.NoError(t, err)
	assert.Equal(t, ids(got), f.registered(t))
	assert.Equal(t, []alarm.Precision{alarm.BestEffort, alarm.Inexact}, strict.requests)

	pending, err := f.reg.Pending(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, alarm.Inexact, pending[0].Precision)
}

func TestSchedulerFailureDoesNotFailSave(t *testing.T) {
	f := newFixture(t)
	logger, hook := test.NewNullLogger()
	f.c.Log = logger
	f.c.Scheduler = brokenScheduler{}
	task := f.insert(t, note.KindTask, "offline daemon")

	got, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Len(t, f.rows(t, task.ID), 1)
	assert.NotEmpty(t, hook.AllEntries())

	require.NoError(t, f.c.OnDelete(f.ctx, task.ID))
}

func TestAlarmsFireForReminders(t *testing.T) {
	f := newFixture(t)
	var (
		mu    sync.Mutex
		fired []int64
	)
	presenter := recorderFunc(func(id int64) {
		mu.Lock()
		fired = append(fired, id)
		mu.Unlock()
	})
	f.reg = alarm.NewRegistry(alarm.WithClock(f.clock), alarm.WithPresenter(presenter))
	f.c.Scheduler = f.reg
	task := f.insert(t, note.KindTask, "ring")
	got, err := f.c.OnSave(f.ctx, task, []time.Time{t0.Add(time.Hour)})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	mu.Lock()
	assert.Equal(t, ids(got), fired)
	mu.Unlock()
	assert.Empty(t, f.registered(t))
	f.assertConsistent(t)
}

func TestConcurrentEditsStayConsistent(t *testing.T) {
	f := newFixture(t)
	tasks := []*note.Note{
		f.insert(t, note.KindTask, "a"),
		f.insert(t, note.KindTask, "b"),
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		for _, task := range tasks {
			wg.Add(1)
			go func(n *note.Note, i int) {
				defer wg.Done()
				at := t0.Add(time.Duration(i+1) * time.Hour)
				_, err := f.c.OnSave(f.ctx, n, []time.Time{at, at.Add(time.Minute)})
				assert.NoError(t, err)
			}(task, i)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.c.RecoverAfterRestart(f.ctx, t0)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	for _, task := range tasks {
		assert.Len(t, f.rows(t, task.ID), 2)
	}
	f.assertConsistent(t)
	assert.Equal(t, 0, f.c.locks.Len())
}

var errStore = errors.New("store unavailable")

type faultyRepo struct {
	repository.Repository
	failInsertReminder bool
	failDeleteNote     bool
	failFuture         bool
	missing            map[int64]bool
}

func (f *faultyRepo) InsertReminder(ctx context.Context, noteID int64, at time.Time) (int64, error) {
	if f.failInsertReminder {
		return 0, errStore
	}
	return f.Repository.InsertReminder(ctx, noteID, at)
}

func (f *faultyRepo) DeleteNoteByID(ctx context.Context, id int64) error {
	if f.failDeleteNote {
		return errStore
	}
	return f.Repository.DeleteNoteByID(ctx, id)
}

func (f *faultyRepo) GetAllFutureReminders(ctx context.Context, now time.Time) ([]*note.Reminder, error) {
	if f.failFuture {
		return nil, errStore
	}
	return f.Repository.GetAllFutureReminders(ctx, now)
}

func (f *faultyRepo) GetNoteByID(ctx context.Context, id int64) (*note.Note, error) {
	if f.missing[id] {
		return nil, repository.ErrNotFound
	}
	return f.Repository.GetNoteByID(ctx, id)
}

func (f *faultyRepo) Transact(ctx context.Context, fn func(repository.Repository) error) error {
	return f.Repository.Transact(ctx, func(tx repository.Repository) error {
		cp := *f
		cp.Repository = tx
		return fn(&cp)
	})
}

// strictScheduler refuses anything but inexact delivery, like a platform that
// reports a missing exact-alarm grant as an error.
type strictScheduler struct {
	alarm.Scheduler
	requests []alarm.Precision
}

func (s *strictScheduler) Schedule(ctx context.Context, a alarm.Alarm) error {
	s.requests = append(s.requests, a.Precision)
	if a.Precision != alarm.Inexact {
		return alarm.ErrExactNotPermitted
	}
	return s.Scheduler.Schedule(ctx, a)
}

type brokenScheduler struct{}

func (brokenScheduler) Schedule(context.Context, alarm.Alarm) error { return alarm.ErrUnavailable }
func (brokenScheduler) Cancel(context.Context, int64) error         { return alarm.ErrUnavailable }

type recorderFunc func(id int64)

func (f recorderFunc) Present(_ context.Context, n notify.Notification) error {
	f(n.ID)
	return nil
}
