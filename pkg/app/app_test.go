package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/notes/pkg/alarm"
	"tableflip.dev/notes/pkg/logging"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/reminders"
	"tableflip.dev/notes/pkg/repository"
	"tableflip.dev/notes/pkg/store"
)

type harness struct {
	ctx   context.Context
	svc   *Service
	clock *alarm.FakeClock
	reg   *alarm.Registry
	media *store.MediaStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	db, err := store.OpenMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().Truncate(time.Millisecond)
	clock := alarm.NewFakeClock(now)
	reg := alarm.NewRegistry(alarm.WithClock(clock))
	repo := repository.New(db)
	coord := reminders.New(repo, reg, logging.Discard())
	coord.Now = clock.Now
	media := store.NewMediaStore(filepath.Join(t.TempDir(), "media"))

	return &harness{
		ctx:   ctx,
		svc:   &Service{Repo: repo, Reminders: coord, Media: media, Log: logging.Discard()},
		clock: clock,
		reg:   reg,
		media: media,
	}
}

func TestSaveNewTask(t *testing.T) {
	h := newHarness(t)
	now := h.clock.Now()

	d, err := h.svc.Save(h.ctx, Draft{
		Kind:      note.KindTask,
		Title:     "  Pay rent ",
		Reminders: []time.Time{now.Add(2 * time.Hour), now.Add(time.Hour)},
		Media:     []MediaDraft{{Kind: note.MediaPhoto, URI: "file:///receipt.jpg"}},
	})
	require.NoError(t, err)
	assert.NotZero(t, d.Note.ID)
	assert.Equal(t, "Pay rent", d.Note.Title)
	require.NotNil(t, d.Note.Due)
	assert.True(t, d.Note.Due.Equal(now.Add(time.Hour)), "due date is the earliest reminder")
	assert.Len(t, d.Reminders, 2)
	assert.Len(t, d.Media, 1)
	assert.Equal(t, 2, h.reg.Len())

	got, err := h.svc.Get(h.ctx, d.Note.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Note.Title, got.Note.Title)
	assert.Len(t, got.Media, 1)
	assert.Len(t, got.Reminders, 2)
}

func TestSaveDefaultsTitle(t *testing.T) {
	h := newHarness(t)
	d, err := h.svc.Save(h.ctx, Draft{Kind: note.KindNote, Body: "just text"})
	require.NoError(t, err)
	assert.Equal(t, note.DefaultTitle, d.Note.Title)
	assert.Empty(t, d.Reminders)
}

func TestSaveNoteIgnoresReminders(t *testing.T) {
	h := newHarness(t)
	due := h.clock.Now().Add(time.Hour)
	d, err := h.svc.Save(h.ctx, Draft{
		Kind:      note.KindNote,
		Title:     "idea",
		Due:       &due,
		Reminders: []time.Time{due},
	})
	require.NoError(t, err)
	assert.Nil(t, d.Note.Due)
	assert.Empty(t, d.Reminders)
	assert.Equal(t, 0, h.reg.Len())
}

func TestSaveTaskWithDueOnly(t *testing.T) {
	h := newHarness(t)
	due := h.clock.Now().Add(time.Hour)
	d, err := h.svc.Save(h.ctx, Draft{Kind: note.KindTask, Title: "legacy", Due: &due})
	require.NoError(t, err)
	require.Len(t, d.Reminders, 1)
	assert.True(t, d.Reminders[0].FireAt.Equal(due))
	assert.Equal(t, 1, h.reg.Len())
}

func TestEditReplacesRemindersAndMedia(t *testing.T) {
	h := newHarness(t)
	now := h.clock.Now()
	uri, err := h.media.Import(strings.NewReader("old"), "old.png")
	require.NoError(t, err)

	first, err := h.svc.Save(h.ctx, Draft{
		Kind:      note.KindTask,
		Title:     "edit me",
		Reminders: []time.Time{now.Add(time.Hour)},
		Media:     []MediaDraft{{Kind: note.MediaPhoto, URI: uri}},
	})
	require.NoError(t, err)

	draft := DraftFrom(first)
	draft.Title = "edited"
	draft.Reminders = []time.Time{now.Add(2 * time.Hour)}
	draft.Media = []MediaDraft{{Kind: note.MediaAudio, URI: "file:///memo.m4a"}}
	second, err := h.svc.Save(h.ctx, draft)
	require.NoError(t, err)

	assert.Equal(t, first.Note.ID, second.Note.ID)
	assert.Equal(t, "edited", second.Note.Title)
	assert.Equal(t, note.Millis(first.Note.Created), note.Millis(second.Note.Created))
	require.Len(t, second.Reminders, 1)
	assert.NotEqual(t, first.Reminders[0].ID, second.Reminders[0].ID)

	pending, err := h.reg.Pending(h.ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.Reminders[0].ID, pending[0].ID)
	assert.Equal(t, "edited", pending[0].Title)

	got, err := h.svc.Get(h.ctx, first.Note.ID)
	require.NoError(t, err)
	require.Len(t, got.Media, 1)
	assert.Equal(t, note.MediaAudio, got.Media[0].Kind)

	_, err = os.Stat(h.media.Path(uri))
	assert.True(t, os.IsNotExist(err), "replaced managed media is erased")
}

func TestEditMissingNote(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Save(h.ctx, Draft{ID: 99, Kind: note.KindNote})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveValidates(t *testing.T) {
	h := newHarness(t)
	cases := map[string]Draft{
		"missing kind": {Title: "x"},
		"bad kind":     {Kind: note.Kind("event")},
		"media uri":    {Kind: note.KindNote, Media: []MediaDraft{{Kind: note.MediaPhoto}}},
		"media kind":   {Kind: note.KindNote, Media: []MediaDraft{{Kind: "hologram", URI: "x"}}},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.svc.Save(h.ctx, d)
			require.Error(t, err)
			var verrs validator.ValidationErrors
			assert.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
		})
	}
}

func TestSetCompleted(t *testing.T) {
	h := newHarness(t)
	d, err := h.svc.Save(h.ctx, Draft{Kind: note.KindTask, Title: "finish", Reminders: []time.Time{h.clock.Now().Add(time.Hour)}})
	require.NoError(t, err)

	n, err := h.svc.SetCompleted(h.ctx, d.Note.ID, true)
	require.NoError(t, err)
	assert.True(t, n.Completed)
	assert.Equal(t, 0, h.reg.Len())

	done, err := h.svc.List(h.ctx, note.CategoryCompleted)
	require.NoError(t, err)
	assert.Len(t, done, 1)

	_, err = h.svc.SetCompleted(h.ctx, d.Note.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, h.reg.Len())

	plain, err := h.svc.Save(h.ctx, Draft{Kind: note.KindNote, Title: "plain"})
	require.NoError(t, err)
	_, err = h.svc.SetCompleted(h.ctx, plain.Note.ID, true)
	assert.ErrorIs(t, err, reminders.ErrNotTask)
}

func TestDeleteErasesEverything(t *testing.T) {
	h := newHarness(t)
	uri, err := h.media.Import(strings.NewReader("voice"), "memo.m4a")
	require.NoError(t, err)
	d, err := h.svc.Save(h.ctx, Draft{
		Kind:      note.KindTask,
		Title:     "gone",
		Reminders: []time.Time{h.clock.Now().Add(time.Hour)},
		Media:     []MediaDraft{{Kind: note.MediaAudio, URI: uri}},
	})
	require.NoError(t, err)

	require.NoError(t, h.svc.Delete(h.ctx, d.Note.ID))
	_, err = h.svc.Get(h.ctx, d.Note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, h.reg.Len())
	_, err = os.Stat(h.media.Path(uri))
	assert.True(t, os.IsNotExist(err))
}

func TestAttachDetachMedia(t *testing.T) {
	h := newHarness(t)
	d, err := h.svc.Save(h.ctx, Draft{Kind: note.KindNote, Title: "album"})
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "beach.JPG")
	require.NoError(t, os.WriteFile(src, []byte("jpeg"), 0o644))
	uri, err := h.svc.ImportMedia(src)
	require.NoError(t, err)

	m, err := h.svc.AttachMedia(h.ctx, d.Note.ID, MediaDraft{Kind: note.MediaPhoto, URI: uri, Description: "beach"})
	require.NoError(t, err)
	assert.Equal(t, d.Note.ID, m.NoteID)

	_, err = h.svc.AttachMedia(h.ctx, 9999, MediaDraft{URI: "file:///x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, h.svc.DetachMedia(h.ctx, m.ID))
	got, err := h.svc.Get(h.ctx, d.Note.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Media)
	_, err = os.Stat(h.media.Path(uri))
	assert.True(t, os.IsNotExist(err))
}

func TestImportMediaWithoutStore(t *testing.T) {
	svc := &Service{}
	_, err := svc.ImportMedia("/tmp/x")
	assert.ErrorIs(t, err, ErrNoMediaStore)
	_, err = svc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAgenda(t *testing.T) {
	h := newHarness(t)
	now := h.clock.Now()

	soon, err := h.svc.Save(h.ctx, Draft{Kind: note.KindTask, Title: "soon", Reminders: []time.Time{now.Add(time.Hour), now.Add(50 * time.Hour)}})
	require.NoError(t, err)
	done, err := h.svc.Save(h.ctx, Draft{Kind: note.KindTask, Title: "done", Reminders: []time.Time{now.Add(2 * time.Hour)}})
	require.NoError(t, err)
	_, err = h.svc.SetCompleted(h.ctx, done.Note.ID, true)
	require.NoError(t, err)
	late, err := h.svc.Save(h.ctx, Draft{Kind: note.KindTask, Title: "late", Reminders: []time.Time{now.Add(-time.Hour)}})
	require.NoError(t, err)

	agenda, err := h.svc.Agenda(h.ctx, now, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, agenda.Total)
	require.Len(t, agenda.Days, 1)
	assert.Equal(t, soon.Note.ID, agenda.Days[0].Items[0].Note.ID)
	require.Len(t, agenda.Overdue, 1)
	assert.Equal(t, late.Note.ID, agenda.Overdue[0].ID)

	week, err := h.svc.Agenda(h.ctx, now.Add(7*24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, 2, week.Total)
}
