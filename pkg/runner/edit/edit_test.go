package edit

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/app/apptest"
	"tableflip.dev/notes/pkg/note"
)

func saveTask(t *testing.T, env *apptest.Env) *app.Detail {
	t.Helper()
	d, err := env.Service.Save(context.Background(), app.Draft{
		Kind:      note.KindTask,
		Title:     "dentist",
		Reminders: []time.Time{apptest.Now.Add(time.Hour)},
		Media:     []app.MediaDraft{{Kind: note.MediaFile, URI: "file:///letter.pdf"}},
	})
	require.NoError(t, err)
	return d
}

func TestEditTitleKeepsReminders(t *testing.T) {
	env := apptest.New(t)
	d := saveTask(t, env)

	title := "dentist at 3"
	e := Edit{Service: env.Service, ID: d.Note.ID, Title: &title, Out: &bytes.Buffer{}}
	require.NoError(t, e.Do(context.Background()))

	got, err := env.Service.Get(context.Background(), d.Note.ID)
	require.NoError(t, err)
	assert.Equal(t, title, got.Note.Title)
	require.Len(t, got.Reminders, 1)
	assert.True(t, got.Reminders[0].FireAt.Equal(apptest.Now.Add(time.Hour)))
	assert.Len(t, got.Media, 1)
	assert.Equal(t, 1, env.Registry.Len())
}

func TestEditReplaceAndAddReminders(t *testing.T) {
	env := apptest.New(t)
	d := saveTask(t, env)

	replace := []time.Time{apptest.Now.Add(3 * time.Hour)}
	e := Edit{
		Service:      env.Service,
		ID:           d.Note.ID,
		Reminders:    &replace,
		AddReminders: []time.Time{apptest.Now.Add(2 * time.Hour)},
		Out:          &bytes.Buffer{},
	}
	require.NoError(t, e.Do(context.Background()))

	got, err := env.Service.Get(context.Background(), d.Note.ID)
	require.NoError(t, err)
	require.Len(t, got.Reminders, 2)
	assert.True(t, got.Note.Due.Equal(apptest.Now.Add(2*time.Hour)))
	assert.Equal(t, 2, env.Registry.Len())

	none := []time.Time{}
	e = Edit{Service: env.Service, ID: d.Note.ID, Reminders: &none, Out: &bytes.Buffer{}}
	require.NoError(t, e.Do(context.Background()))
	assert.Equal(t, 0, env.Registry.Len())
}

func TestEditMedia(t *testing.T) {
	env := apptest.New(t)
	d := saveTask(t, env)
	src := filepath.Join(t.TempDir(), "xray.png")
	require.NoError(t, os.WriteFile(src, []byte("png"), 0o644))

	e := Edit{
		Service: env.Service,
		ID:      d.Note.ID,
		Detach:  []int64{d.Media[0].ID},
		Import:  []string{src},
		Out:     &bytes.Buffer{},
	}
	require.NoError(t, e.Do(context.Background()))

	got, err := env.Service.Get(context.Background(), d.Note.ID)
	require.NoError(t, err)
	require.Len(t, got.Media, 1)
	assert.Equal(t, note.MediaPhoto, got.Media[0].Kind)
}

func TestEditNothing(t *testing.T) {
	env := apptest.New(t)
	d := saveTask(t, env)
	e := Edit{Service: env.Service, ID: d.Note.ID}
	assert.ErrorIs(t, e.Do(context.Background()), ErrNothingToEdit)
}
