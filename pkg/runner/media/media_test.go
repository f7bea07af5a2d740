package media

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/app/apptest"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/store"
)

func TestAttachFileAndURI(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	d, err := env.Service.Save(ctx, app.Draft{Kind: note.KindNote, Title: "trip"})
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "beach.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpeg"), 0o644))

	a := Attach{Service: env.Service, NoteID: d.Note.ID, Source: src, Description: "sunset", Out: &bytes.Buffer{}}
	require.NoError(t, a.Do(ctx))
	a = Attach{Service: env.Service, NoteID: d.Note.ID, Source: "https://example.com/map", Out: &bytes.Buffer{}}
	require.NoError(t, a.Do(ctx))

	got, err := env.Service.Get(ctx, d.Note.ID)
	require.NoError(t, err)
	require.Len(t, got.Media, 2)
	assert.Equal(t, note.MediaPhoto, got.Media[0].Kind)
	assert.True(t, store.Managed(got.Media[0].URI))
	assert.Equal(t, "https://example.com/map", got.Media[1].URI)

	dt := Detach{Service: env.Service, MediaIDs: []int64{got.Media[0].ID, got.Media[1].ID}}
	require.NoError(t, dt.Do(ctx))
	got, err = env.Service.Get(ctx, d.Note.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Media)
}

func TestAttachWithoutMediaStore(t *testing.T) {
	env := apptest.New(t)
	env.Service.Media = nil
	ctx := context.Background()
	d, err := env.Service.Save(ctx, app.Draft{Kind: note.KindNote, Title: "scan"})
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(src, []byte("pdf"), 0o644))
	a := Attach{Service: env.Service, NoteID: d.Note.ID, Source: src, Out: &bytes.Buffer{}}
	require.NoError(t, a.Do(ctx))

	got, err := env.Service.Get(ctx, d.Note.ID)
	require.NoError(t, err)
	require.Len(t, got.Media, 1)
	assert.True(t, strings.HasPrefix(got.Media[0].URI, "file:///"))
	assert.Equal(t, note.MediaFile, got.Media[0].Kind)
}

func TestAttachRequiresSource(t *testing.T) {
	env := apptest.New(t)
	a := Attach{Service: env.Service, NoteID: 1}
	assert.Error(t, a.Do(context.Background()))
	assert.Error(t, (&Detach{Service: env.Service}).Do(context.Background()))
}
