package show

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/app/apptest"
	"tableflip.dev/notes/pkg/note"
)

func TestShow(t *testing.T) {
	color.NoColor = true
	env := apptest.New(t)
	d, err := env.Service.Save(context.Background(), app.Draft{Kind: note.KindNote, Title: "recipe", Body: "two eggs"})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	s := Show{Service: env.Service, ID: d.Note.ID, Out: out}
	require.NoError(t, s.Do(context.Background()))
	assert.Contains(t, out.String(), "recipe")
	assert.Contains(t, out.String(), "two eggs")
}

func TestShowMissing(t *testing.T) {
	env := apptest.New(t)
	s := Show{Service: env.Service, ID: 5}
	assert.ErrorIs(t, s.Do(context.Background()), app.ErrNotFound)
}
