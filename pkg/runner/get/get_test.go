package get

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/app/apptest"
	"tableflip.dev/notes/pkg/note"
)

func seed(t *testing.T, env *apptest.Env) {
	t.Helper()
	ctx := context.Background()
	for _, d := range []app.Draft{
		{Kind: note.KindNote, Title: "idea"},
		{Kind: note.KindTask, Title: "chore"},
	} {
		_, err := env.Service.Save(ctx, d)
		require.NoError(t, err)
	}
}

func TestGetTasks(t *testing.T) {
	color.NoColor = true
	env := apptest.New(t)
	seed(t, env)

	out := &bytes.Buffer{}
	g := Get{Service: env.Service, Category: note.CategoryTasks, Out: out}
	require.NoError(t, g.Do(context.Background()))
	assert.Contains(t, out.String(), "Tasks - 1 note")
	assert.Contains(t, out.String(), "chore")
	assert.False(t, strings.Contains(out.String(), "idea"))
}

func TestGetJSONDefaultsToAll(t *testing.T) {
	env := apptest.New(t)
	seed(t, env)

	out := &bytes.Buffer{}
	g := Get{Service: env.Service, JSON: true, Out: out}
	require.NoError(t, g.Do(context.Background()))

	var notes []*note.Note
	require.NoError(t, json.Unmarshal(out.Bytes(), &notes))
	assert.Len(t, notes, 2)
}

func TestGetEmptyJSON(t *testing.T) {
	env := apptest.New(t)
	out := &bytes.Buffer{}
	g := Get{Service: env.Service, Category: note.CategoryCompleted, JSON: true, Out: out}
	require.NoError(t, g.Do(context.Background()))
	assert.Equal(t, "[]\n", out.String())
}
