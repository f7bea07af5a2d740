package complete

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/app/apptest"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/reminders"
)

func TestCompleteAndReopen(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	d, err := env.Service.Save(ctx, app.Draft{Kind: note.KindTask, Title: "water plants", Reminders: []time.Time{apptest.Now.Add(time.Hour)}})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	c := Complete{Service: env.Service, IDs: []int64{d.Note.ID}, Completed: true, Out: out}
	require.NoError(t, c.Do(ctx))
	assert.Equal(t, 0, env.Registry.Len())
	assert.Contains(t, out.String(), "water plants")

	c.Completed = false
	require.NoError(t, c.Do(ctx))
	assert.Equal(t, 1, env.Registry.Len())
}

func TestCompleteRejectsNotes(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	d, err := env.Service.Save(ctx, app.Draft{Kind: note.KindNote, Title: "idea"})
	require.NoError(t, err)

	c := Complete{Service: env.Service, IDs: []int64{d.Note.ID}, Completed: true, Out: &bytes.Buffer{}}
	assert.ErrorIs(t, c.Do(ctx), reminders.ErrNotTask)

	assert.Error(t, (&Complete{Service: env.Service}).Do(ctx))
}
