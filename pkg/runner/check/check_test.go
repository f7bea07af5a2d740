package check

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/app/apptest"
	"tableflip.dev/notes/pkg/note"
)

func TestCheckFindsAndRepairsDrift(t *testing.T) {
	color.NoColor = true
	env := apptest.New(t)
	ctx := context.Background()
	d, err := env.Service.Save(ctx, app.Draft{Kind: note.KindTask, Title: "renew passport", Reminders: []time.Time{apptest.Now.Add(time.Hour)}})
	require.NoError(t, err)

	// Lose the registration, as after a daemon restart without recovery.
	require.NoError(t, env.Registry.Cancel(ctx, d.Reminders[0].ID))

	out := &bytes.Buffer{}
	c := Check{Coordinator: env.Service.Reminders, Now: env.Clock.Now, Out: out}
	assert.ErrorIs(t, c.Do(ctx), ErrInconsistent)
	assert.Contains(t, out.String(), "1 missing")

	c.Repair = true
	require.NoError(t, c.Do(ctx))
	assert.Equal(t, 1, env.Registry.Len())

	out.Reset()
	c.Repair = false
	require.NoError(t, c.Do(ctx))
	assert.Contains(t, out.String(), "agree")
}
