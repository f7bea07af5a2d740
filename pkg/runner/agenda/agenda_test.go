package agenda

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/app/apptest"
	"tableflip.dev/notes/pkg/note"
)

func TestAgenda(t *testing.T) {
	color.NoColor = true
	env := apptest.New(t)
	ctx := context.Background()
	_, err := env.Service.Save(ctx, app.Draft{Kind: note.KindTask, Title: "standup", Reminders: []time.Time{apptest.Now.Add(time.Hour)}})
	require.NoError(t, err)
	_, err = env.Service.Save(ctx, app.Draft{Kind: note.KindTask, Title: "quarterly", Reminders: []time.Time{apptest.Now.Add(40 * 24 * time.Hour)}})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	a := Agenda{Service: env.Service, Window: "1d", Calendar: true, Now: env.Clock.Now, Out: out}
	require.NoError(t, a.Do(ctx))
	assert.Contains(t, out.String(), "standup")
	assert.NotContains(t, out.String(), "quarterly")
	assert.Contains(t, out.String(), "May")

	out.Reset()
	a = Agenda{Service: env.Service, Window: "6w", JSON: true, Now: env.Clock.Now, Out: out}
	require.NoError(t, a.Do(ctx))
	var result app.AgendaResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, 2, result.Total)
}

func TestAgendaBadWindow(t *testing.T) {
	env := apptest.New(t)
	a := Agenda{Service: env.Service, Window: "later"}
	assert.Error(t, a.Do(context.Background()))
}
