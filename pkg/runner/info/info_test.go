package info

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/app/apptest"
	"tableflip.dev/notes/pkg/note"
)

type config struct{}

func (config) DatabasePath() string         { return "/tmp/notes.db" }
func (config) MediaPath() string            { return "/tmp/media" }
func (config) DaemonAddr() string           { return "127.0.0.1:7788" }
func (config) ExactAlarms() bool            { return true }
func (config) InexactWindow() time.Duration { return time.Minute }
func (config) NotificationsEnabled() bool   { return true }
func (config) LogLevel() string             { return "info" }
func (config) LogFormat() string            { return "text" }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestInfo(t *testing.T) {
	color.NoColor = true
	env := apptest.New(t)
	_, err := env.Service.Save(context.Background(), app.Draft{Kind: note.KindTask, Title: "one"})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	i := Info{Config: config{}, Service: env.Service, Daemon: pinger{}, Out: out}
	require.NoError(t, i.Do(context.Background()))
	assert.Contains(t, out.String(), "/tmp/notes.db")
	assert.Contains(t, out.String(), "tasks")
	assert.Contains(t, out.String(), "daemon is running")

	out.Reset()
	i.Daemon = pinger{err: errors.New("connection refused")}
	require.NoError(t, i.Do(context.Background()))
	assert.Contains(t, out.String(), "daemon unreachable: connection refused")
}
