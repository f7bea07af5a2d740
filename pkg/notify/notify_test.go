package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDefaults(t *testing.T) {
	n := Notification{ID: 1, Title: "  ", Body: ""}.WithDefaults()
	assert.Equal(t, DefaultTitle, n.Title)
	assert.Equal(t, DefaultBody, n.Body)

	n = Notification{ID: 1, Title: "Pay rent", Body: "today"}.WithDefaults()
	assert.Equal(t, "Pay rent", n.Title)
	assert.Equal(t, "today", n.Body)
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := &Console{Out: &buf}
	at := time.Date(2026, 3, 4, 9, 15, 0, 0, time.Local)
	require.NoError(t, c.Present(context.Background(), Notification{ID: 7, Title: "Pay rent", At: at}))

	out := buf.String()
	assert.Contains(t, out, "Pay rent")
	assert.Contains(t, out, DefaultBody)
	assert.Contains(t, out, "2026-03-04 09:15")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestLog(t *testing.T) {
	logger, hook := test.NewNullLogger()
	require.NoError(t, Log{Log: logger}.Present(context.Background(), Notification{ID: 3, Title: "Call mom"}))

	require.Len(t, hook.Entries, 1)
	e := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, e.Level)
	assert.Equal(t, int64(3), e.Data["reminder_id"])
	assert.Contains(t, e.Message, "Call mom")
}

func TestGate(t *testing.T) {
	var got []int64
	next := PresenterFunc(func(_ context.Context, n Notification) error {
		got = append(got, n.ID)
		return nil
	})
	enabled := false
	logger, hook := test.NewNullLogger()
	g := Gate{Next: next, Enabled: func() bool { return enabled }, Log: logger}

	require.NoError(t, g.Present(context.Background(), Notification{ID: 1}))
	assert.Empty(t, got)
	assert.Len(t, hook.Entries, 1)

	enabled = true
	require.NoError(t, g.Present(context.Background(), Notification{ID: 2}))
	assert.Equal(t, []int64{2}, got)
}

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	ok := PresenterFunc(func(context.Context, Notification) error { calls++; return nil })
	bad := PresenterFunc(func(context.Context, Notification) error { calls++; return boom })

	err := Multi(bad, ok).Present(context.Background(), Notification{ID: 1})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
