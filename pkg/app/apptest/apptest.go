// Package apptest builds an app.Service over an in-memory database and an
// in-process alarm registry driven by a fake clock.
package apptest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tableflip.dev/notes/pkg/alarm"
	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/logging"
	"tableflip.dev/notes/pkg/reminders"
	"tableflip.dev/notes/pkg/repository"
	"tableflip.dev/notes/pkg/store"
)

// Env is a wired Service with handles on its collaborators.
type Env struct {
	Service  *app.Service
	Registry *alarm.Registry
	Clock    *alarm.FakeClock
	DB       *store.DB
}

// Now is the time the fake clock starts at.
var Now = time.Date(2026, 5, 1, 10, 0, 0, 0, time.Local)

// New returns an Env whose database and media directory are removed when t
// finishes.
func New(t testing.TB) *Env {
	t.Helper()
	db, err := store.OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	clock := alarm.NewFakeClock(Now)
	reg := alarm.NewRegistry(alarm.WithClock(clock))
	t.Cleanup(reg.Close)

	repo := repository.New(db)
	coord := reminders.New(repo, reg, logging.Discard())
	coord.Now = clock.Now

	return &Env{
		Service: &app.Service{
			Repo:      repo,
			Reminders: coord,
			Media:     store.NewMediaStore(filepath.Join(t.TempDir(), "media")),
			Log:       logging.Discard(),
		},
		Registry: reg,
		Clock:    clock,
		DB:       db,
	}
}
