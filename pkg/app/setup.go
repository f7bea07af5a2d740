package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"tableflip.dev/notes/pkg/alarm"
	"tableflip.dev/notes/pkg/reminders"
	"tableflip.dev/notes/pkg/repository"
	"tableflip.dev/notes/pkg/store"
)

// Setup opens the database named by cfg and builds a Service whose reminders
// are registered with scheduler. A nil cfg is loaded from the usual places.
// The caller closes the returned DB.
func Setup(ctx context.Context, cfg store.Config, scheduler alarm.Scheduler, log logrus.FieldLogger) (*Service, *store.DB, error) {
	if cfg == nil {
		var err error
		if cfg, err = store.LoadConfig(); err != nil {
			return nil, nil, err
		}
	}
	db, err := store.Load(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.New(db)
	svc := &Service{
		Repo:      repo,
		Reminders: reminders.New(repo, scheduler, log),
		Log:       log,
	}
	if cfg.MediaPath() != "" {
		svc.Media = store.NewMediaStore(cfg.MediaPath())
	}
	return svc, db, nil
}
