package commands

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/notes/pkg/alarm"
	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/logging"
	"tableflip.dev/notes/pkg/store"
)

var (
	oo = &base.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "notes",
		Short: base.Wrap80("Notes and tasks with reminders on the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addAdd(topLevel)
	addGet(topLevel)
	addShow(topLevel)
	addEdit(topLevel)
	addComplete(topLevel)
	addRemove(topLevel)
	addMedia(topLevel)
	addAgenda(topLevel)
	addAlarms(topLevel)
	addCheck(topLevel)
	addInfo(topLevel)
	addDaemon(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addUpgrade(topLevel)
	addCompletions(topLevel)
}

// session is everything a command needs to talk to the database and the
// daemon.
type session struct {
	Config  store.Config
	Log     *logrus.Logger
	Daemon  *alarm.Client
	Service *app.Service
	db      *store.DB
}

// open loads the configuration and the database. Reminders are registered with
// the daemon when it is reachable; otherwise the daemon picks them up the next
// time it notices the database change or restarts.
func open(ctx context.Context) (*session, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel(), cfg.LogFormat())
	client := alarm.NewClient(cfg.DaemonAddr(), nil)
	svc, db, err := app.Setup(ctx, cfg, client, log)
	if err != nil {
		return nil, err
	}
	return &session{
		Config:  cfg,
		Log:     log,
		Daemon:  client,
		Service: svc,
		db:      db,
	}, nil
}

func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		s.Log.WithError(err).Warn("closing database")
	}
}

// run opens a session, hands it to fn and closes it again.
func run(ctx context.Context, fn func(*session) error) error {
	s, err := open(ctx)
	if err != nil {
		return oo.HandleError(err)
	}
	defer s.Close()
	return oo.HandleError(fn(s))
}
