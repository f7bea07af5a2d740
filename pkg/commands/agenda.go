package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/runner/agenda"
	"tableflip.dev/notes/pkg/runner/alarms"
	"tableflip.dev/notes/pkg/runner/check"
	"tableflip.dev/notes/pkg/timeutil"
)

func addAgenda(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	var (
		window   string
		calendar bool
	)

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Upcoming reminders of open tasks",
		Long: `Agenda lists the reminders of open tasks due within the window, grouped by
day, followed by the tasks whose reminders have all passed.`,
		Example: `
notes agenda
notes agenda --window 3d
notes agenda --window 2w --calendar
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if _, _, err := timeutil.ParseWindow(window); err != nil {
				return oo.HandleError(err)
			}
			return run(cmd.Context(), func(s *session) error {
				a := agenda.Agenda{
					Service:  s.Service,
					Window:   window,
					Calendar: calendar,
					ShowID:   io.ShowID,
					JSON:     oo.JSON,
				}
				return a.Do(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVarP(&window, "window", "w", timeutil.DefaultWindow,
		"How far ahead to look, for example 1d, 1w or 2w3d.")
	cmd.Flags().BoolVarP(&calendar, "calendar", "c", false,
		"Also print a calendar of the window with busy days highlighted.")
	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addAlarms(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "alarms",
		Short: "List the alarms the daemon is holding",
		Example: `
notes alarms
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), func(s *session) error {
				a := alarms.Alarms{
					Lister: s.Daemon,
					JSON:   oo.JSON,
				}
				return a.Do(cmd.Context())
			})
		},
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addCheck(topLevel *cobra.Command) {
	var repair bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare stored reminders with the alarms the daemon holds",
		Long: `Check reports reminders without an alarm and alarms without a reminder.
With --repair the daemon is brought back in line with the database.`,
		Example: `
notes check
notes check --repair
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), func(s *session) error {
				if err := s.Daemon.Ping(cmd.Context()); err != nil {
					return err
				}
				c := check.Check{
					Coordinator: s.Service.Reminders,
					Repair:      repair,
					JSON:        oo.JSON,
				}
				return c.Do(cmd.Context())
			})
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false,
		"Schedule missing alarms and cancel orphaned ones.")
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
