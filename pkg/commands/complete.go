package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/runner/complete"
	"tableflip.dev/notes/pkg/runner/remove"
)

func addComplete(topLevel *cobra.Command) {
	addSetCompleted(topLevel, true, &cobra.Command{
		Use:               "complete <id>...",
		Aliases:           []string{"completed", "done"},
		Short:             "Complete tasks and silence their reminders",
		ValidArgsFunction: completeNoteIDs(note.CategoryTasks),
		Example: `
notes complete 12
notes complete 12 14,15
`,
	})
	addSetCompleted(topLevel, false, &cobra.Command{
		Use:               "reopen <id>...",
		Aliases:           []string{"uncomplete", "undo"},
		Short:             "Open completed tasks again and restore their future reminders",
		ValidArgsFunction: completeNoteIDs(note.CategoryCompleted),
		Example: `
notes reopen 12
`,
	})
}

func addSetCompleted(topLevel *cobra.Command, completed bool, cmd *cobra.Command) {
	var ids []int64

	cmd.Args = func(_ *cobra.Command, args []string) error {
		var err error
		ids, err = options.ParseIDs(args)
		return err
	}
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		return run(cmd.Context(), func(s *session) error {
			c := complete.Complete{
				Service:   s.Service,
				IDs:       ids,
				Completed: completed,
				JSON:      oo.JSON,
			}
			return c.Do(cmd.Context())
		})
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addRemove(topLevel *cobra.Command) {
	var ids []int64

	cmd := &cobra.Command{
		Use:               "delete <id>...",
		Aliases:           []string{"rm", "remove"},
		Short:             "Delete notes with their media and reminders",
		ValidArgsFunction: completeNoteIDs(note.CategoryAll),
		Example: `
notes delete 12
notes rm 12 13
`,
		Args: func(_ *cobra.Command, args []string) error {
			var err error
			ids, err = options.ParseIDs(args)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), func(s *session) error {
				r := remove.Remove{
					Service: s.Service,
					IDs:     ids,
				}
				return r.Do(cmd.Context())
			})
		},
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
