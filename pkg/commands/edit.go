package commands

import (
	"errors"
	"time"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/runner/edit"
	"tableflip.dev/notes/pkg/timeutil"
)

func addEdit(topLevel *cobra.Command) {
	var (
		id             int64
		title          string
		body           string
		kind           string
		remind         []string
		addRemind      []string
		clearReminders bool
		attach         []string
		detach         []string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a note",
		Example: `
notes edit 12 --title "call the bank before noon"
notes edit 12 --remind 11:30 --remind 11:55
notes edit 12 --add-remind +1d
notes edit 12 --clear-reminders
notes edit 12 --kind task
notes edit 12 --attach ./photo.jpg --detach 4
`,
		ValidArgsFunction: completeNoteIDs(note.CategoryAll),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires a note id")
			}
			var err error
			id, err = options.ParseID(args[0])
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			now := time.Now()
			flags := cmd.Flags()

			e := edit.Edit{
				ID:     id,
				Import: attach,
				JSON:   oo.JSON,
			}
			if flags.Changed("title") {
				e.Title = &title
			}
			if flags.Changed("body") {
				e.Body = &body
			}
			if flags.Changed("kind") {
				k, err := note.ParseKind(kind)
				if err != nil {
					return oo.HandleError(err)
				}
				e.Kind = &k
			}
			if flags.Changed("remind") || clearReminders {
				times, err := timeutil.ParseWhens(remind, now)
				if err != nil {
					return oo.HandleError(err)
				}
				e.Reminders = &times
			}
			var err error
			if e.AddReminders, err = timeutil.ParseWhens(addRemind, now); err != nil {
				return oo.HandleError(err)
			}
			if len(detach) > 0 {
				if e.Detach, err = options.ParseIDs(detach); err != nil {
					return oo.HandleError(err)
				}
			}

			return run(cmd.Context(), func(s *session) error {
				e.Service = s.Service
				return e.Do(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title.")
	cmd.Flags().StringVarP(&body, "body", "b", "", "New body.")
	cmd.Flags().StringVar(&kind, "kind", "", "Turn the note into a note or a task.")
	cmd.Flags().StringArrayVarP(&remind, "remind", "r", nil,
		"Replace every reminder. Can be repeated.")
	cmd.Flags().StringArrayVar(&addRemind, "add-remind", nil,
		"Add a reminder, keeping the existing ones. Can be repeated.")
	cmd.Flags().BoolVar(&clearReminders, "clear-reminders", false,
		"Remove every reminder.")
	cmd.Flags().StringSliceVarP(&attach, "attach", "a", nil,
		"Local file to copy and attach. Can be repeated.")
	cmd.Flags().StringSliceVar(&detach, "detach", nil,
		"Media id to remove. Can be repeated.")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(note.KindNote), string(note.KindTask)}, cobra.ShellCompDirectiveNoFileComp
	})

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
