package commands

import (
	"errors"
	"strings"
	"time"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a note or a task",
		Example: `
notes add note groceries --body "milk, eggs"
notes add task call the bank --remind +2h
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addNote(cmd)
	addTask(cmd)

	topLevel.AddCommand(cmd)
}

func addNote(parent *cobra.Command) {
	addKind(parent, note.KindNote, &cobra.Command{
		Use:   "note",
		Short: "Add a note",
		Example: `
notes add note this is a note
notes add note receipt --attach ~/Downloads/receipt.jpg
`,
	})
}

func addTask(parent *cobra.Command) {
	addKind(parent, note.KindTask, &cobra.Command{
		Use:     "task",
		Aliases: []string{"todo"},
		Short:   "Add a task",
		Example: `
notes add task do this task
notes add task water the plants --remind 18:00 --remind +1d
notes add task file taxes --due 2026-04-15
`,
	})
}

func addKind(parent *cobra.Command, kind note.Kind, cmd *cobra.Command) {
	no := &options.NoteOptions{}
	io := &options.IDOptions{}
	var title string

	cmd.Args = func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errors.New("requires a title")
		}
		title = strings.Join(args, " ")
		return nil
	}
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		draft, err := no.Draft(kind, title, time.Now())
		if err != nil {
			return oo.HandleError(err)
		}
		return run(cmd.Context(), func(s *session) error {
			a := add.Add{
				Service: s.Service,
				Draft:   draft,
				Import:  no.Attach,
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
			}
			return a.Do(cmd.Context())
		})
	}

	options.AddNoteArgs(cmd, no)
	if kind == note.KindTask {
		options.AddReminderArgs(cmd, no)
	}
	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}
