package commands

import (
	"fmt"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/runner/get"
	"tableflip.dev/notes/pkg/runner/show"
)

func addGet(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	category := note.CategoryAll

	validArgs := make([]string, 0, len(note.Categories()))
	for _, c := range note.Categories() {
		validArgs = append(validArgs, string(c))
	}

	cmd := &cobra.Command{
		Use:     "get [category]",
		Aliases: []string{"list", "ls"},
		Short:   "List notes, newest first",
		Long: fmt.Sprintf("List all notes or one category of them.\n\nCategories: %s",
			strings.Join(validArgs, ", ")),
		Example: `
notes get
notes get tasks --show-id
notes get completed --json
`,
		ValidArgs: validArgs,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("expected at most one category, got %d", len(args))
			}
			if len(args) == 0 {
				return nil
			}
			var err error
			category, err = note.ParseCategory(args[0])
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), func(s *session) error {
				g := get.Get{
					Service:  s.Service,
					Category: category,
					ShowID:   io.ShowID,
					JSON:     oo.JSON,
				}
				return g.Do(cmd.Context())
			})
		},
	}

	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addShow(topLevel *cobra.Command) {
	var id int64

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a note with its media and reminders",
		Example: `
notes show 12
`,
		ValidArgsFunction: completeNoteIDs(note.CategoryAll),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("requires a note id")
			}
			var err error
			id, err = options.ParseID(args[0])
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), func(s *session) error {
				sh := show.Show{
					Service: s.Service,
					ID:      id,
					JSON:    oo.JSON,
				}
				return sh.Do(cmd.Context())
			})
		},
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
