package commands

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/note"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish]",
		Short:     "Generates shell completion scripts",
		ValidArgs: []string{"bash", "zsh", "fish"},
		Args:      cobra.MaximumNArgs(1),
		Long: `To load completion run

. <(notes completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(notes completion)
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := "bash"
			if len(args) > 0 {
				shell = args[0]
			}
			out := cmd.OutOrStdout()
			switch shell {
			case "zsh":
				return topLevel.GenZshCompletion(out)
			case "fish":
				return topLevel.GenFishCompletion(out, true)
			default:
				return topLevel.GenBashCompletion(out)
			}
		},
	}

	topLevel.AddCommand(cmd)
}

// noteCompletions offers the ids of stored notes whose id starts with
// toComplete, described by their titles.
func noteCompletions(toComplete string, category note.Category) []string {
	ctx := context.Background()
	s, err := open(ctx)
	if err != nil {
		return nil
	}
	defer s.Close()
	notes, err := s.Service.List(ctx, category)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		id := strconv.FormatInt(n.ID, 10)
		if strings.HasPrefix(id, toComplete) {
			out = append(out, id+"\t"+n.Title)
		}
	}
	return out
}

func completeNoteIDs(category note.Category) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return noteCompletions(toComplete, category), cobra.ShellCompDirectiveNoFileComp
	}
}
