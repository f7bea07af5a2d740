package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Where notes are stored and whether the daemon is running.",
		Example: `
notes info
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), func(s *session) error {
				i := info.Info{
					Config:  s.Config,
					Service: s.Service,
					Daemon:  s.Daemon,
				}
				return i.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}
