package commands

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

func addUpgrade(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade notes cli.",
		Example: `
notes upgrade
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ex := exec.CommandContext(cmd.Context(), "go", "install", "tableflip.dev/notes/cmd/notes@latest")
			ex.Stdout = cmd.OutOrStdout()
			ex.Stderr = os.Stderr
			return ex.Run()
		},
	}

	topLevel.AddCommand(cmd)
}
