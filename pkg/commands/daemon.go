package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/logging"
	"tableflip.dev/notes/pkg/runner/daemon"
	"tableflip.dev/notes/pkg/store"
)

func addDaemon(topLevel *cobra.Command) {
	var (
		addr      string
		serveMCP  bool
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the process that fires reminders",
		Long: `The daemon holds an alarm for every future reminder of an open task and shows
a notification when one fires. It re-registers every reminder from the
database when it starts and picks up changes made while it could not be
reached. Prometheus metrics are served at /metrics.`,
		Example: `
notes daemon
notes daemon --addr 127.0.0.1:7878 --mcp
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := store.LoadConfig()
			if err != nil {
				return err
			}
			if logLevel == "" {
				logLevel = cfg.LogLevel()
			}
			if logFormat == "" {
				logFormat = cfg.LogFormat()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d := daemon.Daemon{
				Config:     cfg,
				Log:        logging.New(logLevel, logFormat),
				Version:    version,
				ListenAddr: addr,
				MCP:        serveMCP,
				Console:    cmd.OutOrStdout(),
			}
			return d.Do(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "",
		"Address to listen on. Defaults to the configured daemon address.")
	cmd.Flags().BoolVar(&serveMCP, "mcp", false,
		"Also serve the MCP endpoint at /mcp.")
	cmd.Flags().StringVar(&logLevel, "log-level", "",
		"Log level. Defaults to the configured level.")
	cmd.Flags().StringVar(&logFormat, "log-format", "",
		"Log format, text or json. Defaults to the configured format.")

	topLevel.AddCommand(cmd)
}
