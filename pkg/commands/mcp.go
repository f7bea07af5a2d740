package commands

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	var (
		transport string
		host      string
		port      int
		path      string
		tlsCert   string
		tlsKey    string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that exposes notes, tasks, media and the agenda as
tools and resources. Reminders set through MCP are registered with the
daemon like those set on the command line.`,
		Example: `
notes mcp
notes mcp --transport stdio
notes mcp --http-port 0
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			t, err := mcp.ParseTransport(transport)
			if err != nil {
				return err
			}
			if port < 0 || port > 65535 {
				return fmt.Errorf("invalid http-port %d", port)
			}
			host = strings.TrimSpace(host)
			if host == "" {
				host = "127.0.0.1"
			}

			runner := mcp.Runner{
				Name:             "notes",
				Version:          version,
				Transport:        t,
				HTTPListenAddr:   net.JoinHostPort(host, strconv.Itoa(port)),
				HTTPEndpointPath: mcp.EndpointPath(path),
				HTTPServerCert:   strings.TrimSpace(tlsCert),
				HTTPServerKey:    strings.TrimSpace(tlsKey),
			}
			runner.OnHTTPListening = func(a net.Addr) {
				tls := runner.HTTPServerCert != "" && runner.HTTPServerKey != ""
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "MCP HTTP server listening on %s\n",
					mcp.ListenURL(a, host, runner.HTTPEndpointPath, tls))
			}

			return run(cmd.Context(), func(s *session) error {
				runner.App = s.Service
				return runner.Do(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportHTTP), "transport to use: http or stdio")
	cmd.Flags().StringVar(&host, "http-host", "127.0.0.1", "host/interface for HTTP transport")
	cmd.Flags().IntVar(&port, "http-port", 8080, "port for HTTP transport (use 0 for random)")
	cmd.Flags().StringVar(&path, "http-path", "/mcp", "HTTP endpoint path")
	cmd.Flags().StringVar(&tlsCert, "http-tls-cert", "", "TLS certificate file for HTTPS")
	cmd.Flags().StringVar(&tlsKey, "http-tls-key", "", "TLS private key file for HTTPS")

	topLevel.AddCommand(cmd)
}
