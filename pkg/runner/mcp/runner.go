package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/notes/pkg/app"
)

// Transport selects the mechanism used to expose the MCP server.
type Transport string

const (
	// TransportHTTP serves MCP via the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportStdio serves MCP over stdio.
	TransportStdio Transport = "stdio"
)

// ParseTransport reads a transport name; empty means HTTP.
func ParseTransport(s string) (Transport, error) {
	switch t := Transport(strings.ToLower(strings.TrimSpace(s))); t {
	case "", TransportHTTP:
		return TransportHTTP, nil
	case TransportStdio:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported transport %q (expected http or stdio)", s)
	}
}

// Runner coordinates MCP server startup.
type Runner struct {
	App     *app.Service
	Name    string
	Version string

	Transport        Transport
	HTTPListenAddr   string
	HTTPEndpointPath string
	OnHTTPListening  func(net.Addr)
	HTTPServerCert   string
	HTTPServerKey    string
}

// NewServer builds the MCP server exposing svc.
func NewServer(svc *app.Service, name, version string) *server.MCPServer {
	if name == "" {
		name = "notes"
	}
	if version == "" {
		version = "dev"
	}

	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Create, edit, complete and delete notes and tasks, attach media and read upcoming reminders via MCP."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)

	wrapped := NewService(svc)
	registerResources(srv, wrapped)
	registerTools(srv, wrapped)
	return srv
}

// Handler serves the MCP server for svc over streamable HTTP.
func Handler(svc *app.Service, name, version string) http.Handler {
	return server.NewStreamableHTTPServer(NewServer(svc, name, version))
}

// Do executes the runner.
func (r Runner) Do(ctx context.Context) error {
	if r.App == nil {
		return errors.New("mcp runner requires the notes service")
	}

	srv := NewServer(r.App, r.Name, r.Version)

	switch t := r.Transport; t {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv)
	case TransportStdio:
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", t)
	}
}

// EndpointPath normalizes the path the HTTP transport is mounted at.
func EndpointPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/mcp"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// ListenURL describes where a client reaches a server listening on a. host is
// the host the listener was asked for; unspecified hosts are shown as the
// address actually bound, or loopback.
func ListenURL(a net.Addr, host, path string, tls bool) string {
	scheme := "http"
	if tls {
		scheme = "https"
	}
	tcp, ok := a.(*net.TCPAddr)
	if !ok {
		return fmt.Sprintf("%s://%s%s", scheme, a.String(), path)
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
		if tcp.IP != nil && !tcp.IP.IsUnspecified() {
			host = tcp.IP.String()
		}
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(tcp.Port)), path)
}

func (r Runner) tls() bool {
	return r.HTTPServerCert != "" && r.HTTPServerKey != ""
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	if (r.HTTPServerCert == "") != (r.HTTPServerKey == "") {
		return errors.New("both http tls cert and key must be provided")
	}

	listenAddr := r.HTTPListenAddr
	if listenAddr == "" {
		listenAddr = "127.0.0.1:8080"
	}

	router := mux.NewRouter()
	router.Handle(EndpointPath(r.HTTPEndpointPath), server.NewStreamableHTTPServer(srv))

	httpSrv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("mcp: listen on %s: %w", listenAddr, err)
	}
	if r.OnHTTPListening != nil {
		r.OnHTTPListening(ln.Addr())
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if r.tls() {
			err = httpSrv.ServeTLS(ln, r.HTTPServerCert, r.HTTPServerKey)
		} else {
			err = httpSrv.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
