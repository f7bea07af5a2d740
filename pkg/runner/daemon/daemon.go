// Package daemon runs the long-lived process that owns the alarm registry.
//
// The daemon serves the alarm API used by the CLI, replays registrations from
// the database when it starts, and resynchronizes whenever another process
// writes the database.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/notes/pkg/alarm"
	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/notify"
	"tableflip.dev/notes/pkg/runner/mcp"
	"tableflip.dev/notes/pkg/store"
)

// Daemon wires the registry, the database and the HTTP surface together.
type Daemon struct {
	Config  store.Config
	Log     logrus.FieldLogger
	Version string

	// ListenAddr overrides Config.DaemonAddr.
	ListenAddr string
	// MCP also serves the MCP endpoint at /mcp.
	MCP bool
	// WatchDelay coalesces database writes. Defaults to store.DefaultWatchDelay.
	WatchDelay time.Duration
	// Console receives notifications. Defaults to stdout.
	Console io.Writer
	// Clock defaults to alarm.RealClock.
	Clock alarm.Clock

	OnListening func(net.Addr)
}

func (d *Daemon) logger() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger()
	}
	return d.Log
}

func (d *Daemon) clock() alarm.Clock {
	if d.Clock == nil {
		return alarm.RealClock{}
	}
	return d.Clock
}

// Do runs until ctx is cancelled or a component fails.
func (d *Daemon) Do(ctx context.Context) error {
	if d.Config == nil {
		var err error
		if d.Config, err = store.LoadConfig(); err != nil {
			return err
		}
	}
	log := d.logger()
	cfg := d.Config

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registry := alarm.NewRegistry(
		alarm.WithClock(d.clock()),
		alarm.WithLogger(log),
		alarm.WithMetrics(alarm.NewMetrics(promReg)),
		alarm.WithExactAllowed(cfg.ExactAlarms()),
		alarm.WithInexactWindow(cfg.InexactWindow()),
		alarm.WithPresenter(notify.Gate{
			Next:    notify.Multi(&notify.Console{Out: d.Console}, notify.Log{Log: log}),
			Enabled: cfg.NotificationsEnabled,
			Log:     log,
		}),
	)
	defer registry.Close()

	svc, db, err := app.Setup(ctx, cfg, registry, log)
	if err != nil {
		return err
	}
	defer db.Close()

	router := d.Router(svc, registry, promReg)

	addr := d.ListenAddr
	if addr == "" {
		addr = cfg.DaemonAddr()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("daemon: listen on %s: %w", addr, err)
	}
	log.WithFields(logrus.Fields{"addr": ln.Addr().String(), "db": db.Path()}).Info("daemon listening")
	if d.OnListening != nil {
		d.OnListening(ln.Addr())
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		n, err := svc.Reminders.RecoverAfterRestart(ctx, d.clock().Now())
		if err != nil && ctx.Err() == nil {
			log.WithError(err).Error("recovering reminders after restart")
		}
		log.WithField("registered", n).Info("reminders recovered")
		return nil
	})
	g.Go(func() error {
		return d.watch(ctx, db, svc)
	})

	return g.Wait()
}

// Router returns the HTTP surface of the daemon.
func (d *Daemon) Router(svc *app.Service, registry *alarm.Registry, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	h := &alarm.Handler{Alarms: registry, Log: d.logger()}
	h.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	if d.MCP {
		r.Handle("/mcp", mcp.Handler(svc, "notes", d.Version))
	}
	return r
}

// watch resynchronizes the registry whenever the database changes on disk.
func (d *Daemon) watch(ctx context.Context, db *store.DB, svc *app.Service) error {
	delay := d.WatchDelay
	if delay <= 0 {
		delay = store.DefaultWatchDelay
	}
	log := d.logger()
	events, err := db.Watch(ctx, delay)
	if err != nil {
		// The CLI still registers its own alarms; only changes made while the
		// daemon was unreachable go unnoticed until the next restart.
		log.WithError(err).Warn("not watching the database")
		return nil
	}
	for ev := range events {
		report, err := svc.Reminders.Resync(ctx, d.clock().Now())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.WithError(err).Warn("resync after database change")
			continue
		}
		if !report.Consistent() {
			log.WithFields(logrus.Fields{
				"missing":  len(report.Missing),
				"orphaned": len(report.Orphaned),
				"event":    ev.Type,
			}).Info("resynced alarms with database")
		}
	}
	return nil
}
