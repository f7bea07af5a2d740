// Package info provides the runner logic for describing where notes are kept.
package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/store"
)

// Pinger reports whether the daemon answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Info prints the configuration in use, how many notes each category holds
// and whether the daemon is reachable.
type Info struct {
	Config  store.Config
	Service *app.Service
	Daemon  Pinger
	Out     io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}
	if n.Config == nil {
		var err error
		if n.Config, err = store.LoadConfig(); err != nil {
			return err
		}
	}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	if override := os.Getenv("NOTES_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(out, "NOTES_CONFIG_PATH found on env, using", override)
	} else {
		_, _ = faint.Fprintln(out, "NOTES_CONFIG_PATH env var not set")
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("database"), n.Config.DatabasePath())
	tbl.AddRow(bold.Sprint("media"), n.Config.MediaPath())
	tbl.AddRow(bold.Sprint("daemon"), n.Config.DaemonAddr())
	tbl.AddRow(bold.Sprint("exact alarms"), n.Config.ExactAlarms())
	tbl.AddRow(bold.Sprint("inexact window"), n.Config.InexactWindow())
	tbl.AddRow(bold.Sprint("notifications"), n.Config.NotificationsEnabled())
	_, _ = fmt.Fprintln(out, tbl)

	if n.Service != nil {
		counts := uitable.New()
		counts.Separator = "  "
		for _, c := range note.Categories() {
			notes, err := n.Service.List(ctx, c)
			if err != nil {
				return err
			}
			counts.AddRow(bold.Sprint(c), len(notes))
		}
		_, _ = fmt.Fprintln(out, "")
		_, _ = fmt.Fprintln(out, counts)
	}

	if n.Daemon != nil {
		_, _ = fmt.Fprintln(out, "")
		if err := n.Daemon.Ping(ctx); err != nil {
			_, _ = color.New(color.FgRed).Fprintf(out, "daemon unreachable: %v\n", err)
		} else {
			_, _ = color.New(color.FgGreen).Fprintln(out, "daemon is running")
		}
	}
	return nil
}
