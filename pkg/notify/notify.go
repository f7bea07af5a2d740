// Package notify presents fired reminders to the user.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTitle = "Pending task"
	DefaultBody  = "You have a task coming due"
)

// Notification is what a fired alarm asks to be shown.
type Notification struct {
	ID    int64
	Title string
	Body  string
	At    time.Time
}

// WithDefaults fills an empty title or body.
func (n Notification) WithDefaults() Notification {
	if strings.TrimSpace(n.Title) == "" {
		n.Title = DefaultTitle
	}
	if strings.TrimSpace(n.Body) == "" {
		n.Body = DefaultBody
	}
	return n
}

// Presenter renders a notification.
type Presenter interface {
	Present(ctx context.Context, n Notification) error
}

// PresenterFunc adapts a function to a Presenter.
type PresenterFunc func(ctx context.Context, n Notification) error

func (f PresenterFunc) Present(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// Console writes one colored line per notification.
type Console struct {
	Out io.Writer

	mu sync.Mutex
}

func (c *Console) Present(_ context.Context, n Notification) error {
	n = n.WithDefaults()
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	bell := color.New(color.FgHiYellow, color.Bold)
	faint := color.New(color.Faint)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := bell.Fprintf(out, "⏰ %s", n.Title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "  %s", n.Body); err != nil {
		return err
	}
	_, err := faint.Fprintf(out, "  [%d %s]\n", n.ID, n.At.Local().Format("2006-01-02 15:04"))
	return err
}

// Log presents notifications as log entries.
type Log struct {
	Log logrus.FieldLogger
}

func (l Log) Present(_ context.Context, n Notification) error {
	n = n.WithDefaults()
	l.Log.WithFields(logrus.Fields{
		"reminder_id": n.ID,
		"fire_at":     n.At.Format(time.RFC3339),
	}).Infof("%s: %s", n.Title, n.Body)
	return nil
}

// Multi presents to every presenter and joins their errors.
func Multi(ps ...Presenter) Presenter {
	return PresenterFunc(func(ctx context.Context, n Notification) error {
		var errs []error
		for _, p := range ps {
			if err := p.Present(ctx, n); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// Gate only forwards to Next while notifications are enabled. A suppressed
// notification is logged and is not an error.
type Gate struct {
	Next    Presenter
	Enabled func() bool
	Log     logrus.FieldLogger
}

func (g Gate) Present(ctx context.Context, n Notification) error {
	if g.Enabled != nil && !g.Enabled() {
		if g.Log != nil {
			g.Log.WithField("reminder_id", n.ID).Info("notifications disabled, not presenting")
		}
		return nil
	}
	return g.Next.Present(ctx, n)
}
