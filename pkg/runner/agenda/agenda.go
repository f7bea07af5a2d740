// Package agenda provides the runner logic for the upcoming reminders view.
package agenda

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/printers"
	"tableflip.dev/notes/pkg/timeutil"
)

// Agenda lists the reminders of open tasks within Window of now.
type Agenda struct {
	Service *app.Service
	// Window such as "1d" or "2w". Empty means timeutil.DefaultWindow.
	Window string
	// Calendar also prints a month grid with the busy days highlighted.
	Calendar bool
	// Now defaults to time.Now.
	Now func() time.Time

	ShowID bool
	JSON   bool
	Out    io.Writer
}

func (n *Agenda) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not show agenda, no service")
	}
	d, _, err := timeutil.ParseWindow(n.Window)
	if err != nil {
		return err
	}
	now := time.Now()
	if n.Now != nil {
		now = n.Now()
	}

	result, err := n.Service.Agenda(ctx, now, now.Add(d))
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out, Now: func() time.Time { return now }}
	if n.JSON {
		return pp.JSON(result)
	}
	pp.NewLine()
	if n.Calendar {
		month := now.Local()
		for !month.After(result.Until) {
			pp.Calendar(month, result)
			month = printers.NextMonth(month)
		}
	}
	pp.Agenda(result)
	return nil
}
