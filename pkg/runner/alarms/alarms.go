// Package alarms provides the runner logic for listing pending alarms.
package alarms

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/notes/pkg/alarm"
	"tableflip.dev/notes/pkg/printers"
)

// Alarms prints the registrations held by the daemon.
type Alarms struct {
	Lister alarm.Lister

	JSON bool
	Out  io.Writer
}

func (n *Alarms) Do(ctx context.Context) error {
	if n.Lister == nil {
		return errors.New("can not list alarms, no daemon client")
	}
	pending, err := n.Lister.Pending(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	if n.JSON {
		if pending == nil {
			pending = []alarm.Alarm{}
		}
		return pp.JSON(pending)
	}
	pp.TitleWithCount("Alarms", len(pending))
	pp.Alarms(pending)
	return nil
}
