// Package show provides the runner logic for printing one note in full.
package show

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/printers"
)

// Show prints a note with its media and reminders.
type Show struct {
	Service *app.Service
	ID      int64

	JSON bool
	Out  io.Writer
}

func (n *Show) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not show, no service")
	}
	d, err := n.Service.Get(ctx, n.ID)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	if n.JSON {
		return pp.JSON(d)
	}
	pp.Detail(d)
	return nil
}
