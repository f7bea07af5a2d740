// Package complete provides the runner logic for completing and reopening
// tasks.
package complete

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/printers"
)

// Complete marks tasks completed, or open again when Completed is false.
type Complete struct {
	Service   *app.Service
	IDs       []int64
	Completed bool

	JSON bool
	Out  io.Writer
}

// Do updates every task and then lists the open tasks.
func (n *Complete) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not complete, no service")
	}
	if len(n.IDs) == 0 {
		return errors.New("requires a task id")
	}

	changed := make([]*note.Note, 0, len(n.IDs))
	for _, id := range n.IDs {
		t, err := n.Service.SetCompleted(ctx, id, n.Completed)
		if err != nil {
			return err
		}
		changed = append(changed, t)
	}

	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	if n.JSON {
		return pp.JSON(changed)
	}
	pp.NewLine()
	pp.Notes(changed...)

	open, err := n.Service.List(ctx, note.CategoryTasks)
	if err != nil {
		return err
	}
	pp.TitleWithCount("Tasks", len(open))
	pp.Notes(open...)
	return nil
}
