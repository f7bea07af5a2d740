// Package check provides the runner logic for comparing reminders with the
// alarms registered in the daemon.
package check

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/notes/pkg/printers"
	"tableflip.dev/notes/pkg/reminders"
)

// ErrInconsistent is returned when an audit finds drift and Repair is off.
var ErrInconsistent = errors.New("check: reminders and alarms disagree")

// Check audits the reminders, and repairs any drift when Repair is set.
type Check struct {
	Coordinator *reminders.Coordinator
	Repair      bool
	// Now defaults to time.Now.
	Now func() time.Time

	JSON bool
	Out  io.Writer
}

func (n *Check) Do(ctx context.Context) error {
	if n.Coordinator == nil {
		return errors.New("can not check, no coordinator")
	}
	now := time.Now()
	if n.Now != nil {
		now = n.Now()
	}

	var (
		report *reminders.Report
		err    error
	)
	if n.Repair {
		report, err = n.Coordinator.Resync(ctx, now)
	} else {
		report, err = n.Coordinator.Audit(ctx, now)
	}
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{Out: n.Out, Now: func() time.Time { return now }}
	if n.JSON {
		if err := pp.JSON(report); err != nil {
			return err
		}
	} else {
		pp.Report(report)
	}
	if !n.Repair && !report.Consistent() {
		return ErrInconsistent
	}
	return nil
}
