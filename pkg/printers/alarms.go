package printers

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/notes/pkg/alarm"
	"tableflip.dev/notes/pkg/reminders"
	"tableflip.dev/notes/pkg/timeutil"
)

// Alarms prints the registrations held by the daemon.
func (pp *PrettyPrint) Alarms(alarms []alarm.Alarm) {
	if len(alarms) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprint(pp.out(), " no pending alarms\n\n")
		return
	}
	f := color.New(color.Faint)
	now := pp.now()

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 50
	tbl.AddRow(f.Sprint("ID"), f.Sprint("AT"), f.Sprint("DELIVER"), f.Sprint("PRECISION"), f.Sprint("TITLE"))
	for _, a := range alarms {
		deliver := a.DeliverAt
		if deliver.IsZero() {
			deliver = a.At
		}
		tbl.AddRow(a.ID, localTime(a.At), timeutil.Relative(deliver, now), a.Precision, a.Title)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	_, _ = fmt.Fprintln(pp.out(), "")
}

// Report prints the outcome of comparing reminder rows with registrations.
func (pp *PrettyPrint) Report(r *reminders.Report) {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	f := color.New(color.Faint)

	_, _ = f.Fprintf(pp.out(), "expected %d, registered %d\n", r.Expected, r.Registered)
	if r.Consistent() {
		_, _ = ok.Fprintln(pp.out(), "reminders and alarms agree")
		return
	}
	if len(r.Missing) > 0 {
		_, _ = bad.Fprintf(pp.out(), "%d missing\n", len(r.Missing))
		pp.Reminders(r.Missing...)
	}
	if len(r.Orphaned) > 0 {
		_, _ = bad.Fprintf(pp.out(), "%d orphaned\n", len(r.Orphaned))
		pp.Alarms(r.Orphaned)
	}
}
