package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
)

// Agenda prints the overdue tasks, then the upcoming reminders day by day.
func (pp *PrettyPrint) Agenda(a app.AgendaResult) {
	p := color.New()
	b := color.New(color.Bold)
	s := color.New(color.Underline)
	bs := color.New(color.Underline, color.Bold)
	f := color.New(color.Faint)
	now := pp.now()

	if len(a.Overdue) > 0 {
		pp.TitleWithCount("Overdue", len(a.Overdue))
		pp.Notes(a.Overdue...)
	}

	pp.Title(fmt.Sprintf("%s to %s", a.Since.Local().Format("Jan 2 15:04"), a.Until.Local().Format("Jan 2 15:04")))
	if len(a.Days) == 0 {
		_, _ = f.Fprint(pp.out(), " nothing scheduled\n\n")
		return
	}

	for _, day := range a.Days {
		printer := p
		if day.Day.Weekday() == time.Sunday {
			printer = s
		}
		if note.SameDay(day.Day, now) {
			printer = b
			if day.Day.Weekday() == time.Sunday {
				printer = bs
			}
		}
		_, _ = printer.Fprintf(pp.out(), "%2d %s\n", day.Day.Day(), day.Day.Format("Mon Jan"))
		for _, item := range day.Items {
			if pp.ShowID {
				pp.id(item.Note.ID)
			}
			_, _ = f.Fprintf(pp.out(), "  %s ", item.Reminder.FireAt.Local().Format("15:04"))
			_, _ = p.Fprintf(pp.out(), "%s %s\n", Symbol(item.Note), item.Note.Title)
		}
	}
	_, _ = fmt.Fprintln(pp.out(), "")
}

const width = len("11 12 13 14 15 16 17") // an example week

// Calendar prints the month of then with the days in a.Days highlighted.
func (pp *PrettyPrint) Calendar(then time.Time, a app.AgendaResult) {
	count := make([]int, DaysIn(then))
	for _, day := range a.Days {
		if day.Day.Year() == then.Year() && day.Day.Month() == then.Month() {
			count[day.Day.Day()-1] += len(day.Items)
		}
	}
	pp.PrintMonthCount(then, count)
}

func (pp *PrettyPrint) PrintMonthCount(then time.Time, count []int) {
	d := StartDay(then)
	out := pp.out()

	tf := color.New(color.FgWhite, color.Italic)

	m := then.Month().String()
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(out, "%s%s%s\n", strings.Repeat(" ", mid), m, strings.Repeat(" ", width-mid-len(m)))

	// Pad out the start of the month.
	for i := time.Sunday; i < d; i++ {
		_, _ = fmt.Fprint(out, "   ")
	}

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)

	for i := 0; i < DaysIn(then); i++ {
		if i < len(count) && count[i] > 0 {
			_, _ = l2.Fprintf(out, "%2d ", i+1)
		} else {
			_, _ = l1.Fprintf(out, "%2d ", i+1)
		}

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(out, "\n")
		}
	}
	_, _ = fmt.Fprint(out, "\n\n")
}

func NextMonth(then time.Time) time.Time {
	return time.Date(then.Year(), then.Month()+1, 1, 1, 0, 0, 0, then.Location())
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, then.Location()).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, then.Location()).Weekday()
}
