package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/timeutil"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
	// Now defaults to time.Now.
	Now func() time.Time
}

const idWidth = 6

var spacing = strings.Repeat(" ", idWidth+2)

const (
	symbolNote      = "–"
	symbolTask      = "•"
	symbolCompleted = "×"
)

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now == nil {
		return time.Now()
	}
	return pp.Now()
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

// JSON writes v indented.
func (pp *PrettyPrint) JSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(pp.out(), string(b))
	return err
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " note")
	default:
		_, _ = c.Fprintln(pp.out(), " notes")
	}
}

// Symbol is the bullet a note is listed with.
func Symbol(n *note.Note) string {
	switch {
	case !n.IsTask():
		return symbolNote
	case n.Completed:
		return symbolCompleted
	default:
		return symbolTask
	}
}

func (pp *PrettyPrint) id(id int64) {
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	s := strconv.FormatInt(id, 10)
	pad := len(spacing) - len(s)
	if pad < 1 {
		pad = 1
	}
	_, _ = y.Fprint(pp.out(), s+strings.Repeat(" ", pad))
}

// Notes prints one line per note.
func (pp *PrettyPrint) Notes(notes ...*note.Note) {
	if len(notes) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Fprint(pp.out(), spacing)
		}
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	t := color.New()
	done := color.New(color.Faint, color.CrossedOut)
	due := color.New(color.Faint)
	late := color.New(color.FgRed)
	now := pp.now()

	for _, n := range notes {
		if pp.ShowID {
			pp.id(n.ID)
		}
		line := t
		if n.IsTask() && n.Completed {
			line = done
		}
		_, _ = line.Fprintf(pp.out(), "%s %s", Symbol(n), n.Title)
		if n.IsTask() && n.Due != nil {
			c := due
			if n.IsActiveTask() && !n.Due.After(now) {
				c = late
			}
			_, _ = c.Fprintf(pp.out(), "  (%s)", timeutil.Relative(*n.Due, now))
		}
		_, _ = fmt.Fprintln(pp.out(), "")
	}
	_, _ = fmt.Fprintln(pp.out(), "")
}

// Detail prints a note with its media and reminders.
func (pp *PrettyPrint) Detail(d *app.Detail) {
	b := color.New(color.Bold)
	f := color.New(color.Faint)
	n := d.Note
	now := pp.now()

	if pp.ShowID {
		pp.id(n.ID)
	}
	_, _ = b.Fprintf(pp.out(), "%s %s\n", Symbol(n), n.Title)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(f.Sprint("kind"), string(n.Kind))
	tbl.AddRow(f.Sprint("created"), localTime(n.Created))
	if n.IsTask() {
		if n.Due != nil {
			tbl.AddRow(f.Sprint("due"), fmt.Sprintf("%s (%s)", localTime(*n.Due), timeutil.Relative(*n.Due, now)))
		}
		tbl.AddRow(f.Sprint("completed"), strconv.FormatBool(n.Completed))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)

	if strings.TrimSpace(n.Body) != "" {
		_, _ = fmt.Fprintln(pp.out(), "")
		_, _ = fmt.Fprintln(pp.out(), n.Body)
	}

	if len(d.Media) > 0 {
		_, _ = fmt.Fprintln(pp.out(), "")
		_, _ = b.Fprintln(pp.out(), "Media")
		mt := uitable.New()
		mt.Separator = "  "
		mt.MaxColWidth = 60
		mt.AddRow(f.Sprint("ID"), f.Sprint("KIND"), f.Sprint("URI"), f.Sprint("DESCRIPTION"))
		for _, m := range d.Media {
			mt.AddRow(m.ID, m.Kind, m.URI, m.Description)
		}
		_, _ = fmt.Fprintln(pp.out(), mt)
	}

	if len(d.Reminders) > 0 {
		_, _ = fmt.Fprintln(pp.out(), "")
		_, _ = b.Fprintln(pp.out(), "Reminders")
		pp.Reminders(d.Reminders...)
	}
	_, _ = fmt.Fprintln(pp.out(), "")
}

// Reminders prints a table of reminder rows.
func (pp *PrettyPrint) Reminders(rs ...*note.Reminder) {
	f := color.New(color.Faint)
	now := pp.now()

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(f.Sprint("ID"), f.Sprint("FIRES"), f.Sprint("WHEN"), f.Sprint("ACTIVE"))
	for _, r := range rs {
		tbl.AddRow(r.ID, localTime(r.FireAt), timeutil.Relative(r.FireAt, now), r.Active)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

func localTime(t time.Time) string {
	return t.Local().Format("Mon Jan 2 2006 15:04")
}
