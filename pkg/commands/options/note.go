package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/timeutil"
)

// NoteOptions are the flags used to write a note.
type NoteOptions struct {
	Body      string
	Due       string
	Reminders []string
	Attach    []string
}

func AddNoteArgs(cmd *cobra.Command, o *NoteOptions) {
	cmd.Flags().StringVarP(&o.Body, "body", "b", "",
		"Body text of the note.")
	cmd.Flags().StringSliceVarP(&o.Attach, "attach", "a", nil,
		"Local file to copy and attach. Can be repeated.")
}

func AddReminderArgs(cmd *cobra.Command, o *NoteOptions) {
	cmd.Flags().StringArrayVarP(&o.Reminders, "remind", "r", nil,
		`Remind at a time, example: --remind="+2h", --remind="2026-03-01 09:00". Can be repeated.`)
	cmd.Flags().StringVar(&o.Due, "due", "",
		`Due time of a task without reminders, example: --due="+1d".`)
}

// Draft builds the draft of a new note of the given kind.
func (o *NoteOptions) Draft(kind note.Kind, title string, now time.Time) (app.Draft, error) {
	d := app.Draft{
		Kind:  kind,
		Title: title,
		Body:  o.Body,
	}
	if kind != note.KindTask {
		return d, nil
	}
	var err error
	if d.Reminders, err = timeutil.ParseWhens(o.Reminders, now); err != nil {
		return d, err
	}
	if o.Due != "" {
		due, err := timeutil.ParseWhen(o.Due, now)
		if err != nil {
			return d, err
		}
		d.Due = &due
	}
	return d, nil
}
