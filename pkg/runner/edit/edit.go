// Package edit provides the runner logic for changing an existing note.
package edit

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/printers"
)

// Edit changes the fields that are set and saves the note again. Reminders
// and media are replaced as a whole.
type Edit struct {
	Service *app.Service
	ID      int64

	Title *string
	Body  *string
	Kind  *note.Kind
	// Reminders replaces every reminder when set. An empty list removes them.
	Reminders *[]time.Time
	// AddReminders are kept alongside the existing reminders.
	AddReminders []time.Time
	// Import lists local files copied into the media store and attached.
	Import []string
	// Detach lists media identifiers to drop.
	Detach []int64

	JSON bool
	Out  io.Writer
}

var ErrNothingToEdit = errors.New("edit: nothing to change")

func (n *Edit) changed() bool {
	return n.Title != nil || n.Body != nil || n.Kind != nil || n.Reminders != nil ||
		len(n.AddReminders) > 0 || len(n.Import) > 0 || len(n.Detach) > 0
}

func (n *Edit) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not edit, no service")
	}
	if !n.changed() {
		return ErrNothingToEdit
	}

	current, err := n.Service.Get(ctx, n.ID)
	if err != nil {
		return err
	}
	draft := app.DraftFrom(current)
	if n.Title != nil {
		draft.Title = *n.Title
	}
	if n.Body != nil {
		draft.Body = *n.Body
	}
	if n.Kind != nil {
		draft.Kind = *n.Kind
	}
	if n.Reminders != nil {
		draft.Reminders = append([]time.Time(nil), *n.Reminders...)
		draft.Due = nil
	}
	draft.Reminders = append(draft.Reminders, n.AddReminders...)

	if len(n.Detach) > 0 {
		drop := make(map[int64]bool, len(n.Detach))
		for _, id := range n.Detach {
			drop[id] = true
		}
		draft.Media = draft.Media[:0]
		for _, m := range current.Media {
			if !drop[m.ID] {
				draft.Media = append(draft.Media, app.MediaDraft{Kind: m.Kind, URI: m.URI, Description: m.Description})
			}
		}
	}
	for _, path := range n.Import {
		uri, err := n.Service.ImportMedia(path)
		if err != nil {
			return err
		}
		draft.Media = append(draft.Media, app.MediaDraft{Kind: note.GuessMediaKind(path), URI: uri})
	}

	d, err := n.Service.Save(ctx, draft)
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
