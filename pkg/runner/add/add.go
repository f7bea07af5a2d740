// Package add provides the runner logic for creating notes and tasks.
package add

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/printers"
)

// Add saves a new note.
type Add struct {
	Service *app.Service
	Draft   app.Draft
	// Import lists local files copied into the media store and attached.
	Import []string

	ShowID bool
	JSON   bool
	Out    io.Writer
}

// Do imports any files, saves the note and prints it.
func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not add, no service")
	}
	draft := n.Draft
	draft.ID = 0
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

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if n.JSON {
		return pp.JSON(d)
	}
	pp.Detail(d)
	return nil
}
