// Package get provides the runner logic for listing notes.
package get

import (
	"context"
	"errors"
	"io"
	"strings"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/printers"
)

// Get lists the notes of a category, newest first.
type Get struct {
	Service  *app.Service
	Category note.Category

	ShowID bool
	JSON   bool
	Out    io.Writer
}

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no service")
	}
	category := n.Category
	if category == "" {
		category = note.CategoryAll
	}

	notes, err := n.Service.List(ctx, category)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if n.JSON {
		if notes == nil {
			notes = []*note.Note{}
		}
		return pp.JSON(notes)
	}
	pp.NewLine()
	pp.TitleWithCount(title(category), len(notes))
	pp.Notes(notes...)
	return nil
}

func title(c note.Category) string {
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}
