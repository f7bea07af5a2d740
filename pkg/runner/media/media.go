// Package media provides the runner logic for attaching and detaching media.
package media

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/printers"
)

// Attach adds one attachment to a note. A Source naming an existing local file
// is copied into the media store; anything else is stored as a URI.
type Attach struct {
	Service     *app.Service
	NoteID      int64
	Source      string
	Kind        note.MediaKind
	Description string

	JSON bool
	Out  io.Writer
}

func (n *Attach) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not attach, no service")
	}
	src := strings.TrimSpace(n.Source)
	if src == "" {
		return errors.New("requires a file or uri")
	}

	uri := src
	kind := n.Kind
	if kind == "" {
		kind = note.GuessMediaKind(src)
	}
	if fi, err := os.Stat(src); err == nil && fi.Mode().IsRegular() {
		uri, err = n.Service.ImportMedia(src)
		if errors.Is(err, app.ErrNoMediaStore) {
			uri, err = fileURI(src)
		}
		if err != nil {
			return err
		}
	}

	if _, err := n.Service.AttachMedia(ctx, n.NoteID, app.MediaDraft{Kind: kind, URI: uri, Description: n.Description}); err != nil {
		return err
	}
	d, err := n.Service.Get(ctx, n.NoteID)
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

func fileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Detach removes attachments by their identifiers.
type Detach struct {
	Service  *app.Service
	MediaIDs []int64
}

func (n *Detach) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not detach, no service")
	}
	if len(n.MediaIDs) == 0 {
		return errors.New("requires a media id")
	}
	for _, id := range n.MediaIDs {
		if err := n.Service.DetachMedia(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
