// Package remove provides the runner logic for removing notes.
package remove

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Deleter is the part of the service used to remove notes.
type Deleter interface {
	Delete(ctx context.Context, id int64) error
}

// Remove deletes notes with their reminders and media.
type Remove struct {
	Service Deleter
	IDs     []int64
	Out     io.Writer
}

func (n *Remove) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not delete, no service")
	}
	if len(n.IDs) == 0 {
		return errors.New("requires a note id")
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	f := color.New(color.Faint)
	for _, id := range n.IDs {
		if err := n.Service.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete %d: %w", id, err)
		}
		_, _ = f.Fprintf(out, "deleted %d\n", id)
	}
	return nil
}
