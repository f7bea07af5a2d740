package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/reminders"
	"tableflip.dev/notes/pkg/repository"
	"tableflip.dev/notes/pkg/store"
)

// Service provides the note operations shared by the CLI, the daemon and the
// MCP server. Notes and media are written through Repo, reminders through
// Reminders.
type Service struct {
	Repo      repository.Repository
	Reminders *reminders.Coordinator
	// Media holds copies of imported attachments. Optional.
	Media *store.MediaStore
	Log   logrus.FieldLogger

	locks    reminders.NoteLocks
	validate *validator.Validate
	once     sync.Once
}

var (
	ErrNotConfigured = errors.New("app: no repository configured")
	ErrNotFound      = repository.ErrNotFound
	ErrNoMediaStore  = errors.New("app: no media store configured")
)

// MediaDraft is an attachment as submitted by a caller.
type MediaDraft struct {
	Kind        note.MediaKind `json:"kind,omitempty" validate:"omitempty,oneof=photo video audio file"`
	URI         string         `json:"uri" validate:"required,max=4096"`
	Description string         `json:"description,omitempty" validate:"max=1000"`
}

// Draft is the editable form of a note. ID zero creates a new note.
type Draft struct {
	ID    int64     `json:"id,omitempty" validate:"gte=0"`
	Title string    `json:"title" validate:"max=500"`
	Body  string    `json:"body,omitempty"`
	Kind  note.Kind `json:"kind" validate:"required,oneof=note task"`
	// Due is used for tasks saved without reminders.
	Due       *time.Time   `json:"due,omitempty"`
	Reminders []time.Time  `json:"reminders,omitempty" validate:"max=64"`
	Media     []MediaDraft `json:"media,omitempty" validate:"max=64,dive"`
}

// Detail is a note with everything it owns.
type Detail struct {
	Note      *note.Note       `json:"note"`
	Media     []*note.Media    `json:"media"`
	Reminders []*note.Reminder `json:"reminders"`
}

// DraftFrom turns a stored note back into a Draft so it can be edited and
// saved again.
func DraftFrom(d *Detail) Draft {
	draft := Draft{
		ID:    d.Note.ID,
		Title: d.Note.Title,
		Body:  d.Note.Body,
		Kind:  d.Note.Kind,
		Due:   d.Note.Due,
	}
	for _, r := range d.Reminders {
		draft.Reminders = append(draft.Reminders, r.FireAt)
	}
	for _, m := range d.Media {
		draft.Media = append(draft.Media, MediaDraft{Kind: m.Kind, URI: m.URI, Description: m.Description})
	}
	return draft
}

func (s *Service) ensure() error {
	if s.Repo == nil || s.Reminders == nil {
		return ErrNotConfigured
	}
	return nil
}

func (s *Service) logger() logrus.FieldLogger {
	if s.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return s.Log
}

// Validate checks a draft before it is saved.
func (s *Service) Validate(d Draft) error {
	s.once.Do(func() { s.validate = validator.New() })
	if err := s.validate.Struct(d); err != nil {
		return fmt.Errorf("app: invalid note: %w", err)
	}
	return nil
}

// Save creates or updates a note with its media, then replaces its
// reminders. A task's due date becomes its earliest reminder when reminders
// are given. Editing replaces the media list.
func (s *Service) Save(ctx context.Context, d Draft) (*Detail, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	if err := s.Validate(d); err != nil {
		return nil, err
	}
	times := note.NormalizeTimes(d.Reminders)

	if d.ID != 0 {
		unlock := s.locks.Lock(d.ID)
		defer unlock()
	}

	var (
		n       *note.Note
		media   []*note.Media
		dropped []string
	)
	err := s.Repo.Transact(ctx, func(tx repository.Repository) error {
		if d.ID == 0 {
			n = note.New(d.Kind, d.Title, d.Body)
		} else {
			var err error
			if n, err = tx.GetNoteByID(ctx, d.ID); err != nil {
				return err
			}
			n.Title, n.Body, n.Kind = d.Title, d.Body, d.Kind
		}
		n.Due = d.Due
		if len(times) > 0 {
			first := times[0]
			n.Due = &first
		}
		n.Normalize()

		if d.ID == 0 {
			if _, err := tx.InsertNote(ctx, n); err != nil {
				return err
			}
		} else {
			old, err := tx.GetMediaByNoteID(ctx, n.ID)
			if err != nil {
				return err
			}
			dropped = droppedURIs(old, d.Media)
			if err := tx.UpdateNote(ctx, n); err != nil {
				return err
			}
			if err := tx.DeleteMediaByNoteID(ctx, n.ID); err != nil {
				return err
			}
		}

		for _, md := range d.Media {
			m, err := insertMedia(ctx, tx, n.ID, md)
			if err != nil {
				return err
			}
			media = append(media, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("app: save note: %w", err)
	}

	s.eraseBlobs(dropped)

	rs, err := s.Reminders.OnSave(ctx, n, times)
	if err != nil {
		return nil, err
	}
	if media == nil {
		media = []*note.Media{}
	}
	s.logger().WithFields(logrus.Fields{
		"note_id":   n.ID,
		"kind":      n.Kind,
		"reminders": len(rs),
		"media":     len(media),
	}).Info("note saved")
	return &Detail{Note: n, Media: media, Reminders: rs}, nil
}

// SetCompleted marks a task completed or open again.
func (s *Service) SetCompleted(ctx context.Context, id int64, completed bool) (*note.Note, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.Reminders.OnComplete(ctx, id, completed)
}

// Delete removes a note with its reminders and media, including copies held
// by the media store.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.ensure(); err != nil {
		return err
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	media, err := s.Repo.GetMediaByNoteID(ctx, id)
	if err != nil {
		return fmt.Errorf("app: delete note %d: %w", id, err)
	}
	if err := s.Reminders.OnDelete(ctx, id); err != nil {
		return err
	}
	uris := make([]string, 0, len(media))
	for _, m := range media {
		uris = append(uris, m.URI)
	}
	s.eraseBlobs(uris)
	s.logger().WithField("note_id", id).Info("note deleted")
	return nil
}

// Get returns a note with its media and reminders.
func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	n, err := s.Repo.GetNoteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	media, err := s.Repo.GetMediaByNoteID(ctx, id)
	if err != nil {
		return nil, err
	}
	rs, err := s.Repo.GetRemindersByNoteID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Note: n, Media: media, Reminders: rs}, nil
}

// List returns the notes of a category, newest first.
func (s *Service) List(ctx context.Context, category note.Category) ([]*note.Note, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return s.Repo.ListNotes(ctx, category)
}

// AttachMedia adds one attachment to an existing note.
func (s *Service) AttachMedia(ctx context.Context, noteID int64, md MediaDraft) (*note.Media, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	s.once.Do(func() { s.validate = validator.New() })
	if err := s.validate.Struct(md); err != nil {
		return nil, fmt.Errorf("app: invalid media: %w", err)
	}
	unlock := s.locks.Lock(noteID)
	defer unlock()

	if _, err := s.Repo.GetNoteByID(ctx, noteID); err != nil {
		return nil, err
	}
	return insertMedia(ctx, s.Repo, noteID, md)
}

// DetachMedia removes one attachment.
func (s *Service) DetachMedia(ctx context.Context, mediaID int64) error {
	if err := s.ensure(); err != nil {
		return err
	}
	m, err := s.Repo.GetMediaByID(ctx, mediaID)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(m.NoteID)
	defer unlock()

	if err := s.Repo.DeleteMedia(ctx, mediaID); err != nil {
		return err
	}
	s.eraseBlobs([]string{m.URI})
	return nil
}

// ImportMedia copies the file at path into the media store and returns the
// URI to attach.
func (s *Service) ImportMedia(path string) (string, error) {
	if s.Media == nil {
		return "", ErrNoMediaStore
	}
	return s.Media.ImportFile(path)
}

func insertMedia(ctx context.Context, repo repository.Repository, noteID int64, md MediaDraft) (*note.Media, error) {
	kind := md.Kind
	if kind == "" {
		kind = note.MediaFile
	}
	m := &note.Media{NoteID: noteID, Kind: kind, URI: md.URI, Description: md.Description}
	if _, err := repo.InsertMedia(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// droppedURIs returns managed URIs in old that next no longer references.
func droppedURIs(old []*note.Media, next []MediaDraft) []string {
	keep := make(map[string]bool, len(next))
	for _, m := range next {
		keep[m.URI] = true
	}
	var out []string
	for _, m := range old {
		if store.Managed(m.URI) && !keep[m.URI] {
			out = append(out, m.URI)
		}
	}
	return out
}

func (s *Service) eraseBlobs(uris []string) {
	if s.Media == nil {
		return
	}
	for _, uri := range uris {
		if !store.Managed(uri) {
			continue
		}
		if err := s.Media.Remove(uri); err != nil {
			s.logger().WithError(err).WithField("uri", uri).Warn("failed to erase media")
		}
	}
}
