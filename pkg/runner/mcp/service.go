// Package mcp provides the Model Context Protocol server integration for notes.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/timeutil"
)

// Service coordinates the note operations exposed by the MCP server.
type Service struct {
	App *app.Service
	// Now defaults to time.Now.
	Now func() time.Time
}

var errNotConfigured = errors.New("notes service is not configured")

// MediaInput is an attachment supplied by a tool call.
type MediaInput struct {
	Kind        string `json:"kind"`
	URI         string `json:"uri"`
	Description string `json:"description"`
}

// CreateNoteOptions captures the parameters used to create a new note.
type CreateNoteOptions struct {
	Kind      string       `json:"kind"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	Due       string       `json:"due"`
	Reminders []string     `json:"reminders"`
	Media     []MediaInput `json:"media"`
}

// UpdateNoteOptions changes the fields that are set and leaves the rest.
type UpdateNoteOptions struct {
	ID        int64
	Title     *string
	Body      *string
	Kind      *string
	Reminders *[]string
}

// ReminderDTO is a transport-friendly projection of a reminder.
type ReminderDTO struct {
	ID       int64  `json:"id"`
	FireAt   string `json:"fireAt"`
	FireUnix int64  `json:"fireAtUnix"`
	Active   bool   `json:"active"`
}

// MediaDTO is a transport-friendly projection of an attachment.
type MediaDTO struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	URI         string `json:"uri"`
	Description string `json:"description,omitempty"`
}

// NoteDTO is a transport-friendly projection of a note.
type NoteDTO struct {
	ID          int64         `json:"id"`
	Kind        string        `json:"kind"`
	Title       string        `json:"title"`
	Body        string        `json:"body,omitempty"`
	Completed   bool          `json:"isCompleted"`
	CreatedISO  string        `json:"created"`
	CreatedUnix int64         `json:"createdUnix"`
	DueISO      string        `json:"due,omitempty"`
	DueUnix     int64         `json:"dueUnix,omitempty"`
	Reminders   []ReminderDTO `json:"reminders,omitempty"`
	Media       []MediaDTO    `json:"media,omitempty"`
}

// NewService builds a service wrapper around svc.
func NewService(svc *app.Service) *Service {
	return &Service{App: svc}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ready() error {
	if s == nil || s.App == nil {
		return errNotConfigured
	}
	return nil
}

// CreateNote saves a new note.
func (s *Service) CreateNote(ctx context.Context, opts CreateNoteOptions) (*NoteDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	kind, err := parseKind(opts.Kind, note.KindNote)
	if err != nil {
		return nil, err
	}
	now := s.now()
	draft := app.Draft{Kind: kind, Title: opts.Title, Body: opts.Body}
	if strings.TrimSpace(opts.Due) != "" {
		due, err := timeutil.ParseWhen(opts.Due, now)
		if err != nil {
			return nil, fmt.Errorf("invalid due value: %w", err)
		}
		draft.Due = &due
	}
	if draft.Reminders, err = timeutil.ParseWhens(opts.Reminders, now); err != nil {
		return nil, fmt.Errorf("invalid reminder: %w", err)
	}
	for _, m := range opts.Media {
		mk, err := note.ParseMediaKind(m.Kind)
		if err != nil {
			return nil, err
		}
		draft.Media = append(draft.Media, app.MediaDraft{Kind: mk, URI: m.URI, Description: m.Description})
	}

	d, err := s.App.Save(ctx, draft)
	if err != nil {
		return nil, err
	}
	dto := toDetailDTO(d)
	return &dto, nil
}

// UpdateNote edits an existing note. Media is kept as it is.
func (s *Service) UpdateNote(ctx context.Context, opts UpdateNoteOptions) (*NoteDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if opts.ID <= 0 {
		return nil, errors.New("id is required")
	}
	d, err := s.App.Get(ctx, opts.ID)
	if err != nil {
		return nil, err
	}
	draft := app.DraftFrom(d)
	if opts.Title != nil {
		draft.Title = *opts.Title
	}
	if opts.Body != nil {
		draft.Body = *opts.Body
	}
	if opts.Kind != nil {
		if draft.Kind, err = parseKind(*opts.Kind, draft.Kind); err != nil {
			return nil, err
		}
	}
	if opts.Reminders != nil {
		if draft.Reminders, err = timeutil.ParseWhens(*opts.Reminders, s.now()); err != nil {
			return nil, fmt.Errorf("invalid reminder: %w", err)
		}
		draft.Due = nil
	}

	saved, err := s.App.Save(ctx, draft)
	if err != nil {
		return nil, err
	}
	dto := toDetailDTO(saved)
	return &dto, nil
}

// SetCompleted marks a task completed or open.
func (s *Service) SetCompleted(ctx context.Context, id int64, completed bool) (*NoteDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.App.SetCompleted(ctx, id, completed); err != nil {
		return nil, err
	}
	return s.NoteByID(ctx, id)
}

// DeleteNote removes a note with everything it owns.
func (s *Service) DeleteNote(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.App.Delete(ctx, id)
}

// ListNotes returns the notes of a category.
func (s *Service) ListNotes(ctx context.Context, category string) ([]NoteDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	c, err := note.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	notes, err := s.App.List(ctx, c)
	if err != nil {
		return nil, err
	}
	return toDTOs(notes), nil
}

// SearchNotes performs a case-insensitive substring match across titles and
// bodies.
func (s *Service) SearchNotes(ctx context.Context, query string, limit int) ([]NoteDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	q := strings.TrimSpace(strings.ToLower(query))
	if q == "" {
		return []NoteDTO{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	all, err := s.App.List(ctx, note.CategoryAll)
	if err != nil {
		return nil, err
	}
	results := make([]NoteDTO, 0, limit)
	for _, n := range all {
		if len(results) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Body), q) {
			results = append(results, toDTO(n))
		}
	}
	return results, nil
}

// NoteByID returns a note with its reminders and media.
func (s *Service) NoteByID(ctx context.Context, id int64) (*NoteDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	d, err := s.App.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDetailDTO(d)
	return &dto, nil
}

// AttachMedia adds an attachment to a note.
func (s *Service) AttachMedia(ctx context.Context, noteID int64, in MediaInput) (*MediaDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	kind, err := note.ParseMediaKind(in.Kind)
	if err != nil {
		return nil, err
	}
	m, err := s.App.AttachMedia(ctx, noteID, app.MediaDraft{Kind: kind, URI: in.URI, Description: in.Description})
	if err != nil {
		return nil, err
	}
	dto := toMediaDTO(m)
	return &dto, nil
}

// Agenda lists the reminders of open tasks in the coming window.
func (s *Service) Agenda(ctx context.Context, window string) (app.AgendaResult, error) {
	if err := s.ready(); err != nil {
		return app.AgendaResult{}, err
	}
	d, _, err := timeutil.ParseWindow(window)
	if err != nil {
		return app.AgendaResult{}, err
	}
	now := s.now()
	return s.App.Agenda(ctx, now, now.Add(d))
}

func parseKind(input string, fallback note.Kind) (note.Kind, error) {
	if strings.TrimSpace(input) == "" {
		return fallback, nil
	}
	return note.ParseKind(input)
}

func toDTOs(notes []*note.Note) []NoteDTO {
	out := make([]NoteDTO, 0, len(notes))
	for _, n := range notes {
		out = append(out, toDTO(n))
	}
	return out
}

func toDTO(n *note.Note) NoteDTO {
	dto := NoteDTO{
		ID:          n.ID,
		Kind:        string(n.Kind),
		Title:       n.Title,
		Body:        n.Body,
		Completed:   n.Completed,
		CreatedISO:  note.FormatTime(n.Created),
		CreatedUnix: n.Created.Unix(),
	}
	if n.Due != nil && !n.Due.IsZero() {
		dto.DueISO = note.FormatTime(*n.Due)
		dto.DueUnix = n.Due.Unix()
	}
	return dto
}

func toDetailDTO(d *app.Detail) NoteDTO {
	dto := toDTO(d.Note)
	for _, r := range d.Reminders {
		dto.Reminders = append(dto.Reminders, ReminderDTO{
			ID:       r.ID,
			FireAt:   note.FormatTime(r.FireAt),
			FireUnix: r.FireAt.Unix(),
			Active:   r.Active,
		})
	}
	for _, m := range d.Media {
		dto.Media = append(dto.Media, toMediaDTO(m))
	}
	return dto
}

func toMediaDTO(m *note.Media) MediaDTO {
	return MediaDTO{ID: m.ID, Kind: string(m.Kind), URI: m.URI, Description: m.Description}
}
