// Package repository is the domain facade over the notes store. Callers above
// it never see SQL or transactions directly, only Repository.
package repository

import (
	"context"
	"time"

	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/store"
)

// ErrNotFound is returned when the requested note, media or reminder does not
// exist.
var ErrNotFound = store.ErrNotFound

// Repository exposes note, media and reminder operations.
type Repository interface {
	InsertNote(ctx context.Context, n *note.Note) (int64, error)
	UpdateNote(ctx context.Context, n *note.Note) error
	// DeleteNoteByID removes the note together with its media and reminders.
	DeleteNoteByID(ctx context.Context, id int64) error
	GetNoteByID(ctx context.Context, id int64) (*note.Note, error)
	ListNotes(ctx context.Context, category note.Category) ([]*note.Note, error)

	InsertMedia(ctx context.Context, m *note.Media) (int64, error)
	DeleteMedia(ctx context.Context, id int64) error
	DeleteMediaByNoteID(ctx context.Context, noteID int64) error
	GetMediaByNoteID(ctx context.Context, noteID int64) ([]*note.Media, error)
	GetMediaByID(ctx context.Context, id int64) (*note.Media, error)

	// InsertReminder persists a new active reminder and returns its identifier.
	// Identifiers are never reused.
	InsertReminder(ctx context.Context, noteID int64, fireAt time.Time) (int64, error)
	DeleteReminder(ctx context.Context, r *note.Reminder) error
	DeleteRemindersByNoteID(ctx context.Context, noteID int64) error
	GetRemindersByNoteID(ctx context.Context, noteID int64) ([]*note.Reminder, error)
	// GetAllFutureReminders returns reminders of every note firing strictly
	// after now, earliest first.
	GetAllFutureReminders(ctx context.Context, now time.Time) ([]*note.Reminder, error)
	SetReminderActive(ctx context.Context, id int64, active bool) error

	// Transact runs fn against a Repository bound to a single transaction.
	// Either every write fn makes is committed or none is.
	Transact(ctx context.Context, fn func(Repository) error) error
}

// New returns the SQLite backed Repository.
func New(db *store.DB) Repository {
	return &sqlRepository{db: db, q: db.Conn()}
}

type sqlRepository struct {
	db *store.DB
	q  store.Querier
	tx bool
}

var _ Repository = (*sqlRepository)(nil)

func (r *sqlRepository) InsertNote(ctx context.Context, n *note.Note) (int64, error) {
	return store.InsertNote(ctx, r.q, n)
}

func (r *sqlRepository) UpdateNote(ctx context.Context, n *note.Note) error {
	return store.UpdateNote(ctx, r.q, n)
}

func (r *sqlRepository) DeleteNoteByID(ctx context.Context, id int64) error {
	return store.DeleteNote(ctx, r.q, id)
}

func (r *sqlRepository) GetNoteByID(ctx context.Context, id int64) (*note.Note, error) {
	return store.GetNote(ctx, r.q, id)
}

func (r *sqlRepository) ListNotes(ctx context.Context, category note.Category) ([]*note.Note, error) {
	return store.ListNotes(ctx, r.q, category)
}

func (r *sqlRepository) InsertMedia(ctx context.Context, m *note.Media) (int64, error) {
	return store.InsertMedia(ctx, r.q, m)
}

func (r *sqlRepository) DeleteMedia(ctx context.Context, id int64) error {
	return store.DeleteMedia(ctx, r.q, id)
}

func (r *sqlRepository) DeleteMediaByNoteID(ctx context.Context, noteID int64) error {
	return store.DeleteMediaByNote(ctx, r.q, noteID)
}

func (r *sqlRepository) GetMediaByNoteID(ctx context.Context, noteID int64) ([]*note.Media, error) {
	return store.ListMediaByNote(ctx, r.q, noteID)
}

func (r *sqlRepository) GetMediaByID(ctx context.Context, id int64) (*note.Media, error) {
	return store.GetMedia(ctx, r.q, id)
}

func (r *sqlRepository) InsertReminder(ctx context.Context, noteID int64, fireAt time.Time) (int64, error) {
	return store.InsertReminder(ctx, r.q, noteID, fireAt)
}

func (r *sqlRepository) DeleteReminder(ctx context.Context, rem *note.Reminder) error {
	if rem == nil {
		return nil
	}
	return store.DeleteReminder(ctx, r.q, rem.ID)
}

func (r *sqlRepository) DeleteRemindersByNoteID(ctx context.Context, noteID int64) error {
	return store.DeleteRemindersByNote(ctx, r.q, noteID)
}

func (r *sqlRepository) GetRemindersByNoteID(ctx context.Context, noteID int64) ([]*note.Reminder, error) {
	return store.ListRemindersByNote(ctx, r.q, noteID)
}

func (r *sqlRepository) GetAllFutureReminders(ctx context.Context, now time.Time) ([]*note.Reminder, error) {
	return store.ListFutureReminders(ctx, r.q, now)
}

func (r *sqlRepository) SetReminderActive(ctx context.Context, id int64, active bool) error {
	return store.SetReminderActive(ctx, r.q, id, active)
}

func (r *sqlRepository) Transact(ctx context.Context, fn func(Repository) error) error {
	if r.tx {
		// Already inside a transaction; nested calls join it.
		return fn(r)
	}
	return r.db.Tx(ctx, func(q store.Querier) error {
		return fn(&sqlRepository{db: r.db, q: q, tx: true})
	})
}
