package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/notes/pkg/note"
)

const noteColumns = `id, title, body, kind, created_at_ms, due_at_ms, completed`

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*note.Note, error) {
	var (
		n       note.Note
		kind    string
		created int64
		due     sql.NullInt64
	)
	if err := s.Scan(&n.ID, &n.Title, &n.Body, &kind, &created, &due, &n.Completed); err != nil {
		return nil, err
	}
	n.Kind = note.Kind(kind)
	n.Created = note.FromMillis(created)
	if due.Valid {
		t := note.FromMillis(due.Int64)
		n.Due = &t
	}
	return &n, nil
}

func dueArg(n *note.Note) any {
	if n.Due == nil {
		return nil
	}
	return note.Millis(*n.Due)
}

// InsertNote stores n and returns the new identifier. n.ID is updated.
func InsertNote(ctx context.Context, q Querier, n *note.Note) (int64, error) {
	if n.Created.IsZero() {
		n.Created = time.Now()
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO notes (title, body, kind, created_at_ms, due_at_ms, completed) VALUES (?, ?, ?, ?, ?, ?)`,
		n.Title, n.Body, string(n.Kind), note.Millis(n.Created), dueArg(n), n.Completed)
	if err != nil {
		return 0, fmt.Errorf("store: insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert note: %w", err)
	}
	n.ID = id
	return id, nil
}

// UpdateNote rewrites every mutable column of n.
func UpdateNote(ctx context.Context, q Querier, n *note.Note) error {
	res, err := q.ExecContext(ctx,
		`UPDATE notes SET title = ?, body = ?, kind = ?, due_at_ms = ?, completed = ? WHERE id = ?`,
		n.Title, n.Body, string(n.Kind), dueArg(n), n.Completed, n.ID)
	if err != nil {
		return fmt.Errorf("store: update note %d: %w", n.ID, err)
	}
	return expectRow(res, "note", n.ID)
}

// DeleteNote removes a note. Its media and reminders go with it by cascade.
func DeleteNote(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete note %d: %w", id, err)
	}
	return expectRow(res, "note", id)
}

func GetNote(ctx context.Context, q Querier, id int64) (*note.Note, error) {
	row := q.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: note %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note %d: %w", id, err)
	}
	return n, nil
}

// ListNotes returns the notes in category, newest first.
func ListNotes(ctx context.Context, q Querier, category note.Category) ([]*note.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes`
	var args []any
	switch category {
	case note.CategoryAll, "":
	case note.CategoryNotes:
		query += ` WHERE kind = ?`
		args = append(args, string(note.KindNote))
	case note.CategoryTasks:
		query += ` WHERE kind = ?`
		args = append(args, string(note.KindTask))
	case note.CategoryCompleted:
		query += ` WHERE completed = 1`
	default:
		return nil, fmt.Errorf("store: unknown category %q", category)
	}
	query += ` ORDER BY created_at_ms DESC, id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*note.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list notes: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// InsertMedia stores m for its note and returns the new identifier.
func InsertMedia(ctx context.Context, q Querier, m *note.Media) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO media (note_id, kind, uri, description) VALUES (?, ?, ?, ?)`,
		m.NoteID, string(m.Kind), m.URI, m.Description)
	if err != nil {
		return 0, fmt.Errorf("store: insert media for note %d: %w", m.NoteID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert media: %w", err)
	}
	m.ID = id
	return id, nil
}

func DeleteMedia(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete media %d: %w", id, err)
	}
	return expectRow(res, "media", id)
}

func DeleteMediaByNote(ctx context.Context, q Querier, noteID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM media WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("store: delete media for note %d: %w", noteID, err)
	}
	return nil
}

func GetMedia(ctx context.Context, q Querier, id int64) (*note.Media, error) {
	var (
		m    note.Media
		kind string
	)
	err := q.QueryRowContext(ctx, `SELECT id, note_id, kind, uri, description FROM media WHERE id = ?`, id).
		Scan(&m.ID, &m.NoteID, &kind, &m.URI, &m.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: media %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get media %d: %w", id, err)
	}
	m.Kind = note.MediaKind(kind)
	return &m, nil
}

func ListMediaByNote(ctx context.Context, q Querier, noteID int64) ([]*note.Media, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, note_id, kind, uri, description FROM media WHERE note_id = ? ORDER BY id`, noteID)
	if err != nil {
		return nil, fmt.Errorf("store: list media for note %d: %w", noteID, err)
	}
	defer rows.Close()

	media := make([]*note.Media, 0)
	for rows.Next() {
		var (
			m    note.Media
			kind string
		)
		if err := rows.Scan(&m.ID, &m.NoteID, &kind, &m.URI, &m.Description); err != nil {
			return nil, fmt.Errorf("store: list media: %w", err)
		}
		m.Kind = note.MediaKind(kind)
		media = append(media, &m)
	}
	return media, rows.Err()
}

// InsertReminder adds a reminder row. AUTOINCREMENT guarantees the returned
// identifier has never been handed out before, even after deletions.
func InsertReminder(ctx context.Context, q Querier, noteID int64, fireAt time.Time) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO reminders (note_id, fire_at_ms, active) VALUES (?, ?, 1)`,
		noteID, note.Millis(fireAt))
	if err != nil {
		return 0, fmt.Errorf("store: insert reminder for note %d: %w", noteID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert reminder: %w", err)
	}
	return id, nil
}

func DeleteReminder(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete reminder %d: %w", id, err)
	}
	return expectRow(res, "reminder", id)
}

func DeleteRemindersByNote(ctx context.Context, q Querier, noteID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM reminders WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("store: delete reminders for note %d: %w", noteID, err)
	}
	return nil
}

func SetReminderActive(ctx context.Context, q Querier, id int64, active bool) error {
	res, err := q.ExecContext(ctx, `UPDATE reminders SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("store: update reminder %d: %w", id, err)
	}
	return expectRow(res, "reminder", id)
}

func ListRemindersByNote(ctx context.Context, q Querier, noteID int64) ([]*note.Reminder, error) {
	return listReminders(ctx, q,
		`SELECT id, note_id, fire_at_ms, active FROM reminders WHERE note_id = ? ORDER BY fire_at_ms, id`, noteID)
}

// ListFutureReminders returns every reminder firing strictly after now.
func ListFutureReminders(ctx context.Context, q Querier, now time.Time) ([]*note.Reminder, error) {
	return listReminders(ctx, q,
		`SELECT id, note_id, fire_at_ms, active FROM reminders WHERE fire_at_ms > ? ORDER BY fire_at_ms, id`, note.Millis(now))
}

func listReminders(ctx context.Context, q Querier, query string, arg any) ([]*note.Reminder, error) {
	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("store: list reminders: %w", err)
	}
	defer rows.Close()

	reminders := make([]*note.Reminder, 0)
	for rows.Next() {
		var (
			r      note.Reminder
			fireAt int64
		)
		if err := rows.Scan(&r.ID, &r.NoteID, &fireAt, &r.Active); err != nil {
			return nil, fmt.Errorf("store: list reminders: %w", err)
		}
		r.FireAt = note.FromMillis(fireAt)
		reminders = append(reminders, &r)
	}
	return reminders, rows.Err()
}

func expectRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: %s %d: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return nil
}
