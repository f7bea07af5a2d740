// Package note holds the data model shared by the store, the reminder
// coordinator and the CLI: notes and tasks, their media attachments and their
// reminders.
package note

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind separates plain notes from tasks.
type Kind string

const (
	KindNote Kind = "note"
	KindTask Kind = "task"
)

// DefaultTitle replaces a blank title on save.
const DefaultTitle = "Untitled"

var ErrInvalidKind = errors.New("note: invalid kind")

// ParseKind accepts the kind name or its plural.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "note", "notes", "n":
		return KindNote, nil
	case "task", "tasks", "t":
		return KindTask, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k Kind) String() string {
	return string(k)
}

// Note is a user-authored record. Due and Completed only apply to tasks.
type Note struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Kind      Kind       `json:"kind"`
	Created   time.Time  `json:"created"`
	Due       *time.Time `json:"due,omitempty"`
	Completed bool       `json:"completed,omitempty"`
}

// New returns a note of the given kind created now.
func New(kind Kind, title, body string) *Note {
	n := &Note{
		Kind:    kind,
		Title:   title,
		Body:    body,
		Created: time.Now(),
	}
	n.Normalize()
	return n
}

// IsTask reports whether the note can carry reminders.
func (n *Note) IsTask() bool {
	return n != nil && n.Kind == KindTask
}

// IsActiveTask is true for tasks that are not completed. Only active tasks
// hold live alarm registrations.
func (n *Note) IsActiveTask() bool {
	return n.IsTask() && !n.Completed
}

// Normalize applies the defaults enforced on every save.
func (n *Note) Normalize() {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		n.Title = DefaultTitle
	}
	if n.Kind == "" {
		n.Kind = KindNote
	}
	if n.Kind != KindTask {
		n.Due = nil
		n.Completed = false
	}
}

func (n *Note) String() string {
	switch {
	case n.Kind == KindTask && n.Completed:
		return fmt.Sprintf("✘ %s", n.Title)
	case n.Kind == KindTask:
		return fmt.Sprintf("● %s", n.Title)
	default:
		return fmt.Sprintf("⁃ %s", n.Title)
	}
}

// Category selects a listing of notes.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryNotes     Category = "notes"
	CategoryTasks     Category = "tasks"
	CategoryCompleted Category = "completed"
)

// Categories in display order.
func Categories() []Category {
	return []Category{CategoryAll, CategoryNotes, CategoryTasks, CategoryCompleted}
}

// ParseCategory maps user input to a Category. Empty input means all.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "everything":
		return CategoryAll, nil
	case "note", "notes":
		return CategoryNotes, nil
	case "task", "tasks", "todo":
		return CategoryTasks, nil
	case "completed", "complete", "done":
		return CategoryCompleted, nil
	}
	return "", fmt.Errorf("note: unknown category %q", s)
}
