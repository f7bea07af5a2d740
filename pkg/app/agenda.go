package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/repository"
)

// AgendaItem is one upcoming reminder of an open task.
type AgendaItem struct {
	Note     *note.Note     `json:"note"`
	Reminder *note.Reminder `json:"reminder"`
}

// AgendaDay groups the reminders firing on one local day.
type AgendaDay struct {
	Day   time.Time    `json:"day"`
	Items []AgendaItem `json:"items"`
}

// AgendaResult lists what is coming up between Since and Until, plus the open
// tasks whose due date already passed.
type AgendaResult struct {
	Since   time.Time    `json:"since"`
	Until   time.Time    `json:"until"`
	Overdue []*note.Note `json:"overdue"`
	Days    []AgendaDay  `json:"days"`
	Total   int          `json:"total"`
}

// Agenda returns the reminders of open tasks firing after since and no later
// than until, grouped by day.
func (s *Service) Agenda(ctx context.Context, since, until time.Time) (AgendaResult, error) {
	if err := s.ensure(); err != nil {
		return AgendaResult{}, err
	}
	if since.After(until) {
		since, until = until, since
	}
	result := AgendaResult{Since: since, Until: until, Overdue: []*note.Note{}, Days: []AgendaDay{}}

	tasks, err := s.Repo.ListNotes(ctx, note.CategoryTasks)
	if err != nil {
		return AgendaResult{}, err
	}
	for _, n := range tasks {
		if n.IsActiveTask() && n.Due != nil && !n.Due.After(since) {
			result.Overdue = append(result.Overdue, n)
		}
	}
	sort.SliceStable(result.Overdue, func(i, j int) bool {
		return result.Overdue[i].Due.Before(*result.Overdue[j].Due)
	})

	rs, err := s.Repo.GetAllFutureReminders(ctx, since)
	if err != nil {
		return AgendaResult{}, err
	}
	notes := make(map[int64]*note.Note)
	for _, r := range rs {
		if r.FireAt.After(until) {
			break
		}
		if !r.Active {
			continue
		}
		n, ok := notes[r.NoteID]
		if !ok {
			n, err = s.Repo.GetNoteByID(ctx, r.NoteID)
			if errors.Is(err, repository.ErrNotFound) {
				notes[r.NoteID] = nil
				continue
			}
			if err != nil {
				return AgendaResult{}, err
			}
			notes[r.NoteID] = n
		}
		if n == nil || !n.IsActiveTask() {
			continue
		}

		item := AgendaItem{Note: n, Reminder: r}
		if last := len(result.Days) - 1; last >= 0 && note.SameDay(result.Days[last].Day, r.FireAt) {
			result.Days[last].Items = append(result.Days[last].Items, item)
		} else {
			day := r.FireAt.Local()
			result.Days = append(result.Days, AgendaDay{
				Day:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
				Items: []AgendaItem{item},
			})
		}
		result.Total++
	}
	return result, nil
}
