package reminders

import "sync"

// NoteLocks hands out one mutex per note so that at most one reconciliation
// runs per note. Entries are dropped once nobody holds or waits on them.
// The zero value is ready to use.
type NoteLocks struct {
	mu    sync.Mutex
	locks map[int64]*noteLock
}

type noteLock struct {
	sync.Mutex
	refs int
}

// Lock blocks until the note is free and returns the matching unlock.
func (l *NoteLocks) Lock(noteID int64) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*noteLock)
	}
	nl, ok := l.locks[noteID]
	if !ok {
		nl = &noteLock{}
		l.locks[noteID] = nl
	}
	nl.refs++
	l.mu.Unlock()

	nl.Lock()
	return func() {
		nl.Unlock()
		l.mu.Lock()
		nl.refs--
		if nl.refs == 0 {
			delete(l.locks, noteID)
		}
		l.mu.Unlock()
	}
}

func (l *NoteLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
