package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a database change notification.
type EventType int

const (
	// EventChanged indicates the database file (or its journal) was written.
	EventChanged EventType = iota

	// EventInvalidated signals the watcher could not classify a change and
	// callers should assume anything may have changed.
	EventInvalidated
)

// Event is emitted by DB.Watch when the database changes on disk.
type Event struct {
	Type EventType
	At   time.Time
}

// DefaultWatchDelay coalesces bursts of writes from one transaction.
const DefaultWatchDelay = 250 * time.Millisecond

// Watch streams change events for the database file until ctx is cancelled.
// Writes from this process are reported too; consumers must be idempotent.
// Callers should drain the returned channel. It is closed once ctx is done or
// the watcher fails.
func (d *DB) Watch(ctx context.Context, delay time.Duration) (<-chan Event, error) {
	if d.path == "" {
		return nil, errors.New("store: in-memory database cannot be watched")
	}
	if delay <= 0 {
		delay = DefaultWatchDelay
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	// SQLite replaces -wal and -journal files, so watch the directory rather
	// than the file itself.
	dir := filepath.Dir(d.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("store: watch %s: %w", dir, err)
	}

	events := make(chan Event, 16)
	base := filepath.Base(d.path)

	go func() {
		defer close(events)
		defer watcher.Close()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// A pending event already tells the consumer to look again.
			}
		}

		throttle := newEventThrottle(delay)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Enqueue(EventInvalidated, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if !strings.HasPrefix(filepath.Base(evt.Name), base) {
					continue
				}
				throttle.Enqueue(EventChanged, send)
			}
		}
	}()

	return events, nil
}

// eventThrottle coalesces rapid change notifications so consumers react once
// per burst of writes instead of on every page flush.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]struct{}
	delay   time.Duration
	stopped bool
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]struct{}),
	}
}

func (t *eventThrottle) Enqueue(typ EventType, send func(Event)) {
	t.mu.Lock()
	t.pending[typ] = struct{}{}
	if t.timer == nil && !t.stopped {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pending := t.pending
	t.pending = make(map[EventType]struct{})
	t.timer = nil
	if t.stopped {
		return
	}

	now := time.Now()
	if _, ok := pending[EventInvalidated]; ok {
		send(Event{Type: EventInvalidated, At: now})
		return
	}
	if _, ok := pending[EventChanged]; ok {
		send(Event{Type: EventChanged, At: now})
	}
}

// Stop cancels any pending flush. send is never called after Stop returns.
func (t *eventThrottle) Stop() {
	t.mu.Lock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
