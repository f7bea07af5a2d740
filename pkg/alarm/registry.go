package alarm

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/notes/pkg/notify"
)

// DefaultInexactWindow is the delivery granularity of inexact alarms.
const DefaultInexactWindow = time.Minute

// Registry is an in-process Lister. Registrations live only as long as the
// Registry does.
type Registry struct {
	clock     Clock
	presenter notify.Presenter
	log       logrus.FieldLogger
	metrics   *Metrics
	window    time.Duration

	mu      sync.Mutex
	exact   bool
	seq     uint64
	pending map[int64]*registration
}

type registration struct {
	alarm   Alarm
	deliver time.Time
	timer   Timer
	seq     uint64
}

var _ Lister = (*Registry)(nil)

// Option configures a Registry.
type Option func(*Registry)

func WithClock(c Clock) Option { return func(r *Registry) { r.clock = c } }

func WithPresenter(p notify.Presenter) Option { return func(r *Registry) { r.presenter = p } }

func WithLogger(l logrus.FieldLogger) Option { return func(r *Registry) { r.log = l } }

func WithMetrics(m *Metrics) Option { return func(r *Registry) { r.metrics = m } }

// WithExactAllowed sets whether exact delivery is permitted. Default true.
func WithExactAllowed(allowed bool) Option { return func(r *Registry) { r.exact = allowed } }

// WithInexactWindow sets the boundary inexact alarms are rounded up to.
func WithInexactWindow(d time.Duration) Option { return func(r *Registry) { r.window = d } }

// NewRegistry returns an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		clock:   RealClock{},
		window:  DefaultInexactWindow,
		exact:   true,
		pending: make(map[int64]*registration),
	}
	for _, o := range opts {
		o(r)
	}
	if r.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.log = l
	}
	return r
}

// SetExactAllowed grants or revokes exact delivery. Existing registrations
// keep the precision they were registered with.
func (r *Registry) SetExactAllowed(allowed bool) {
	r.mu.Lock()
	r.exact = allowed
	r.mu.Unlock()
}

func (r *Registry) ExactAllowed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exact
}

// Schedule registers a, replacing any alarm already registered under a.ID.
// Times in the past fire on the next tick.
func (r *Registry) Schedule(_ context.Context, a Alarm) error {
	if err := validate(a); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	deliver := a.At
	effective := Exact
	switch a.Precision {
	case Exact:
		if !r.exact {
			return ErrExactNotPermitted
		}
	case Inexact:
		deliver, effective = roundUp(a.At, r.window), Inexact
	default:
		if !r.exact {
			deliver, effective = roundUp(a.At, r.window), Inexact
		}
	}

	if old, ok := r.pending[a.ID]; ok {
		old.timer.Stop()
		delete(r.pending, a.ID)
	}

	delay := deliver.Sub(r.clock.Now())
	if delay < 0 {
		delay = 0
	}
	r.seq++
	reg := &registration{seq: r.seq, deliver: deliver}
	reg.alarm = a
	reg.alarm.Precision = effective
	reg.alarm.DeliverAt = deliver
	id, seq := a.ID, r.seq
	reg.timer = r.clock.AfterFunc(delay, func() { r.fire(id, seq) })
	r.pending[a.ID] = reg

	r.metrics.scheduled(effective == Inexact, len(r.pending))
	r.log.WithFields(logrus.Fields{
		"reminder_id": a.ID,
		"fire_at":     deliver.Format(time.RFC3339),
		"precision":   effective.String(),
	}).Debug("alarm scheduled")
	return nil
}

// Cancel drops the registration for id, if any.
func (r *Registry) Cancel(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.pending[id]
	if !ok {
		return nil
	}
	reg.timer.Stop()
	delete(r.pending, id)
	r.metrics.cancelled(len(r.pending))
	r.log.WithField("reminder_id", id).Debug("alarm cancelled")
	return nil
}

// Pending returns the registered alarms ordered by delivery time.
func (r *Registry) Pending(_ context.Context) ([]Alarm, error) {
	r.mu.Lock()
	out := make([]Alarm, 0, len(r.pending))
	for _, reg := range r.pending {
		out = append(out, reg.alarm)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].DeliverAt.Equal(out[j].DeliverAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].DeliverAt.Before(out[j].DeliverAt)
	})
	return out, nil
}

// Len is the number of registered alarms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Close stops every pending timer. Registrations are discarded.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, reg := range r.pending {
		reg.timer.Stop()
		delete(r.pending, id)
	}
	if r.metrics != nil {
		r.metrics.Pending.Set(0)
	}
}

func (r *Registry) fire(id int64, seq uint64) {
	r.mu.Lock()
	reg, ok := r.pending[id]
	if !ok || reg.seq != seq {
		// Replaced or cancelled after the timer was already running.
		r.mu.Unlock()
		return
	}
	delete(r.pending, id)
	r.metrics.fired(len(r.pending))
	r.mu.Unlock()

	log := r.log.WithField("reminder_id", id)
	log.Debug("alarm fired")
	if r.presenter == nil {
		return
	}
	n := notify.Notification{
		ID:    id,
		Title: reg.alarm.Title,
		Body:  reg.alarm.Body,
		At:    reg.alarm.At,
	}
	if err := r.presenter.Present(context.Background(), n); err != nil {
		log.WithError(err).Warn("failed to present notification")
	}
}
