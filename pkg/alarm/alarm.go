// Package alarm is the deferred callback registry that reminders are
// registered with. An alarm is keyed by the reminder identifier, fires once
// and then is gone. Nothing here is durable.
package alarm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrExactNotPermitted is returned for an Exact request while exact
	// delivery is not allowed.
	ErrExactNotPermitted = errors.New("alarm: exact scheduling not permitted")

	// ErrUnavailable is returned when the registry cannot be reached.
	ErrUnavailable = errors.New("alarm: scheduler unavailable")
)

// Precision selects how closely an alarm must honour its time.
type Precision int

const (
	// BestEffort is exact when permitted and inexact otherwise.
	BestEffort Precision = iota
	// Exact fails with ErrExactNotPermitted when exact delivery is not allowed.
	Exact
	// Inexact delivers at or after the requested time.
	Inexact
)

var precisionNames = map[Precision]string{
	BestEffort: "best_effort",
	Exact:      "exact",
	Inexact:    "inexact",
}

func (p Precision) String() string {
	if s, ok := precisionNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Precision(%d)", int(p))
}

// ParsePrecision accepts the names printed by String. Empty is BestEffort.
func ParsePrecision(s string) (Precision, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return BestEffort, nil
	}
	for p, name := range precisionNames {
		if s == name {
			return p, nil
		}
	}
	return BestEffort, fmt.Errorf("alarm: unknown precision %q", s)
}

func (p Precision) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Precision) UnmarshalText(b []byte) error {
	v, err := ParsePrecision(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Alarm is a single one-shot registration.
type Alarm struct {
	ID        int64     `json:"id"`
	At        time.Time `json:"at"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body,omitempty"`
	Precision Precision `json:"precision"`

	// DeliverAt is when a registered alarm will actually fire. Only set on
	// alarms returned by Pending.
	DeliverAt time.Time `json:"deliver_at,omitempty"`
}

// Scheduler registers and cancels alarms. Schedule replaces any registration
// under the same ID; Cancel of an unknown ID is not an error.
type Scheduler interface {
	Schedule(ctx context.Context, a Alarm) error
	Cancel(ctx context.Context, id int64) error
}

// Lister is a Scheduler that can report what is currently registered.
type Lister interface {
	Scheduler
	Pending(ctx context.Context) ([]Alarm, error)
}

func validate(a Alarm) error {
	if a.ID <= 0 {
		return fmt.Errorf("alarm: invalid id %d", a.ID)
	}
	if a.At.IsZero() {
		return fmt.Errorf("alarm: %d has no time", a.ID)
	}
	return nil
}

// roundUp moves t forward to the next multiple of window.
func roundUp(t time.Time, window time.Duration) time.Time {
	if window <= 0 {
		return t
	}
	r := t.Truncate(window)
	if r.Before(t) {
		r = r.Add(window)
	}
	return r
}
