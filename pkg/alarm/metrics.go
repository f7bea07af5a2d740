package alarm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for a Registry. A nil *Metrics records
// nothing.
type Metrics struct {
	Pending   prometheus.Gauge
	Scheduled prometheus.Counter
	Cancelled prometheus.Counter
	Fired     prometheus.Counter
	Inexact   prometheus.Counter
}

// NewMetrics registers the alarm metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Pending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "notes",
			Subsystem: "alarms",
			Name:      "pending",
			Help:      "Number of alarms currently registered",
		}),
		Scheduled: f.NewCounter(prometheus.CounterOpts{
			Namespace: "notes",
			Subsystem: "alarms",
			Name:      "scheduled_total",
			Help:      "Total number of alarms scheduled, replacements included",
		}),
		Cancelled: f.NewCounter(prometheus.CounterOpts{
			Namespace: "notes",
			Subsystem: "alarms",
			Name:      "cancelled_total",
			Help:      "Total number of registered alarms cancelled",
		}),
		Fired: f.NewCounter(prometheus.CounterOpts{
			Namespace: "notes",
			Subsystem: "alarms",
			Name:      "fired_total",
			Help:      "Total number of alarms fired",
		}),
		Inexact: f.NewCounter(prometheus.CounterOpts{
			Namespace: "notes",
			Subsystem: "alarms",
			Name:      "inexact_total",
			Help:      "Total number of alarms registered with inexact delivery",
		}),
	}
}

func (m *Metrics) scheduled(inexact bool, pending int) {
	if m == nil {
		return
	}
	m.Scheduled.Inc()
	if inexact {
		m.Inexact.Inc()
	}
	m.Pending.Set(float64(pending))
}

func (m *Metrics) cancelled(pending int) {
	if m == nil {
		return
	}
	m.Cancelled.Inc()
	m.Pending.Set(float64(pending))
}

func (m *Metrics) fired(pending int) {
	if m == nil {
		return
	}
	m.Fired.Inc()
	m.Pending.Set(float64(pending))
}
