// Package metrics holds the Prometheus collectors for the agent and relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestcue_ticks_total",
		Help: "Scheduler ticks by outcome.",
	}, []string{"outcome"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestcue_notifications_total",
		Help: "Notifications by category and status.",
	}, []string{"type", "status"})

	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nestcue_tick_duration_seconds",
		Help:    "Time spent evaluating one scheduler tick.",
		Buckets: prometheus.DefBuckets,
	})

	SyncsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestcue_schedule_syncs_total",
		Help: "Upcoming schedule uploads to the relay by result.",
	}, []string{"result"})

	DispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestcue_relay_dispatched_total",
		Help: "Relay push payloads by result.",
	}, []string{"result"})

	PendingReminders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nestcue_relay_pending_reminders",
		Help: "Reminders still queued on the relay after the last dispatch pass.",
	})

	RemindersUploaded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nestcue_relay_reminders_uploaded",
		Help:    "Number of reminders per schedule upload.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200},
	})
)
