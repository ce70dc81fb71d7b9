package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsTotal counts inbound client events by type.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pikselliyo_events_total",
		Help: "Inbound client events processed, by event type.",
	}, []string{"event"})

	// BroadcastsTotal counts outbound room broadcasts by event type.
	BroadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pikselliyo_broadcasts_total",
		Help: "Room broadcasts emitted, by event type.",
	}, []string{"event"})

	// SnapshotsTotal counts persistence writes by outcome.
	SnapshotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pikselliyo_snapshots_total",
		Help: "Snapshot writes, by outcome (ok or error).",
	}, []string{"outcome"})

	// Sessions tracks currently connected sessions.
	Sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pikselliyo_sessions",
		Help: "Currently connected sessions.",
	})

	// Rooms tracks live rooms in the registry.
	Rooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pikselliyo_rooms",
		Help: "Rooms currently held by the registry.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
