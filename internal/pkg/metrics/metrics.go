/*
Package metrics exposes the Prometheus collectors and the /metrics handler.
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OpenConnections tracks live WebSocket connections.
	OpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "thinksync_ws_connections",
		Help: "Number of open WebSocket connections.",
	})

	// ActiveRooms tracks rooms with at least one occupant.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "thinksync_active_rooms",
		Help: "Number of rooms with at least one occupant.",
	})

	// RelayedEvents counts mutation events forwarded between occupants, by event name.
	RelayedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thinksync_relayed_events_total",
		Help: "Mutation events relayed to room occupants.",
	}, []string{"event"})

	// PresenceBroadcasts counts full-roster broadcasts.
	PresenceBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thinksync_presence_broadcasts_total",
		Help: "Full roster broadcasts sent to rooms.",
	})

	// DroppedFrames counts frames dropped because a peer's send queue was full.
	DroppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thinksync_dropped_frames_total",
		Help: "Outbound frames dropped due to slow peers.",
	})
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
