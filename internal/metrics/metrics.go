package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "liveroom_connections_active",
			Help: "Currently open transport connections",
		},
	)

	IdentitiesOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "liveroom_identities_online",
			Help: "Identities with at least one live connection",
		},
	)

	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "liveroom_rooms_active",
			Help: "Rooms with at least one member",
		},
	)

	EventsInbound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liveroom_events_inbound_total",
			Help: "Inbound client events by type",
		},
		[]string{"type"},
	)

	Broadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liveroom_broadcasts_total",
			Help: "Outbound fan-out events by kind",
		},
		[]string{"kind"},
	)

	FramesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "liveroom_frames_dropped_total",
			Help: "Frames dropped on slow connections",
		},
	)

	CommentStoreFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "liveroom_comment_store_failures_total",
			Help: "Comment persistence failures and timeouts",
		},
	)
)
