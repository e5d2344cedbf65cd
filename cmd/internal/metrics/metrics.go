package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Presence
	OnlineUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notifyflow_presence_online_users",
		Help: "The current number of distinct users with at least one joined connection.",
	})
	PresenceConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notifyflow_presence_connections",
		Help: "The current number of connections attributed to a user.",
	})
	PresenceBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifyflow_presence_broadcasts_total",
		Help: "The total number of presence snapshots handed to the push channel.",
	})
	PresenceJoinsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifyflow_presence_joins_rejected_total",
		Help: "The total number of presence joins dropped without a state change.",
	}, []string{"reason"})

	// Push channel
	LiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notifyflow_ws_connections_active",
		Help: "The current number of live push connections, joined or anonymous.",
	})
	ConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifyflow_ws_connections_total",
		Help: "The total number of push connections accepted.",
	})
	PushMessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifyflow_ws_messages_dropped_total",
		Help: "The total number of outgoing messages dropped because a client queue was full.",
	})
)

// Handler exposes the default registry on an echo route.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
