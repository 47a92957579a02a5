package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal counts processed commands by name.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sjavs",
		Name:      "commands_total",
		Help:      "Commands processed, by command name.",
	}, []string{"command"})

	// CommandErrors counts rejected or failed commands by name.
	CommandErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sjavs",
		Name:      "command_errors_total",
		Help:      "Commands rejected or failed, by command name.",
	}, []string{"command"})

	// EventsPublished counts events fanned out through pub/sub.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sjavs",
		Name:      "events_published_total",
		Help:      "Events published to the pub/sub fabric, by kind.",
	}, []string{"event"})

	// ConnectionsActive gauges live websocket sessions on this instance.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sjavs",
		Name:      "connections_active",
		Help:      "Currently connected websocket sessions.",
	})

	// MatchesCreated counts matches created on this instance.
	MatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sjavs",
		Name:      "matches_created_total",
		Help:      "Matches created.",
	})
)
