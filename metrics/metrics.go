package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the bot.
type Metrics struct {
	registry       *prometheus.Registry
	streamsStarted prometheus.Counter
	streamsFailed  prometheus.Counter
	commandsTotal  *prometheus.CounterVec
	queuedItems    prometheus.Gauge
	guildPlayers   prometheus.Gauge
}

// New creates and registers Prometheus metrics for the bot.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	streamsStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cadence_streams_started_total",
		Help: "Total number of audio streams attached to a voice connection",
	})
	streamsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cadence_streams_failed_total",
		Help: "Total number of audio streams that could not start or ended with an error",
	})
	commandsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cadence_commands_total",
		Help: "Total number of executed commands by name and result",
	}, []string{"command", "result"})
	queuedItems := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cadence_queued_items",
		Help: "Number of queue items across all guilds, playing items included",
	})
	guildPlayers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cadence_guild_players",
		Help: "Number of guilds with a player",
	})

	registry.MustRegister(
		streamsStarted,
		streamsFailed,
		commandsTotal,
		queuedItems,
		guildPlayers,
	)

	return &Metrics{
		registry:       registry,
		streamsStarted: streamsStarted,
		streamsFailed:  streamsFailed,
		commandsTotal:  commandsTotal,
		queuedItems:    queuedItems,
		guildPlayers:   guildPlayers,
	}
}

// StreamStarted increments the streams started counter.
func (m *Metrics) StreamStarted() {
	m.streamsStarted.Inc()
}

// StreamFailed increments the stream failures counter.
func (m *Metrics) StreamFailed() {
	m.streamsFailed.Inc()
}

// CommandExecuted counts one command execution.
func (m *Metrics) CommandExecuted(command string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.commandsTotal.WithLabelValues(command, result).Inc()
}

// SetQueuedItems sets the queued items gauge.
func (m *Metrics) SetQueuedItems(n int) {
	m.queuedItems.Set(float64(n))
}

// SetGuildPlayers sets the guild players gauge.
func (m *Metrics) SetGuildPlayers(n int) {
	m.guildPlayers.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
