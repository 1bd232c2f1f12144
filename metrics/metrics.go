// Package metrics exposes Prometheus collectors for game activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the game server
type Metrics struct {
	registry *prometheus.Registry

	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionsExpired prometheus.Counter

	// Game metrics
	GamesStarted  *prometheus.CounterVec
	GamesFinished *prometheus.CounterVec
	MovesTotal    *prometheus.CounterVec
	SolveDuration prometheus.Histogram
	ScoreGap      prometheus.Histogram

	// Persistence metrics
	SaveErrorsTotal prometheus.Counter
}

// New creates and registers all metrics on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "greedygrid_sessions_active",
			Help: "Number of sessions held in memory",
		}),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "greedygrid_sessions_created_total",
			Help: "Total number of sessions created",
		}),
		SessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "greedygrid_sessions_expired_total",
			Help: "Total number of sessions removed by the cleanup sweep",
		}),

		GamesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greedygrid_games_started_total",
			Help: "Total number of games started",
		}, []string{"difficulty"}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greedygrid_games_finished_total",
			Help: "Total number of finished games by outcome",
		}, []string{"difficulty", "outcome"}),
		MovesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greedygrid_moves_total",
			Help: "Total number of move attempts",
		}, []string{"result"}),
		SolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "greedygrid_solve_duration_seconds",
			Help:    "Time spent generating and solving a grid",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		ScoreGap: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "greedygrid_score_gap",
			Help:    "Final score minus optimal score for finished games",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),

		SaveErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "greedygrid_save_errors_total",
			Help: "Total number of failed session saves",
		}),
	}

	m.registry.MustRegister(
		m.SessionsActive,
		m.SessionsCreated,
		m.SessionsExpired,
		m.GamesStarted,
		m.GamesFinished,
		m.MovesTotal,
		m.SolveDuration,
		m.ScoreGap,
		m.SaveErrorsTotal,
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
