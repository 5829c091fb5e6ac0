// Package metrics exposes the service's Prometheus collectors on a private
// registry, served at /metrics by the HTTP layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// SessionsCreated counts sessions issued by the store.
	SessionsCreated = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "guessd",
		Name:      "sessions_created_total",
		Help:      "Number of game sessions created.",
	})

	// GuessesEvaluated counts guesses that reached the evaluator.
	GuessesEvaluated = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "guessd",
		Name:      "guesses_evaluated_total",
		Help:      "Number of guesses scored against a target word.",
	})

	// GamesCompleted counts terminal transitions by outcome.
	GamesCompleted = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "guessd",
		Name:      "games_completed_total",
		Help:      "Number of games that reached a terminal status.",
	}, []string{"status"})

	// SessionsEvicted counts in-memory sessions removed by the sweep.
	SessionsEvicted = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "guessd",
		Name:      "sessions_evicted_total",
		Help:      "Number of sessions evicted after the retention window.",
	})

	// PersistenceFailures counts best-effort durable writes/reads that failed.
	PersistenceFailures = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "guessd",
		Name:      "persistence_failures_total",
		Help:      "Number of durable store operations that returned an error.",
	}, []string{"op"})
)

// Registry returns the private registry, mainly for tests.
func Registry() *prometheus.Registry { return registry }

// Handler serves the registry in Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
