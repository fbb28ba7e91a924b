// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesInterpreted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_queries_interpreted_total",
			Help: "Total number of interpreter invocations by outcome",
		},
		[]string{"outcome"},
	)

	RepairAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_repair_attempts_total",
			Help: "Total number of repair round-trips sent to the model",
		},
	)

	InterpretDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "assistant_interpret_duration_seconds",
			Help: "Duration of a full interpreter invocation in seconds",
		},
	)

	WeatherFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_weather_fetches_total",
			Help: "Total number of weather provider fetches by result",
		},
		[]string{"result"},
	)

	WeatherCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_weather_cache_lookups_total",
			Help: "Total number of weather cache lookups by result",
		},
		[]string{"result"},
	)
)
