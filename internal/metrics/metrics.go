package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemefinder_llm_requests_total",
			Help: "Total number of LLM completion calls",
		},
		[]string{"provider", "phase", "outcome"},
	)

	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schemefinder_llm_request_duration_seconds",
			Help:    "Duration of LLM completion calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"provider", "phase"},
	)

	RecommendFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "schemefinder_recommend_fallbacks_total",
			Help: "Recommendations answered from the fallback catalog",
		},
	)

	RecommendBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemefinder_recommend_batches_total",
			Help: "Detail batches by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemefinder_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	RecorderEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemefinder_recorder_events_total",
			Help: "Analytics and history events by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemefinder_cache_lookups_total",
			Help: "Cache lookups by cache name and result",
		},
		[]string{"cache", "result"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
