package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matjip_recommendations_total",
			Help: "Recommendation requests by outcome (ok, invalid, llm_error)",
		},
		[]string{"outcome"},
	)

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matjip_llm_requests_total",
			Help: "Text-generation calls by call site and outcome",
		},
		[]string{"call_site", "outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matjip_llm_request_duration_seconds",
			Help:    "Latency of text-generation calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"call_site"},
	)

	RefineFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matjip_refine_fallbacks_total",
			Help: "Prompt refinements that failed and fell back to the raw request text",
		},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matjip_login_attempts_total",
			Help: "Login attempts by outcome (success, failure)",
		},
		[]string{"outcome"},
	)

	PreferenceKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matjip_preference_table_keys",
			Help: "Number of composite keys in the loaded preference table",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matjip_active_sessions",
			Help: "Number of sessions held in memory",
		},
	)
)

// ObserveLLMCall records one text-generation call.
func ObserveLLMCall(callSite string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	LLMRequests.WithLabelValues(callSite, outcome).Inc()
	LLMRequestDuration.WithLabelValues(callSite).Observe(time.Since(started).Seconds())
}
