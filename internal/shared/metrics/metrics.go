package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecommendationsTotal counts engine runs by strategy and outcome.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentmatch_recommendations_total",
			Help: "Total recommendation requests by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	// RecommendationDuration tracks end-to-end engine latency.
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scentmatch_recommendation_duration_ms",
			Help:    "Recommendation engine duration in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000},
		},
		[]string{"strategy"},
	)

	// StrategyFailures counts failed strategy halves (database or ai).
	StrategyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentmatch_strategy_failures_total",
			Help: "Failed recommendation strategy calls",
		},
		[]string{"strategy"},
	)

	// ExplanationStage counts which fallback stage produced each explanation.
	ExplanationStage = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentmatch_explanation_stage_total",
			Help: "Explanations produced per fallback stage and experience level",
		},
		[]string{"stage", "level"},
	)

	// LLMRequests counts LLM calls by outcome.
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentmatch_llm_requests_total",
			Help: "LLM completion calls by outcome",
		},
		[]string{"outcome"},
	)

	// CircuitBreakerState reports breaker state (0 closed, 1 half-open, 2 open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scentmatch_circuit_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)

	// HTTPRequests counts served requests by route and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentmatch_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveRecommendation records one engine run.
func ObserveRecommendation(strategy string, success bool, elapsed time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	RecommendationsTotal.WithLabelValues(strategy, outcome).Inc()
	RecommendationDuration.WithLabelValues(strategy).Observe(durationMs(elapsed))
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func durationMs(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d.Microseconds()) / 1000.0
}
