package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ModelAttempts counts gateway calls per model, call shape and result.
	ModelAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dapur_model_attempts_total",
			Help: "Model invocations made by the gateway, by model, shape and result",
		},
		[]string{"model", "shape", "result"},
	)

	// GenerationOutcomes counts gateway results by outcome.
	GenerationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dapur_generation_outcomes_total",
			Help: "Gateway generation results by outcome",
		},
		[]string{"outcome"},
	)

	// CacheLookups counts result cache lookups by operation and result.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dapur_result_cache_lookups_total",
			Help: "Result cache lookups by operation and result (hit, miss, degraded)",
		},
		[]string{"operation", "result"},
	)

	// RateLimited counts requests rejected by the per-IP rate limiter.
	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dapur_rate_limited_requests_total",
			Help: "Requests rejected by the per-IP rate limiter, by route scope",
		},
		[]string{"scope"},
	)

	// RecipeSourceRequests counts calls to the recipe source API.
	RecipeSourceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dapur_recipe_source_requests_total",
			Help: "Recipe source API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)
)

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
