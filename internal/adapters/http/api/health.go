package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talenti/fitscore/pkg/metrics"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz requests by serving Prometheus metrics.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// PredictorHealthHandler reports liveness of the prediction services.
type PredictorHealthHandler struct {
	deps Dependencies
}

// NewPredictorHealthHandler creates a new predictor health handler.
func NewPredictorHealthHandler(deps Dependencies) *PredictorHealthHandler {
	return &PredictorHealthHandler{deps: deps}
}

// HandlePredictorHealth handles GET /api/v1/scoring/health. It always
// answers 200; the body says which services are up.
func (h *PredictorHealthHandler) HandlePredictorHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Health(r.Context()))
}
