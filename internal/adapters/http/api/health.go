package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amore/clue/internal/adapters/repository"
	"github.com/amore/clue/pkg/metrics"
)

// HealthHandler handles liveness and metrics requests.
type HealthHandler struct {
	store   repository.Store
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store repository.Store) *HealthHandler {
	return &HealthHandler{
		store:   store,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Database string `json:"database"`
}

// HandleHealth handles GET /api/health. It answers 200 while the process is
// up and reports the database state alongside.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	db := "disconnected"
	if h.store != nil && h.store.Connected() {
		db = "connected"
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Message: "Server is running", Database: db})
}

// HandleMetrics serves the Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
