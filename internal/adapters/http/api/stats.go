package api

import (
	"net/http"

	"github.com/amore/clue/internal/adapters/repository"
	"github.com/amore/clue/internal/domain/model"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	store         repository.Store
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler. statsProvider may be nil.
func NewStatsHandler(store repository.Store, statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{store: store, statsProvider: statsProvider}
}

type statsResponse struct {
	Collections map[string]int64       `json:"collections"`
	LastBatch   *model.BatchLog        `json:"lastBatch"`
	Service     map[string]interface{} `json:"service,omitempty"`
}

// HandleStats handles GET /api/stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts, err := h.store.CollectionCounts(ctx)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	resp := statsResponse{Collections: counts}
	logs, err := h.store.BatchLogs(ctx, 1)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if len(logs) > 0 {
		resp.LastBatch = &logs[0]
	}
	if h.statsProvider != nil {
		resp.Service = h.statsProvider.GetStats()
	}
	writeJSON(w, http.StatusOK, resp)
}
