package api

import (
	"net/http"
	"time"
)

const batchLogLimit = 10

type batchRun struct {
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	Duration    float64   `json:"duration"`
	Country     string    `json:"country,omitempty"`
	Category    string    `json:"category,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

type batchStatusResponse struct {
	LastRun    *batchRun  `json:"lastRun"`
	RecentLogs []batchRun `json:"recentLogs"`
}

// handleBatchStatus handles GET /api/batch/status. The batch pipeline itself
// runs out of process; this only reports its logged runs.
func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.BatchLogs(r.Context(), batchLogLimit)
	if err != nil {
		s.fail(w, r, "batch status", err)
		return
	}
	resp := batchStatusResponse{RecentLogs: make([]batchRun, 0, len(logs))}
	for i, l := range logs {
		if i == 0 {
			resp.LastRun = &batchRun{
				Status:      l.Status,
				StartedAt:   l.StartedAt,
				CompletedAt: l.CompletedAt,
				Duration:    l.Duration,
				Country:     l.Country,
				Category:    l.Category,
			}
		}
		resp.RecentLogs = append(resp.RecentLogs, batchRun{
			Status:      l.Status,
			StartedAt:   l.StartedAt,
			CompletedAt: l.CompletedAt,
			Duration:    l.Duration,
			Reason:      l.Reason,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
