package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/amore/clue/internal/adapters/llm"
	"github.com/amore/clue/internal/domain/catalog"
	"github.com/amore/clue/pkg/logger"
)

// handleLLM handles POST /api/llm/{route}.
func (s *Server) handleLLM(w http.ResponseWriter, r *http.Request) {
	route, ok := llm.Lookup(r.PathValue("route"))
	if !ok || route.Chat {
		writeJSON(w, http.StatusNotFound, proxyErrorResponse{Error: NewKind(r.PathValue("route"), llm.ErrUnknownRoute).Error()})
		return
	}
	s.forward(w, r, route)
}

// handleChat handles POST /api/chat/{kind}.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	route, ok := llm.Lookup("chat/" + r.PathValue("kind"))
	if !ok || !route.Chat {
		writeJSON(w, http.StatusNotFound, proxyErrorResponse{Error: NewKind(r.PathValue("kind"), llm.ErrUnknownRoute).Error()})
		return
	}
	s.forward(w, r, route)
}

// forward relays the request body to route's upstream and its reply back.
func (s *Server) forward(w http.ResponseWriter, r *http.Request, route llm.Route) {
	body, err := readBody(r)
	if err != nil {
		writeProxyError(w, err)
		return
	}
	if s.proxy == nil {
		err := NewKind(route.Name, ErrUnavailable)
		if route.Name == llm.RouteKBeautyTrends {
			s.kbeautyFallback(w, r, body, err)
			return
		}
		writeProxyError(w, err)
		return
	}

	resp, err := s.proxy.Forward(r.Context(), route, body)
	if err != nil {
		if route.Name == llm.RouteKBeautyTrends && errors.Is(err, llm.ErrUpstreamUnavailable) {
			s.kbeautyFallback(w, r, body, err)
			return
		}
		writeProxyError(w, err)
		return
	}

	ct := resp.ContentType
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

// kbeautyFallback answers 200 with a narrative built from the request's own figures.
func (s *Server) kbeautyFallback(w http.ResponseWriter, r *http.Request, body []byte, cause error) {
	var req catalog.KBeautyRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			s.logger.Debug(r.Context(), "kbeauty fallback body unreadable", logger.Error(err))
		}
	}
	s.logger.Warn(r.Context(), "kbeauty trend analysis unavailable, serving fallback", logger.Error(cause))
	writeJSON(w, http.StatusOK, catalog.KBeautyFallback(req))
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, WrapKind("read body", ErrPayloadTooBig, err)
		}
		return nil, WrapKind("read body", ErrBadRequest, err)
	}
	return body, nil
}

func writeProxyError(w http.ResponseWriter, err error) {
	status := http.StatusServiceUnavailable
	switch {
	case errors.Is(err, ErrPayloadTooBig):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrBadRequest), errors.Is(err, llm.ErrInvalidBody):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, proxyErrorResponse{Error: err.Error()})
}

type llmHealthResponse struct {
	Status string `json:"status"`
	llm.HealthReport
	Total int `json:"total"`
}

// handleLLMHealth handles GET /api/llm/health. Every upstream is probed; one
// failing probe never hides the others.
func (s *Server) handleLLMHealth(w http.ResponseWriter, r *http.Request) {
	if s.proxy == nil {
		writeJSON(w, http.StatusOK, llmHealthResponse{Status: "down", HealthReport: llm.HealthReport{Upstreams: []llm.UpstreamHealth{}}})
		return
	}
	report := s.proxy.Health(r.Context())
	status := "degraded"
	switch report.Healthy {
	case len(report.Upstreams):
		status = "ok"
	case 0:
		status = "down"
	}
	writeJSON(w, http.StatusOK, llmHealthResponse{Status: status, HealthReport: report, Total: len(report.Upstreams)})
}

type ingredientRequest struct {
	Ingredient string `json:"ingredient"`
}

type ingredientResponse struct {
	Success bool `json:"success"`
	catalog.IngredientInfo
}

// handleIngredientDetail handles POST /api/llm/ingredient-detail from the
// local ingredient dictionary.
func (s *Server) handleIngredientDetail(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeProxyError(w, err)
		return
	}
	var req ingredientRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeProxyError(w, WrapKind("ingredient detail", ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, ingredientResponse{Success: true, IngredientInfo: catalog.IngredientDetail(req.Ingredient)})
}
