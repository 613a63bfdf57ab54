package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/amore/clue/internal/adapters/repository"
	"github.com/amore/clue/pkg/logger"
)

const (
	codeBadRequest     = "bad_request"
	codeNotFound       = "not_found"
	codeUnavailable    = "db_unavailable"
	codeInternal       = "internal"
	msgNotConnected    = "Database not connected"
	msgPlatformMissing = "플랫폼 데이터를 찾을 수 없습니다"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type proxyErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// missingParam answers 400 for a required query parameter.
func missingParam(w http.ResponseWriter, name string) {
	writeError(w, http.StatusBadRequest, codeBadRequest, name+" parameter required")
}

// writeStoreError maps err onto a JSON error response and returns the status written.
func writeStoreError(w http.ResponseWriter, err error) int {
	switch {
	case errors.Is(err, repository.ErrNotConnected):
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, msgNotConnected)
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return http.StatusBadRequest
	case isNotFound(err):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
		return http.StatusNotFound
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		return http.StatusInternalServerError
	}
}

// fail answers a failed handler operation and logs unexpected errors.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	err = Wrap(op, err)
	if writeStoreError(w, err) == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, repository.ErrNotFound)
}

// query returns the trimmed query value of key, or def when it is empty.
func query(r *http.Request, key, def string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		return v
	}
	return def
}

// queryInt parses the leading digits of a query value, so "8weeks" reads as 8.
// Missing, unparsable and non-positive values yield def; values above ceil are capped.
func queryInt(r *http.Request, key string, def, ceil int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	end := strings.IndexFunc(v, func(c rune) bool { return !unicode.IsDigit(c) })
	if end >= 0 {
		v = v[:end]
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if ceil > 0 && n > ceil {
		return ceil
	}
	return n
}

// splitList splits a comma separated query value into trimmed, non-empty parts.
func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
