package api

import (
	"bytes"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/amore/clue/pkg/logger"
	"github.com/amore/clue/pkg/metrics"
)

// HTTP status code constants.
const (
	statusBadRequest      = 400
	statusNotFound        = 404
	statusTooManyRequests = 429
	statusInternalError   = 500
	statusUnavailable     = 503
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// CacheHeader reports whether a response came from the response cache.
const CacheHeader = "X-Cache"

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Milliseconds())
		statusCodeStr := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)

		if wrapped.statusCode >= statusBadRequest {
			errorType := getErrorType(wrapped.statusCode)
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errorType)
			metrics.RecordErrorByType(errorType, getErrorSeverity(wrapped.statusCode))
		}
	}
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode == statusUnavailable:
		return "unavailable"
	case statusCode >= statusInternalError:
		return "server_error"
	case statusCode == statusTooManyRequests:
		return "rate_limit"
	case statusCode == statusNotFound:
		return "not_found"
	case statusCode >= statusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// getErrorSeverity returns error severity based on HTTP status code.
func getErrorSeverity(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "high"
	case statusCode >= statusBadRequest:
		return "medium"
	default:
		return "low"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// RecoverMiddleware turns a handler panic into a 500 response.
func RecoverMiddleware(log logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error(r.Context(), "handler panic",
				logger.String("path", r.URL.Path),
				logger.Any("panic", rec),
				logger.String("stack", string(debug.Stack())))
			metrics.RecordErrorByType("panic", "critical")
			writeError(w, http.StatusInternalServerError, codeInternal, "")
		}()
		next.ServeHTTP(w, r)
	})
}

// RequestIDMiddleware propagates X-Request-ID, generating one when absent,
// and stores it in the request context for logging.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// CORSMiddleware allows the SPA origin, or any origin when frontendURL is empty.
func CORSMiddleware(frontendURL string, next http.Handler) http.Handler {
	origins := []string{"*"}
	if frontendURL != "" {
		origins = []string{strings.TrimRight(frontendURL, "/")}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, CacheHeader},
		MaxAge:         600,
	}).Handler(next)
}

// BodyLimitMiddleware caps request bodies at limit bytes.
func BodyLimitMiddleware(limit int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && limit > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

// requireDB answers 503 before next runs when the store is not connected.
func (s *Server) requireDB(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil || !s.store.Connected() {
			writeError(w, http.StatusServiceUnavailable, codeUnavailable, msgNotConnected)
			return
		}
		next(w, r)
	}
}

// cached serves 200 JSON responses from the response cache, keyed by path
// and sorted query.
func (s *Server) cached(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cache == nil {
			next(w, r)
			return
		}
		key := r.URL.Path + "?" + r.URL.Query().Encode()
		body, ok, err := s.cache.Get(r.Context(), key)
		switch {
		case err != nil:
			metrics.RecordCacheResult(metrics.CacheError)
			s.logger.Warn(r.Context(), "cache read failed", logger.String("key", key), logger.Error(err))
		case ok:
			metrics.RecordCacheResult(metrics.CacheHit)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set(CacheHeader, "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		default:
			metrics.RecordCacheResult(metrics.CacheMiss)
		}

		w.Header().Set(CacheHeader, "MISS")
		rec := &recordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rec, r)
		if rec.statusCode != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
			return
		}
		if err := s.cache.Set(r.Context(), key, rec.body.Bytes(), s.cacheTTL); err != nil {
			metrics.RecordCacheResult(metrics.CacheError)
			s.logger.Warn(r.Context(), "cache write failed", logger.String("key", key), logger.Error(err))
		}
	}
}

// recordingWriter keeps a copy of the body written through it.
type recordingWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}
