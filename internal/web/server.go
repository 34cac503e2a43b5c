package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/movinv/movinv/internal/metrics"
	"github.com/movinv/movinv/internal/service"
)

type Server struct {
	service *service.SessionService
	metrics *metrics.Metrics
	mux     *http.ServeMux
	logger  *slog.Logger
}

func NewServer(svc *service.SessionService, m *metrics.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		service: svc,
		metrics: m,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /sessions", s.handleListSessions)
	s.mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("PATCH /sessions/{id}/safety-factor", s.handleUpdateSafetyFactor)
	s.mux.HandleFunc("GET /sessions/{id}/totals", s.handleGetTotals)
	s.mux.HandleFunc("POST /sessions/{id}/totals/recompute", s.handleRecomputeTotals)

	s.mux.HandleFunc("POST /sessions/{id}/photos", s.handleUploadPhoto)
	s.mux.HandleFunc("GET /sessions/{id}/photos/{idx}", s.handleGetPhoto)
	s.mux.HandleFunc("POST /sessions/{id}/analyze", s.handleAnalyze)

	s.mux.HandleFunc("GET /sessions/{id}/items", s.handleListItems)
	s.mux.HandleFunc("POST /sessions/{id}/items", s.handleAddItem)
	s.mux.HandleFunc("PUT /sessions/{id}/items/{itemID}", s.handleUpdateItem)
	s.mux.HandleFunc("PATCH /sessions/{id}/items/{itemID}/going", s.handleSetItemGoing)
	s.mux.HandleFunc("DELETE /sessions/{id}/items/{itemID}", s.handleDeleteItem)

	s.mux.HandleFunc("POST /sessions/{id}/drafts", s.handleStageDraft)
	s.mux.HandleFunc("GET /sessions/{id}/drafts", s.handleListDrafts)
	s.mux.HandleFunc("POST /sessions/{id}/drafts/commit", s.handleCommitDrafts)
	s.mux.HandleFunc("DELETE /sessions/{id}/drafts", s.handleDiscardDrafts)

	s.mux.HandleFunc("POST /sessions/{id}/shares", s.handleCreateShare)
	s.mux.HandleFunc("GET /sessions/{id}/shares", s.handleListShares)
	s.mux.HandleFunc("DELETE /shares/{token}", s.handleRevokeShare)
	s.mux.HandleFunc("GET /shared/{token}", s.handleSharedGet)
	s.mux.HandleFunc("POST /shared/{token}/items", s.handleSharedAddItem)
	s.mux.HandleFunc("PUT /shared/{token}/items/{itemID}", s.handleSharedUpdateItem)
	s.mux.HandleFunc("PATCH /shared/{token}/items/{itemID}/going", s.handleSharedSetItemGoing)
	s.mux.HandleFunc("DELETE /shared/{token}/items/{itemID}", s.handleSharedDeleteItem)

	s.mux.HandleFunc("GET /sessions/{id}/report", s.handleReport)
	s.mux.HandleFunc("GET /sessions/{id}/report.xlsx", s.handleReportXLSX)

	s.mux.Handle("GET /metrics", s.metrics.Handler())
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the wrapped writer so SSE responses keep streaming through
// the middleware chain.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metrics.RequestInFlight.Inc()
		defer s.metrics.RequestInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// Label by route pattern, not raw path, to keep cardinality bounded.
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.RequestTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(r.Method, pattern).Observe(elapsed.Seconds())

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.instrument(securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s,
		ReadTimeout: 60 * time.Second,
		// Analysis streams stay open for the whole batch; no write timeout.
		IdleTimeout: 120 * time.Second,
	}
	return srv.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func parseItemID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("itemID"), 10, 64)
}

// serviceError maps service-layer failures to HTTP responses.
func (s *Server) serviceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNoPhotos):
		http.Error(w, "session has no photos", http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidSafetyFactor):
		http.Error(w, "safety factor not in allowed set", http.StatusBadRequest)
	case errors.Is(err, service.ErrShareInactive):
		http.Error(w, "share link revoked", http.StatusForbidden)
	default:
		http.Error(w, "failed to "+action, http.StatusInternalServerError)
		s.logger.Error(action+" failed", "error", err)
	}
}
