package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/poiesic/newsroom/core"
	"github.com/poiesic/newsroom/storage"
)

const (
	defaultAdminFetchLimit = 5
	maxListLimit           = 100
)

// CycleRunner triggers one ingestion cycle. *ingestion.Pipeline satisfies it.
type CycleRunner interface {
	RunCycle(ctx context.Context, limit int) ([]core.ID, error)
}

// Server serves the news read API plus the manual fetch trigger.
type Server struct {
	store       storage.RecordStore
	runner      CycleRunner
	preferences *Preferences
	logger      *slog.Logger
	httpServer  *http.Server
}

// NewServer creates a server listening on addr. runner may be nil, in which
// case the fetch trigger answers 503.
func NewServer(addr string, store storage.RecordStore, runner CycleRunner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:       store,
		runner:      runner,
		preferences: NewPreferences(),
		logger:      logger.With("component", "httpapi"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /news", s.handleListNews)
	mux.HandleFunc("GET /news/{id}", s.handleGetNews)
	mux.HandleFunc("POST /admin/fetch", s.handleAdminFetch)
	mux.HandleFunc("POST /users/{id}/preferences", s.handleSavePreferences)
	mux.HandleFunc("GET /users/{id}/preferences", s.handleGetPreferences)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      withLogging(s.logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	id := core.ID(r.PathValue("id"))
	record, err := s.store.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NotFound", "news not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get news", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to get news")
		return
	}
	writeJSON(w, http.StatusOK, renderNews(record))
}

func (s *Server) handleListNews(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, storage.DefaultListLimit)
	if !ok {
		return
	}

	var topic core.Topic
	if raw := r.URL.Query().Get("topic"); raw != "" {
		parsed, known := core.ParseTopic(raw)
		if !known {
			// Nothing is ever stored under an unknown topic.
			writeJSON(w, http.StatusOK, []NewsView{})
			return
		}
		topic = parsed
	}

	records, err := s.store.List(r.Context(), topic, limit)
	if err != nil {
		s.logger.Error("failed to list news", "topic", topic, "limit", limit, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to list news")
		return
	}
	writeJSON(w, http.StatusOK, renderList(records))
}

func (s *Server) handleAdminFetch(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "Unavailable", "ingestion is not configured")
		return
	}
	limit, ok := parseLimit(w, r, defaultAdminFetchLimit)
	if !ok {
		return
	}

	ids, err := s.runner.RunCycle(r.Context(), limit)
	if err != nil {
		s.logger.Error("manual fetch failed", "limit", limit, "error", err)
		writeError(w, http.StatusServiceUnavailable, "Unavailable", err.Error())
		return
	}
	if ids == nil {
		ids = []core.ID{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"inserted": len(ids),
		"ids":      ids,
	})
}

type preferencesRequest struct {
	Topics []string `json:"topics"`
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("id")

	var req preferencesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "body must be {\"topics\": [...]}")
		return
	}
	if req.Topics == nil {
		req.Topics = []string{}
	}

	s.preferences.Set(user, req.Topics)
	writeJSON(w, http.StatusOK, map[string]any{
		"saved":  true,
		"topics": req.Topics,
	})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	topics, ok := s.preferences.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "no preferences saved")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

// parseLimit reads ?limit=, writing a 400 and returning false when invalid.
func parseLimit(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	l := r.URL.Query().Get("limit")
	if l == "" {
		return def, true
	}
	parsed, err := strconv.Atoi(l)
	if err != nil || parsed < 1 || parsed > maxListLimit {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "limit must be between 1 and 100")
		return 0, false
	}
	return parsed, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]string{
		"error":   errType,
		"message": message,
	})
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
