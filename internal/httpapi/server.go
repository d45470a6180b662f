// Package httpapi exposes the pipeline over a local-only, read-only HTTP
// surface: health, metrics, and on-demand prediction runs served through the
// result cache.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/OptionsTradingUni/aipredixt/internal/config"
	"github.com/OptionsTradingUni/aipredixt/internal/metrics"
	"github.com/OptionsTradingUni/aipredixt/internal/pipeline"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// requestTimeout bounds one prediction request end to end, collaborator
// calls included.
const requestTimeout = 30 * time.Second

// Server serves the read-only API. All prediction traffic funnels through
// the orchestrator's cached entry point.
type Server struct {
	router       *mux.Router
	server       *http.Server
	orchestrator *pipeline.Orchestrator
	registry     *metrics.Registry
	cfg          config.HTTPConfig
	startedAt    time.Time
}

// NewServer builds the server and verifies the port is free up front so a
// busy port fails fast instead of at first request.
func NewServer(cfg config.HTTPConfig, orch *pipeline.Orchestrator, registry *metrics.Registry) (*Server, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("port %d is busy or unavailable: %w", cfg.Port, err)
	}
	listener.Close()

	s := &Server{
		router:       mux.NewRouter(),
		orchestrator: orch,
		registry:     registry,
		cfg:          cfg,
		startedAt:    time.Now(),
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry.Prometheus(), promhttp.HandlerOpts{})).Methods("GET")
	s.router.HandleFunc("/predictions/{sport}", s.handlePredictions).Methods("GET")

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		requestID, _ := r.Context().Value(requestIDKey).(string)
		log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("http request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
	})
}

// handlePredictions runs (or serves from cache) one pipeline pass.
// Query params: date (optional filter), mode (all|best, default all).
func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	sport := mux.Vars(r)["sport"]
	dateFilter := r.URL.Query().Get("date")

	mode := pipeline.ModeAnalyzeAll
	switch r.URL.Query().Get("mode") {
	case "", "all":
	case "best":
		mode = pipeline.ModeBestPick
	default:
		writeError(w, http.StatusBadRequest, "mode must be all or best")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, cached, err := s.orchestrator.RunCached(ctx, sport, dateFilter, mode)
	if err != nil {
		if err == pipeline.ErrNoCandidates {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("X-Cache", cacheHeader(cached))
	writeJSON(w, http.StatusOK, result)
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// Start blocks serving requests until shutdown or listener failure.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("http server starting (local-only, read-only)")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("http server shutting down")
	return s.server.Shutdown(ctx)
}

// Address returns the bind address.
func (s *Server) Address() string {
	return s.server.Addr
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("response encode failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
