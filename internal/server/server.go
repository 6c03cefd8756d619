// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the gap-finding pipeline over HTTP.
//
// Route table:
//
//	GET  /api/categories   discipline, field and topic lookups
//	POST /api/gaps         run the pipeline, streamed as NDJSON events
//	GET  /healthz          liveness
//	GET  /metrics          Prometheus scrape
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/internal/categories"
	"github.com/pdiddy/litgap/internal/logging"
	"github.com/pdiddy/litgap/internal/metrics"
	"github.com/pdiddy/litgap/internal/pipeline"
)

const defaultShutdownTimeout = 10 * time.Second

// Runner runs one pipeline request.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Server holds the collaborators for the HTTP shell. Every request builds its
// own pipeline state; nothing request-specific is stored here.
type Server struct {
	Runner     Runner
	Categories *categories.Table
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// Handler builds the route table wrapped in request-id and metrics
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("GET /api/categories", s.categories)
	mux.HandleFunc("POST /api/gaps", s.gaps)
	mux.Handle("GET /metrics", s.Metrics.Handler())

	var chain http.Handler = mux
	chain = s.observe(chain)
	chain = requestID(chain)
	return chain
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully,
// waiting at most shutdownTimeout for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	log := logging.OrNop(s.Logger)
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// categories answers one level of the cascade: no parameters lists
// disciplines, discipline lists its fields, discipline plus field lists
// topics.
func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	tbl := s.Categories
	if tbl == nil {
		tbl = categories.Default()
	}
	discipline := r.URL.Query().Get("discipline")
	field := r.URL.Query().Get("field")

	switch {
	case discipline == "" && field == "":
		writeJSON(w, http.StatusOK, map[string][]string{"disciplines": tbl.Disciplines()})
	case field == "":
		writeJSON(w, http.StatusOK, map[string][]string{"fields": tbl.Fields(discipline)})
	case discipline == "":
		writeError(w, http.StatusBadRequest, "field requires discipline")
	default:
		writeJSON(w, http.StatusOK, map[string][]string{"topics": tbl.Topics(discipline, field)})
	}
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	log := logging.OrNop(s.Logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.Metrics.ObserveHTTP(route, strconv.Itoa(sw.status), start)
		log.Debug("request",
			zap.String("route", route),
			zap.Int("status", sw.status),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", w.Header().Get("X-Request-ID")),
		)
	})
}

// statusWriter records the response status and keeps streaming working.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	return sw.ResponseWriter.Write(b)
}

func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func errorStatus(err error) int {
	return apperr.HTTPStatus(err)
}
