// Package server exposes optimization runs as asynchronous jobs over a JSON
// HTTP API with server-sent-event progress streaming.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwbudde/evosolve/internal/store"
)

// Server is the HTTP job server.
type Server struct {
	jobManager  *JobManager
	resultStore store.Store
	dataDir     string
	addr        string
	server      *http.Server
}

// NewServer creates a server listening on addr. dataDir is where completed
// results and fitness traces are persisted; pass "" to keep everything
// in memory.
func NewServer(addr, dataDir string) (*Server, error) {
	s := &Server{
		jobManager: NewJobManager(),
		dataDir:    dataDir,
		addr:       addr,
	}

	if dataDir != "" {
		st, err := store.NewFSStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open results store: %w", err)
		}
		s.resultStore = st
	}
	return s, nil
}

// Handler builds the route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/runs/", s.handleRunsWithID)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleRuns handles /api/v1/runs
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleRunsWithID handles /api/v1/runs/{id}[/status|/result|/stream|/trace]
func (s *Server) handleRunsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Run ID required", http.StatusBadRequest)
		return
	}
	runID := parts[0]

	switch {
	case len(parts) == 1 || parts[1] == "status":
		s.handleRunStatus(w, r, runID)
	case parts[1] == "result":
		s.handleRunResult(w, r, runID)
	case parts[1] == "stream":
		s.handleRunStream(w, r, runID)
	case parts[1] == "trace":
		s.handleRunTrace(w, r, runID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateRun handles POST /api/v1/runs
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if req.Benchmark == "" {
		http.Error(w, "benchmark is required", http.StatusBadRequest)
		return
	}
	if req.Algorithm == "" {
		req.Algorithm = "jde"
	}
	if req.Dim <= 0 {
		req.Dim = 10
	}
	if req.PopSize <= 0 {
		req.PopSize = 30
	}
	if req.MaxEvals <= 0 {
		req.MaxEvals = 10000
	}
	if req.Tao <= 0 {
		req.Tao = 0.1
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	job := s.jobManager.CreateJob(req)

	go runJob(context.Background(), s.jobManager, s.resultStore, s.dataDir, job.ID)

	writeJSON(w, http.StatusCreated, job)
}

// handleListRuns handles GET /api/v1/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobManager.ListJobs())
}

// handleRunStatus handles GET /api/v1/runs/{id}/status
func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request, runID string) {
	job, exists := s.jobManager.GetJob(runID)
	if !exists {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	var elapsed time.Duration
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime)
	} else {
		elapsed = time.Since(job.StartTime)
	}

	response := map[string]interface{}{
		"id":          job.ID,
		"state":       job.State,
		"config":      job.Config,
		"bestFitness": job.BestFitness,
		"generations": job.Generations,
		"evaluations": job.Evaluations,
		"elapsed":     elapsed.Seconds(),
		"startTime":   job.StartTime,
		"endTime":     job.EndTime,
		"error":       job.Error,
	}
	writeJSON(w, http.StatusOK, response)
}

// handleRunResult handles GET /api/v1/runs/{id}/result
func (s *Server) handleRunResult(w http.ResponseWriter, r *http.Request, runID string) {
	job, exists := s.jobManager.GetJob(runID)
	if !exists {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if job.State != StateCompleted {
		http.Error(w, "No result yet", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":          job.ID,
		"bestVector":  job.BestVector,
		"bestFitness": job.BestFitness,
		"evaluations": job.Evaluations,
	})
}

// handleRunTrace handles GET /api/v1/runs/{id}/trace
func (s *Server) handleRunTrace(w http.ResponseWriter, r *http.Request, runID string) {
	if s.dataDir == "" {
		http.Error(w, "Tracing not enabled", http.StatusNotFound)
		return
	}

	entries, err := store.ReadTrace(s.dataDir, runID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Trace not available: %v", err), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// corsMiddleware adds CORS headers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
