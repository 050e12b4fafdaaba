// Package server exposes a loaded machine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/turing/internal/driver"
	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/metrics"
)

// maxBodySize bounds a POST /runs request body.
const maxBodySize = 8 << 20

// RunRequest is the body of POST /runs.
type RunRequest struct {
	Tape string `json:"tape"`
}

// RunResponse is the body returned by POST /runs.
type RunResponse struct {
	RunID    string     `json:"run_id"`
	Seq      int64      `json:"seq"`
	Tape     string     `json:"tape"`
	Accepted bool       `json:"accepted"`
	State    ir.State   `json:"state"`
	Steps    uint64     `json:"steps"`
	Error    *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed request or run.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MachineResponse is the body returned by GET /machine.
type MachineResponse struct {
	Hash        string          `json:"hash"`
	Rules       int             `json:"rules"`
	Description json.RawMessage `json:"description"`
}

// Server handles requests for one machine.
type Server struct {
	driver  *driver.Driver
	metrics *metrics.Collector
}

// NewHandler returns the HTTP handler for d. GET /metrics is only routed
// when m is non-nil.
func NewHandler(d *driver.Driver, m *metrics.Collector) http.Handler {
	s := &Server{driver: d, metrics: m}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/runs", s.CreateRun)
	r.Get("/machine", s.GetMachine)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	return r
}

// CreateRun handles POST /runs.
//
// A run error (invalid tape symbol, overflow, step limit) is a client
// problem with the tape and is answered with 422 plus the partial outcome.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, RunResponse{Error: &ErrorBody{Code: "BAD_REQUEST", Message: err.Error()}})
		return
	}

	out, err := s.driver.RunLine(r.Context(), 0, body.Tape)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		slog.Error("run request failed", "error", err)
		writeJSON(w, status, RunResponse{Error: &ErrorBody{Code: "INTERNAL", Message: err.Error()}})
		return
	}

	resp := RunResponse{
		RunID:    out.RunID,
		Seq:      out.Seq,
		Tape:     out.Result.Tape,
		Accepted: out.Accepted(),
		State:    out.Result.State,
		Steps:    out.Result.Steps,
	}
	status := http.StatusOK
	if out.Err != nil {
		status = http.StatusUnprocessableEntity
		resp.Error = &ErrorBody{Code: string(engine.CodeOf(out.Err)), Message: out.Err.Error()}
	}
	writeJSON(w, status, resp)
}

// GetMachine handles GET /machine.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	cfg := s.driver.Config()
	desc, err := ir.MarshalDescription(cfg.Description())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, RunResponse{Error: &ErrorBody{Code: "INTERNAL", Message: err.Error()}})
		return
	}
	writeJSON(w, http.StatusOK, MachineResponse{
		Hash:        cfg.Hash(),
		Rules:       cfg.Table().Len(),
		Description: desc,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("server stopping: context cancelled")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
