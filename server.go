// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// Server is the interactive dashboard. Every request that needs panels runs
// one render pass over the shared, read-only dataset.
type Server struct {
	config   *Config
	dataset  *Dataset
	analyzer *Analyzer
	html     *HTMLReporter
	json     *JSONReporter
	charts   *ChartGenerator
	metrics  *Metrics
	logger   *Logger

	// mu serialises render passes
	mu sync.Mutex
}

// NewServer wires the dashboard handlers around a loaded dataset
func NewServer(config *Config, ds *Dataset, metrics *Metrics, logger *Logger) *Server {
	logger = logger.WithComponent("server")
	charts := NewChartGenerator(config.Charts)

	metrics.SetDataset(ds)

	return &Server{
		config:   config,
		dataset:  ds,
		analyzer: NewAnalyzer(config, logger).WithMetrics(metrics),
		html:     NewHTMLReporter(logger, charts).WithRangeForm(),
		json:     NewJSONReporter(logger),
		charts:   charts,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handler returns the HTTP routes of the dashboard
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/v1/analysis", s.handleAnalysis)
	mux.HandleFunc("GET /api/v1/bounds", s.handleBounds)
	mux.HandleFunc("GET /api/v1/charts/{panel}", s.handleChart)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

// ListenAndServe serves the dashboard until ctx is cancelled, then shuts
// down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Dashboard listening", "addr", s.config.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("Dashboard shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// analyze runs one serialised render pass for the range in the query string
func (s *Server) analyze(r *http.Request) (*AnalysisResult, error) {
	start, err := ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer.Analyze(s.dataset, start, end)
}

// statusFor maps a render pass error to an HTTP status
func statusFor(err error) int {
	var rangeErr *InvalidRangeError
	var validationErr *ValidationError
	if errors.As(err, &rangeErr) || errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := s.analyze(r)

	// render into a buffer so a failure never leaves a half-written page
	var buf bytes.Buffer
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		s.logger.Warn("Render pass rejected", "error", err, "status", status)
		bounds, _ := s.dataset.Bounds()
		s.html.WriteError(&buf, bounds, r.URL.Query().Get("start"), r.URL.Query().Get("end"), err)
	} else {
		s.html.Write(&buf, result)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := s.analyze(r)
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	bounds, err := s.dataset.Bounds()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"start": bounds.Start.Format(DateLayout),
		"end":   bounds.End.Format(DateLayout),
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("panel")

	result, err := s.analyze(r)
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	var panel *Panel
	for _, p := range result.Panels() {
		if p.ID == id {
			panel = p
		}
	}
	if panel == nil {
		s.writeError(w, http.StatusNotFound, "unknown panel "+id)
		return
	}

	png, err := s.charts.RenderPanel(panel)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": GetVersion(),
		"daily":   len(s.dataset.Daily),
		"hourly":  len(s.dataset.Hourly),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := s.json.Write(&buf, v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
