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
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records render pass and panel figures for the dashboard server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	renderPasses   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	panelErrors    *prometheus.CounterVec
	datasetRecords *prometheus.GaugeVec
}

// NewMetrics creates a registry with the Go and process collectors plus
// the dashboard metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		renderPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bikeinsight_render_passes_total",
			Help: "Total number of render passes by outcome.",
		}, []string{"status"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bikeinsight_render_pass_duration_seconds",
			Help:    "Duration of render passes.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		panelErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bikeinsight_panel_errors_total",
			Help: "Total number of panels that could not be computed.",
		}, []string{"panel"}),
		datasetRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bikeinsight_dataset_records",
			Help: "Rows loaded per source table.",
		}, []string{"table"}),
	}

	registry.MustRegister(m.renderPasses)
	registry.MustRegister(m.renderDuration)
	registry.MustRegister(m.panelErrors)
	registry.MustRegister(m.datasetRecords)

	return m
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRenderPass records one render pass
func (m *Metrics) ObserveRenderPass(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.renderPasses.WithLabelValues(status).Inc()
	m.renderDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// IncPanelError records a panel that aborted
func (m *Metrics) IncPanelError(panel string) {
	if m == nil {
		return
	}
	m.panelErrors.WithLabelValues(panel).Inc()
}

// SetDataset records the size of the loaded tables
func (m *Metrics) SetDataset(ds *Dataset) {
	if m == nil {
		return
	}
	m.datasetRecords.WithLabelValues("daily").Set(float64(len(ds.Daily)))
	m.datasetRecords.WithLabelValues("hourly").Set(float64(len(ds.Hourly)))
}
