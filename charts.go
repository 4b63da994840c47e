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
	"encoding/base64"
	"fmt"
	"strconv"

	charts "github.com/vicanso/go-charts/v2"
)

// ChartGenerator handles chart generation
type ChartGenerator struct {
	theme  string
	width  int
	height int
}

// NewChartGenerator creates a new chart generator
func NewChartGenerator(cfg ChartConfig) *ChartGenerator {
	return &ChartGenerator{
		theme:  cfg.Theme,
		width:  cfg.Width,
		height: cfg.Height,
	}
}

// hourAxis returns the fixed 0-23 x axis labels
func hourAxis() []string {
	labels := make([]string, HoursPerDay)
	for h := range labels {
		labels[h] = strconv.Itoa(h)
	}
	return labels
}

// hourlySeries expands every label of an aggregate table to 24 values.
// Hours without data are plotted as zero.
func hourlySeries(t *AggregateTable) [][]float64 {
	values := make([][]float64, 0, len(t.Labels))
	for _, label := range t.Labels {
		series, _ := t.Series(label)
		values = append(values, series[:])
	}
	return values
}

// GenerateWeatherChart creates a grouped bar chart of mean usage per hour and weather
func (cg *ChartGenerator) GenerateWeatherChart(panel *Panel) ([]byte, error) {
	if panel.Aggregate == nil || len(panel.Aggregate.Labels) == 0 {
		return nil, fmt.Errorf("no weather data available")
	}

	p, err := charts.BarRender(
		hourlySeries(panel.Aggregate),
		charts.TitleTextOptionFunc(panel.Title),
		charts.XAxisDataOptionFunc(hourAxis()),
		charts.LegendLabelsOptionFunc(panel.Aggregate.Labels, charts.PositionRight),
		charts.ThemeOptionFunc(cg.getTheme()),
		charts.WidthOptionFunc(cg.width),
		charts.HeightOptionFunc(cg.height),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render weather chart: %w", err)
	}

	return chartBytes(p)
}

// GenerateWorkdayChart creates a line chart of mean usage per hour, one line per flag
func (cg *ChartGenerator) GenerateWorkdayChart(panel *Panel) ([]byte, error) {
	if panel.Aggregate == nil || len(panel.Aggregate.Labels) == 0 {
		return nil, fmt.Errorf("no workday data available")
	}

	p, err := charts.LineRender(
		hourlySeries(panel.Aggregate),
		charts.TitleTextOptionFunc(panel.Title),
		charts.XAxisDataOptionFunc(hourAxis()),
		charts.LegendLabelsOptionFunc(panel.Aggregate.Labels, charts.PositionRight),
		charts.ThemeOptionFunc(cg.getTheme()),
		charts.WidthOptionFunc(cg.width),
		charts.HeightOptionFunc(cg.height),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render workday chart: %w", err)
	}

	return chartBytes(p)
}

// GenerateRFMChart renders the label x hour score pivot as a table image
func (cg *ChartGenerator) GenerateRFMChart(panel *Panel) ([]byte, error) {
	if panel.RFM == nil || len(panel.RFM.Pivot) == 0 {
		return nil, fmt.Errorf("no RFM scores available")
	}

	header, rows := rfmTableCells(panel.RFM)
	p, err := charts.TableRender(header, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to render RFM table: %w", err)
	}

	return chartBytes(p)
}

// GeneratePanelChart renders a panel as base64 PNG for embedding in HTML
func (cg *ChartGenerator) GeneratePanelChart(panel *Panel) (string, error) {
	buf, err := cg.RenderPanel(panel)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// RenderPanel picks the chart type for a panel and returns the PNG bytes
func (cg *ChartGenerator) RenderPanel(panel *Panel) ([]byte, error) {
	if panel.Failed() {
		return nil, fmt.Errorf("panel %s failed: %s", panel.ID, panel.Error)
	}

	switch panel.ID {
	case PanelWeather:
		return cg.GenerateWeatherChart(panel)
	case PanelWorkday:
		return cg.GenerateWorkdayChart(panel)
	case PanelRFMWeather, PanelRFMWorkday:
		return cg.GenerateRFMChart(panel)
	default:
		return nil, fmt.Errorf("unknown panel %q", panel.ID)
	}
}

// rfmTableCells lays the pivot out as strings; absent cells are blank
func rfmTableCells(t *RFMTable) ([]string, [][]string) {
	header := append([]string{""}, hourAxis()...)
	rows := make([][]string, 0, len(t.Pivot))
	for _, p := range t.Pivot {
		row := make([]string, 0, HoursPerDay+1)
		row = append(row, p.Label)
		for h := 0; h < HoursPerDay; h++ {
			if p.Present[h] {
				row = append(row, strconv.Itoa(p.Scores[h]))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return header, rows
}

func chartBytes(p *charts.Painter) ([]byte, error) {
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// getTheme returns the chart theme name
func (cg *ChartGenerator) getTheme() string {
	return cg.theme
}
