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
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Analyzer runs one render pass: range resolution, filtering and the four panels
type Analyzer struct {
	config  *Config
	logger  *Logger
	metrics *Metrics
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(config *Config, logger *Logger) *Analyzer {
	return &Analyzer{
		config: config,
		logger: logger,
	}
}

// WithMetrics attaches a metrics recorder to the analyzer
func (a *Analyzer) WithMetrics(m *Metrics) *Analyzer {
	a.metrics = m
	return a
}

// Analyze computes every panel for the inclusive range [start, end]. Zero
// dates default to the dataset bounds. An invalid range fails the whole pass;
// any other problem is confined to the panel it occurs in.
func (a *Analyzer) Analyze(ds *Dataset, start, end time.Time) (*AnalysisResult, error) {
	began := time.Now()
	runID := uuid.NewString()
	logger := a.logger.WithRunID(runID)

	bounds, err := ds.Bounds()
	if err != nil {
		return nil, err
	}

	r, err := ResolveRange(bounds, start, end)
	if err != nil {
		a.metrics.ObserveRenderPass("invalid_range", time.Since(began))
		return nil, err
	}

	records, err := FilterRange(ds.Hourly, r.Start, r.End)
	if err != nil {
		a.metrics.ObserveRenderPass("invalid_range", time.Since(began))
		return nil, err
	}

	result := &AnalysisResult{
		RunID:        runID,
		GeneratedAt:  time.Now(),
		Range:        r,
		Bounds:       bounds,
		RFMRange:     bounds,
		Locale:       a.config.Locale,
		RecordsTotal: len(ds.Hourly),
		RecordsInUse: len(records),
	}
	for _, rec := range records {
		result.RentalsInUse += rec.Count
	}

	// RFM covers the whole dataset unless configured to follow the selection
	rfmRecords := ds.Hourly
	if a.config.RFM.ApplyDateRange {
		rfmRecords = records
		result.RFMRange = r
	}

	locale := a.config.Locale
	opts := a.config.RFM.Options()

	result.Weather = a.aggregatePanel(logger, PanelWeather, func() (*AggregateTable, error) {
		return AggregateWeather(ds, records, locale)
	})
	result.Workday = a.aggregatePanel(logger, PanelWorkday, func() (*AggregateTable, error) {
		return AggregateWorkday(ds, records, locale)
	})
	result.RFMWeather = a.rfmPanel(logger, PanelRFMWeather, func() (*RFMTable, error) {
		return ScoreRFM(ds, rfmRecords, WeatherKey(locale), opts)
	})
	result.RFMWorkday = a.rfmPanel(logger, PanelRFMWorkday, func() (*RFMTable, error) {
		return ScoreRFM(ds, rfmRecords, WorkdayKey(locale), opts)
	})

	result.Weather.Insights = weatherInsights(result.Weather.Aggregate)
	result.Workday.Insights = workdayInsights(result.Workday.Aggregate, locale)
	result.RFMWeather.Insights = rfmInsights(result.RFMWeather.RFM)
	result.RFMWorkday.Insights = rfmInsights(result.RFMWorkday.RFM)

	elapsed := time.Since(began)
	a.metrics.ObserveRenderPass("ok", elapsed)
	logger.LogRenderPass(r, len(records), elapsed)

	return result, nil
}

func (a *Analyzer) aggregatePanel(logger *Logger, id string, compute func() (*AggregateTable, error)) Panel {
	panel := Panel{ID: id, Title: PanelTitle(a.config.Locale, id)}

	table, err := compute()
	if err != nil {
		logger.LogPanel(id, 0, err)
		a.metrics.IncPanelError(id)
		panel.Error = err.Error()
		return panel
	}

	logger.LogPanel(id, len(table.Rows), nil)
	for _, w := range table.Warnings {
		logger.LogPanelWarning(id, w)
	}
	panel.Aggregate = table
	return panel
}

func (a *Analyzer) rfmPanel(logger *Logger, id string, compute func() (*RFMTable, error)) Panel {
	panel := Panel{ID: id, Title: PanelTitle(a.config.Locale, id)}

	table, err := compute()
	if err != nil {
		logger.LogPanel(id, 0, err)
		a.metrics.IncPanelError(id)
		panel.Error = err.Error()
		return panel
	}

	logger.LogPanel(id, len(table.Rows), nil)
	for _, w := range table.Warnings {
		logger.LogPanelWarning(id, w)
	}
	panel.RFM = table
	return panel
}

// peak is the busiest hour of one label's series
type peak struct {
	label string
	hour  int
	mean  float64
}

// seriesPeak returns the busiest hour within [from, to) for label
func seriesPeak(t *AggregateTable, label string, from, to int) (peak, bool) {
	values, present := t.Series(label)
	best := peak{label: label, hour: -1}
	for h := from; h < to; h++ {
		if present[h] && (best.hour < 0 || values[h] > best.mean) {
			best.hour = h
			best.mean = values[h]
		}
	}
	return best, best.hour >= 0
}

// seriesMean averages the hours of a label that have data
func seriesMean(t *AggregateTable, label string) float64 {
	values, present := t.Series(label)
	var observed []float64
	for h := range values {
		if present[h] {
			observed = append(observed, values[h])
		}
	}
	return calculateMean(observed)
}

func weatherInsights(t *AggregateTable) []Insight {
	if t == nil || len(t.Labels) == 0 {
		return nil
	}

	var insights []Insight
	var peaks []peak
	for _, label := range t.Labels {
		if p, ok := seriesPeak(t, label, 0, HoursPerDay); ok {
			peaks = append(peaks, p)
		}
	}
	if len(peaks) == 0 {
		return nil
	}

	best := peaks[0]
	for _, p := range peaks[1:] {
		if p.mean > best.mean {
			best = p
		}
	}
	insights = append(insights, Insight{
		Category:    "weather",
		Priority:    "high",
		Title:       "Busiest Weather and Hour",
		Description: fmt.Sprintf("%s weather at %s has the highest average usage, %.0f rentals per hour", best.label, formatHour(best.hour), best.mean),
	})

	// compare the best and worst observed weather over their shared hours
	first, last := t.Labels[0], t.Labels[len(t.Labels)-1]
	if first != last {
		firstMean := seriesMean(t, first)
		lastMean := seriesMean(t, last)
		if firstMean > 0 {
			drop := (firstMean - lastMean) / firstMean * 100
			priority := "medium"
			if math.Abs(drop) >= 50 {
				priority = "high"
			}
			insights = append(insights, Insight{
				Category:    "weather",
				Priority:    priority,
				Title:       fmt.Sprintf("%s vs %s", first, last),
				Description: fmt.Sprintf("Average hourly usage under %s is %.0f compared to %.0f under %s (%s)", last, lastMean, firstMean, first, FormatPercentage(-drop)),
			})
		}
	}

	for _, w := range t.Warnings {
		insights = append(insights, Insight{
			Category:    "weather",
			Priority:    "low",
			Title:       "Excluded Records",
			Description: w,
		})
	}

	return insights
}

func workdayInsights(t *AggregateTable, locale string) []Insight {
	if t == nil || len(t.Labels) == 0 {
		return nil
	}

	labels := WorkdayLabels(locale)
	workday, _ := labels.Label(1)
	holiday, _ := labels.Label(0)

	var insights []Insight

	morning, okMorning := seriesPeak(t, workday, 0, 12)
	evening, okEvening := seriesPeak(t, workday, 12, HoursPerDay)
	if okMorning && okEvening {
		insights = append(insights, Insight{
			Category:    "workday",
			Priority:    "high",
			Title:       "Commute Peaks",
			Description: fmt.Sprintf("%s usage peaks at %s (%.0f) and %s (%.0f)", workday, formatHour(morning.hour), morning.mean, formatHour(evening.hour), evening.mean),
		})
	}

	if p, ok := seriesPeak(t, holiday, 0, HoursPerDay); ok {
		insights = append(insights, Insight{
			Category:    "workday",
			Priority:    "medium",
			Title:       "Leisure Peak",
			Description: fmt.Sprintf("%s usage peaks at %s with %.0f rentals per hour", holiday, formatHour(p.hour), p.mean),
		})
	}

	if okMorning {
		if v, ok := t.Lookup(holiday, morning.hour); ok && v > 0 {
			insights = append(insights, Insight{
				Category:    "workday",
				Priority:    "low",
				Title:       "Morning Rush",
				Description: fmt.Sprintf("At %s %s usage is %.1fx %s usage", formatHour(morning.hour), workday, morning.mean/v, holiday),
			})
		}
	}

	return insights
}

// topRFMCells returns up to n rows ordered by descending score
func topRFMCells(t *RFMTable, n int) []RFMRow {
	rows := make([]RFMRow, len(t.Rows))
	copy(rows, t.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

func rfmInsights(t *RFMTable) []Insight {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}

	var insights []Insight
	top := topRFMCells(t, 3)
	for i, row := range top {
		priority := "medium"
		if i == 0 {
			priority = "high"
		}
		insights = append(insights, Insight{
			Category:    "rfm",
			Priority:    priority,
			Title:       fmt.Sprintf("%s at %s", row.Label, formatHour(row.Hour)),
			Description: fmt.Sprintf("Score %d of %d from %.0f hourly records totalling %.0f rentals", row.Score, t.MaxScore, row.Frequency, row.Monetary),
		})
	}

	for _, w := range t.Warnings {
		insights = append(insights, Insight{
			Category:    "rfm",
			Priority:    "low",
			Title:       "Scoring Note",
			Description: w,
		})
	}

	return insights
}

// calculateMean calculates the mean of a slice of values
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// formatHour renders an hour of the day as HH:00
func formatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// FormatPercentage formats a percentage value
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}
