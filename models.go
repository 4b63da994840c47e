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
	"time"
)

// HourlyRecord is one row of the hour-level rental table
type HourlyRecord struct {
	Date    time.Time `json:"date"`
	Hour    int       `json:"hour"`    // 0-23
	Weather int       `json:"weather"` // 1 clear .. 4 severe
	Workday int       `json:"workday"` // 1 working day, 0 weekend/holiday
	Count   int       `json:"count"`   // total rentals in the hour
}

// DailyRecord is one row of the day-level rental table
type DailyRecord struct {
	Date time.Time `json:"date"`
}

// DateRange is an inclusive range of calendar days
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the number of calendar days covered by the range
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains reports whether t falls on a day inside the range
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Dataset is the immutable in-memory copy of both source tables.
// It is loaded once and shared read-only between render passes.
type Dataset struct {
	Daily  []DailyRecord
	Hourly []HourlyRecord

	// HourlyColumns holds the header names present in the hourly source
	HourlyColumns map[string]bool

	DaySource  string
	HourSource string
	LoadedAt   time.Time
}

// MissingColumns returns the subset of required columns missing from the hourly table
func (d *Dataset) MissingColumns(required ...string) []string {
	var missing []string
	for _, col := range required {
		if !d.HourlyColumns[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// AggregateRow is the mean usage for one (hour, category) pair
type AggregateRow struct {
	Hour    int     `json:"hour"`
	Code    int     `json:"code"`
	Label   string  `json:"label"`
	Mean    float64 `json:"mean"`
	Samples int     `json:"samples"`
}

// AggregateTable is the output of the weather or workday aggregator
type AggregateTable struct {
	Dimension string         `json:"dimension"`
	Labels    []string       `json:"labels"` // in code order, only labels with data
	Rows      []AggregateRow `json:"rows"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// Series returns the 24-slot hourly series for a label. Hours with no data
// are reported as absent in the second return value.
func (t *AggregateTable) Series(label string) ([HoursPerDay]float64, [HoursPerDay]bool) {
	var values [HoursPerDay]float64
	var present [HoursPerDay]bool
	for _, row := range t.Rows {
		if row.Label == label {
			values[row.Hour] = row.Mean
			present[row.Hour] = true
		}
	}
	return values, present
}

// Lookup returns the mean for a label and hour
func (t *AggregateTable) Lookup(label string, hour int) (float64, bool) {
	for _, row := range t.Rows {
		if row.Label == label && row.Hour == hour {
			return row.Mean, true
		}
	}
	return 0, false
}

// RFMRow holds the raw and rescaled metrics for one (group, hour) cell
type RFMRow struct {
	Code            int     `json:"code"`
	Label           string  `json:"label"`
	Hour            int     `json:"hour"`
	Recency         float64 `json:"recency"`
	Frequency       float64 `json:"frequency"`
	Monetary        float64 `json:"monetary"`
	RecencyScaled   float64 `json:"recencyScaled"`
	FrequencyScaled float64 `json:"frequencyScaled"`
	MonetaryScaled  float64 `json:"monetaryScaled"`
	Score           int     `json:"score"`
}

// RFMPivotRow is one heatmap row: a label with a cell per hour of the day
type RFMPivotRow struct {
	Label   string            `json:"label"`
	Scores  [HoursPerDay]int  `json:"scores"`
	Present [HoursPerDay]bool `json:"present"`
}

// RFMTable is the scored table plus its label x hour pivot
type RFMTable struct {
	Dimension string        `json:"dimension"`
	Rows      []RFMRow      `json:"rows"`
	Pivot     []RFMPivotRow `json:"pivot"`
	MaxScore  int           `json:"maxScore"`
	Warnings  []string      `json:"warnings,omitempty"`
}

// Panel wraps one dashboard section so a failure stays local to it
type Panel struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Aggregate *AggregateTable `json:"aggregate,omitempty"`
	RFM       *RFMTable       `json:"rfm,omitempty"`
	Insights  []Insight       `json:"insights,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Failed reports whether the panel could not be computed
func (p *Panel) Failed() bool {
	return p.Error != ""
}

// AnalysisResult is everything a single render pass produces
type AnalysisResult struct {
	RunID        string    `json:"runId"`
	GeneratedAt  time.Time `json:"generatedAt"`
	Range        DateRange `json:"range"`
	Bounds       DateRange `json:"bounds"`
	RFMRange     DateRange `json:"rfmRange"`
	Locale       string    `json:"locale"`
	RecordsTotal int       `json:"recordsTotal"`
	RecordsInUse int       `json:"recordsInUse"`
	RentalsInUse int       `json:"rentalsInUse"`

	Weather    Panel `json:"weather"`
	Workday    Panel `json:"workday"`
	RFMWeather Panel `json:"rfmWeather"`
	RFMWorkday Panel `json:"rfmWorkday"`
}

// Panels returns the four dashboard panels in display order
func (r *AnalysisResult) Panels() []*Panel {
	return []*Panel{&r.Weather, &r.Workday, &r.RFMWeather, &r.RFMWorkday}
}

// Insight is a short narrative observation drawn from a computed table
type Insight struct {
	Category    string `json:"category"` // weather, workday, rfm
	Priority    string `json:"priority"` // high, medium, low
	Title       string `json:"title"`
	Description string `json:"description"`
}
