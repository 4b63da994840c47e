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
	"math"
)

// MinMaxScaler maps [Min, Max] linearly onto [Lo, Hi]
type MinMaxScaler struct {
	Lo, Hi   float64
	Min, Max float64
}

// FitMinMax fits a single scaler over every value of every column given
func FitMinMax(lo, hi float64, columns ...[]float64) MinMaxScaler {
	s := MinMaxScaler{Lo: lo, Hi: hi, Min: math.Inf(1), Max: math.Inf(-1)}
	for _, col := range columns {
		for _, v := range col {
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
		}
	}
	if math.IsInf(s.Min, 1) {
		// nothing to fit
		s.Min, s.Max = 0, 0
	}
	return s
}

// Degenerate reports whether the fitted data had no variance
func (s MinMaxScaler) Degenerate() bool {
	return s.Max == s.Min
}

// Transform rescales x. With no variance every value maps to Lo.
func (s MinMaxScaler) Transform(x float64) float64 {
	if s.Degenerate() {
		return s.Lo
	}
	return s.Lo + (x-s.Min)/(s.Max-s.Min)*(s.Hi-s.Lo)
}

// Inverse maps a rescaled value back onto the original scale
func (s MinMaxScaler) Inverse(y float64) float64 {
	if s.Degenerate() || s.Hi == s.Lo {
		return s.Min
	}
	return s.Min + (y-s.Lo)/(s.Hi-s.Lo)*(s.Max-s.Min)
}

// RFMOptions controls the rescale ranges of the scorer
type RFMOptions struct {
	RecencyMax float64
	ValueMax   float64

	// JointScaling fits one scaler over frequency and monetary together.
	// When false each column gets its own fit.
	JointScaling bool
}

// DefaultRFMOptions returns the standard 0-24 / 0-800 ranges with joint scaling
func DefaultRFMOptions() RFMOptions {
	return RFMOptions{
		RecencyMax:   DefaultRecencyMax,
		ValueMax:     DefaultValueMax,
		JointScaling: true,
	}
}

// MaxScore is the largest score the options can produce
func (o RFMOptions) MaxScore() int {
	return int(math.RoundToEven((o.RecencyMax + 2*o.ValueMax) / 3))
}

// ScoreRFM computes recency, frequency and monetary figures for each
// (category, hour) group of records, rescales them and combines them into a
// single score, then pivots the scores into a label x hour table.
func ScoreRFM(ds *Dataset, records []HourlyRecord, key GroupKey, opts RFMOptions) (*RFMTable, error) {
	if missing := ds.MissingColumns(ColHour, key.Column, ColCount); len(missing) > 0 {
		return nil, &MissingColumnsError{Table: "hourly", Columns: missing}
	}

	g := groupByHour(records, key)
	table := &RFMTable{
		Dimension: key.Column,
		Rows:      make([]RFMRow, 0, len(g.order)),
		MaxScore:  opts.MaxScore(),
		Warnings:  g.warnings,
	}
	if len(g.order) == 0 {
		table.Warnings = append(table.Warnings, "no records to score")
		return table, nil
	}

	latest := 0
	for _, c := range g.order {
		if h := g.cells[c].maxHour; h > latest {
			latest = h
		}
	}

	recency := make([]float64, len(g.order))
	frequency := make([]float64, len(g.order))
	monetary := make([]float64, len(g.order))
	for i, c := range g.order {
		stats := g.cells[c]
		label, _ := key.Labels.Label(c.code)

		// distance from the latest hour seen anywhere in the table
		recency[i] = float64(latest - stats.maxHour)
		frequency[i] = float64(stats.count)
		monetary[i] = stats.sum

		table.Rows = append(table.Rows, RFMRow{
			Code:      c.code,
			Label:     label,
			Hour:      c.hour,
			Recency:   recency[i],
			Frequency: frequency[i],
			Monetary:  monetary[i],
		})
	}

	recencyScaler := FitMinMax(0, opts.RecencyMax, recency)
	frequencyScaler := FitMinMax(0, opts.ValueMax, frequency, monetary)
	monetaryScaler := frequencyScaler
	if !opts.JointScaling {
		frequencyScaler = FitMinMax(0, opts.ValueMax, frequency)
		monetaryScaler = FitMinMax(0, opts.ValueMax, monetary)
	}
	for _, s := range []MinMaxScaler{recencyScaler, frequencyScaler, monetaryScaler} {
		if s.Degenerate() {
			table.Warnings = append(table.Warnings, "insufficient variance to rescale, using lower bound")
			break
		}
	}

	for i := range table.Rows {
		row := &table.Rows[i]
		row.RecencyScaled = recencyScaler.Transform(row.Recency)
		row.FrequencyScaled = frequencyScaler.Transform(row.Frequency)
		row.MonetaryScaled = monetaryScaler.Transform(row.Monetary)
		row.Score = int(math.RoundToEven((row.RecencyScaled + row.FrequencyScaled + row.MonetaryScaled) / 3))
	}

	table.Pivot = pivotScores(table.Rows, key.Labels)
	return table, nil
}

// pivotScores lays scores out as one row per label and one column per hour
func pivotScores(rows []RFMRow, labels LabelMap) []RFMPivotRow {
	byCode := make(map[int]*RFMPivotRow)
	for _, row := range rows {
		p, ok := byCode[row.Code]
		if !ok {
			p = &RFMPivotRow{Label: row.Label}
			byCode[row.Code] = p
		}
		p.Scores[row.Hour] = row.Score
		p.Present[row.Hour] = true
	}

	var pivot []RFMPivotRow
	for _, code := range labels.Codes() {
		if p, ok := byCode[code]; ok {
			pivot = append(pivot, *p)
		}
	}
	return pivot
}
