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
	"errors"
	"fmt"
	"sort"
)

// GroupKey selects the category a record is grouped under
type GroupKey struct {
	Column string
	Labels LabelMap
	Select func(HourlyRecord) int
}

// WeatherKey groups by weather category
func WeatherKey(locale string) GroupKey {
	return GroupKey{
		Column: ColWeather,
		Labels: WeatherLabels(locale),
		Select: func(r HourlyRecord) int { return r.Weather },
	}
}

// WorkdayKey groups by the working day flag
func WorkdayKey(locale string) GroupKey {
	return GroupKey{
		Column: ColWorkday,
		Labels: WorkdayLabels(locale),
		Select: func(r HourlyRecord) int { return r.Workday },
	}
}

// cell identifies one (category, hour) group
type cell struct {
	code int
	hour int
}

// cellStats accumulates the figures every aggregation needs
type cellStats struct {
	count   int
	sum     float64
	maxHour int
}

// grouping is the result of bucketing records by (category, hour)
type grouping struct {
	cells    map[cell]*cellStats
	order    []cell
	warnings []string
}

// groupByHour buckets records by key and hour. Records whose code has no
// label or whose hour is outside 0-23 are excluded and reported as warnings.
func groupByHour(records []HourlyRecord, key GroupKey) *grouping {
	g := &grouping{cells: make(map[cell]*cellStats)}
	unmapped := make(map[int]int)
	badHours := 0

	for _, rec := range records {
		code := key.Select(rec)
		if _, err := key.Labels.Label(code); err != nil {
			unmapped[code]++
			continue
		}
		if rec.Hour < 0 || rec.Hour >= HoursPerDay {
			badHours++
			continue
		}

		c := cell{code: code, hour: rec.Hour}
		stats, ok := g.cells[c]
		if !ok {
			stats = &cellStats{maxHour: rec.Hour}
			g.cells[c] = stats
			g.order = append(g.order, c)
		}
		stats.count++
		stats.sum += float64(rec.Count)
		if rec.Hour > stats.maxHour {
			stats.maxHour = rec.Hour
		}
	}

	// deterministic output: category code, then hour
	sort.Slice(g.order, func(i, j int) bool {
		if g.order[i].code != g.order[j].code {
			return g.order[i].code < g.order[j].code
		}
		return g.order[i].hour < g.order[j].hour
	})

	codes := make([]int, 0, len(unmapped))
	for code := range unmapped {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		err := &UnmappedCodeError{Dimension: key.Column, Code: code}
		g.warnings = append(g.warnings, fmt.Sprintf("%v: %d records excluded", err, unmapped[code]))
	}
	if badHours > 0 {
		g.warnings = append(g.warnings, fmt.Sprintf("%d records with an hour outside 0-23 excluded", badHours))
	}

	return g
}

// AggregateByHour computes the mean rental count per (hour, category).
// Combinations absent from records produce no row.
func AggregateByHour(ds *Dataset, records []HourlyRecord, key GroupKey) (*AggregateTable, error) {
	if missing := ds.MissingColumns(ColHour, key.Column, ColCount); len(missing) > 0 {
		return nil, &MissingColumnsError{Table: "hourly", Columns: missing}
	}

	g := groupByHour(records, key)
	table := &AggregateTable{
		Dimension: key.Column,
		Rows:      make([]AggregateRow, 0, len(g.order)),
		Warnings:  g.warnings,
	}

	seen := make(map[int]bool)
	for _, c := range g.order {
		stats := g.cells[c]
		label, _ := key.Labels.Label(c.code)
		table.Rows = append(table.Rows, AggregateRow{
			Hour:    c.hour,
			Code:    c.code,
			Label:   label,
			Mean:    stats.sum / float64(stats.count),
			Samples: stats.count,
		})
		if !seen[c.code] {
			seen[c.code] = true
			table.Labels = append(table.Labels, label)
		}
	}

	return table, nil
}

// AggregateWeather computes mean usage per hour and weather category
func AggregateWeather(ds *Dataset, records []HourlyRecord, locale string) (*AggregateTable, error) {
	return AggregateByHour(ds, records, WeatherKey(locale))
}

// AggregateWorkday computes mean usage per hour and working day flag
func AggregateWorkday(ds *Dataset, records []HourlyRecord, locale string) (*AggregateTable, error) {
	return AggregateByHour(ds, records, WorkdayKey(locale))
}

// IsMissingColumns reports whether err is a MissingColumnsError
func IsMissingColumns(err error) bool {
	var mce *MissingColumnsError
	return errors.As(err, &mce)
}
