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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Loader reads the day and hour tables into a Dataset
type Loader struct {
	config *Config
	client *SourceClient
	logger *Logger
}

// NewLoader creates a new dataset loader
func NewLoader(config *Config, logger *Logger) *Loader {
	return &Loader{
		config: config,
		client: NewSourceClient(config.Source.Timeout, config.Source.Retries, logger),
		logger: logger,
	}
}

// LoadAll reads both source tables. Any failure here is fatal to startup.
func (l *Loader) LoadAll(ctx context.Context) (*Dataset, error) {
	l.logger.Info("Loading source tables",
		"day", l.config.DayPath,
		"hour", l.config.HourPath,
	)

	daily, err := l.loadDaily(ctx, l.config.DayPath)
	if err != nil {
		return nil, &LoadError{Table: "daily", Source: l.config.DayPath, Err: err}
	}
	l.logger.LogTableLoaded("daily", l.config.DayPath, len(daily))

	hourly, columns, err := l.loadHourly(ctx, l.config.HourPath)
	if err != nil {
		return nil, &LoadError{Table: "hourly", Source: l.config.HourPath, Err: err}
	}
	l.logger.LogTableLoaded("hourly", l.config.HourPath, len(hourly))

	ds := &Dataset{
		Daily:         daily,
		Hourly:        hourly,
		HourlyColumns: columns,
		DaySource:     l.config.DayPath,
		HourSource:    l.config.HourPath,
		LoadedAt:      time.Now(),
	}

	if _, err := ds.Bounds(); err != nil {
		return nil, &LoadError{Table: "daily", Source: l.config.DayPath, Err: err}
	}

	// Missing aggregation columns only disable the panels that need them
	if missing := ds.MissingColumns(ColHour, ColWeather, ColWorkday, ColCount); len(missing) > 0 {
		l.logger.Warn("Hourly table is missing columns, affected panels will be skipped",
			"missing", strings.Join(missing, ","),
		)
	}

	return ds, nil
}

func (l *Loader) loadDaily(ctx context.Context, source string) ([]DailyRecord, error) {
	if isParquetSource(source) {
		return readDailyParquet(source)
	}

	r, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ParseDailyCSV(r)
}

func (l *Loader) loadHourly(ctx context.Context, source string) ([]HourlyRecord, map[string]bool, error) {
	if isParquetSource(source) {
		return readHourlyParquet(source)
	}

	r, err := l.open(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	return ParseHourlyCSV(r)
}

// open returns a reader over a local file or a remote URL
func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if isRemoteSource(source) {
		body, err := l.client.Fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func isRemoteSource(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func isParquetSource(source string) bool {
	return !isRemoteSource(source) && strings.HasSuffix(strings.ToLower(source), ".parquet")
}

// csvTable is a parsed CSV header with a column index lookup
type csvTable struct {
	reader  *csv.Reader
	index   map[string]int
	columns map[string]bool
	line    int
}

func newCSVTable(r io.Reader) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataError{DataType: "csv", Message: "empty file, expected a header row"}
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	t := &csvTable{
		reader:  reader,
		index:   make(map[string]int, len(header)),
		columns: make(map[string]bool, len(header)),
		line:    1,
	}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		t.index[name] = i
		t.columns[name] = true
	}

	return t, nil
}

// next returns the next row, or io.EOF
func (t *csvTable) next() ([]string, error) {
	row, err := t.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("line %d: %w", t.line+1, err)
	}
	t.line++
	return row, nil
}

func (t *csvTable) str(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// integer reads an integer column; absent columns read as zero
func (t *csvTable) integer(row []string, col string) (int, error) {
	if !t.columns[col] {
		return 0, nil
	}
	s := t.str(row, col)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	// tolerate exports that write integers as floats ("8.0")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("line %d: column %s: invalid integer %q", t.line, col, s)
	}
	return int(f), nil
}

func (t *csvTable) date(row []string) (time.Time, error) {
	s := t.str(row, ColDate)
	d, err := ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("line %d: %w", t.line, err)
	}
	if d.IsZero() {
		return time.Time{}, fmt.Errorf("line %d: empty %s", t.line, ColDate)
	}
	return d, nil
}

// ParseDailyCSV reads the day-level table. Only dteday is required.
func ParseDailyCSV(r io.Reader) ([]DailyRecord, error) {
	t, err := newCSVTable(r)
	if err != nil {
		return nil, err
	}
	if !t.columns[ColDate] {
		return nil, &MissingColumnsError{Table: "daily", Columns: []string{ColDate}}
	}

	var records []DailyRecord
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		date, err := t.date(row)
		if err != nil {
			return nil, err
		}
		records = append(records, DailyRecord{Date: date})
	}

	return records, nil
}

// ParseHourlyCSV reads the hour-level table and reports which columns it had.
// dteday is required; the remaining columns are checked by each aggregation.
func ParseHourlyCSV(r io.Reader) ([]HourlyRecord, map[string]bool, error) {
	t, err := newCSVTable(r)
	if err != nil {
		return nil, nil, err
	}
	if !t.columns[ColDate] {
		return nil, nil, &MissingColumnsError{Table: "hourly", Columns: []string{ColDate}}
	}

	var records []HourlyRecord
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		rec := HourlyRecord{}
		if rec.Date, err = t.date(row); err != nil {
			return nil, nil, err
		}
		if rec.Hour, err = t.integer(row, ColHour); err != nil {
			return nil, nil, err
		}
		if rec.Weather, err = t.integer(row, ColWeather); err != nil {
			return nil, nil, err
		}
		if rec.Workday, err = t.integer(row, ColWorkday); err != nil {
			return nil, nil, err
		}
		if rec.Count, err = t.integer(row, ColCount); err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
	}

	return records, t.columns, nil
}
