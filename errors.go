// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"strings"
	"time"
)

// MissingColumnsError is returned when a table lacks columns a computation needs
type MissingColumnsError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns in %s table: %s", e.Table, strings.Join(e.Columns, ", "))
}

// InvalidRangeError represents an unusable date range selection
type InvalidRangeError struct {
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range %s to %s: %s",
		e.Start.Format(DateLayout), e.End.Format(DateLayout), e.Reason)
}

// UnmappedCodeError represents a category code with no label
type UnmappedCodeError struct {
	Dimension string
	Code      int
}

func (e *UnmappedCodeError) Error() string {
	return fmt.Sprintf("no %s label for code %d", e.Dimension, e.Code)
}

// SourceError represents a failure fetching a remote dataset
type SourceError struct {
	StatusCode int
	URL        string
	Message    string
	Err        error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source error at %s (status %d): %s: %v", e.URL, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("source error at %s (status %d): %s", e.URL, e.StatusCode, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if this error should be retried
func (e *SourceError) IsRetryable() bool {
	if e.StatusCode == 0 {
		// transport failure, no response seen
		return e.Err != nil
	}
	return isRetryableStatus(e.StatusCode)
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// LoadError represents a fatal failure reading one of the source tables
type LoadError struct {
	Table  string
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s table from %s: %v", e.Table, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ValidationError represents a configuration or input validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation error for %s (%s): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// DataError represents insufficient or missing data
type DataError struct {
	DataType string
	Message  string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error for %s: %s", e.DataType, e.Message)
}
