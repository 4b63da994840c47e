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
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONReporter writes analysis results as indented JSON
type JSONReporter struct {
	logger *Logger
}

// NewJSONReporter creates a new JSON report generator
func NewJSONReporter(logger *Logger) *JSONReporter {
	return &JSONReporter{
		logger: logger,
	}
}

// GenerateJSONReport writes result to outputPath, or stdout when empty
func (r *JSONReporter) GenerateJSONReport(result *AnalysisResult, outputPath string) error {
	r.logger.Info("Generating report", "format", "json")

	if outputPath == "" {
		return r.Write(os.Stdout, result)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := r.Write(file, result); err != nil {
		return err
	}

	r.logger.Info("Report saved", "path", outputPath)
	return nil
}

// Write encodes v to w
func (r *JSONReporter) Write(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
