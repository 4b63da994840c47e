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
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
)

// Reporter generates markdown reports from analysis results
type Reporter struct {
	logger *Logger
}

// NewReporter creates a new report generator
func NewReporter(logger *Logger) *Reporter {
	return &Reporter{
		logger: logger,
	}
}

// GenerateReport writes a markdown report to outputPath, or stdout when empty
func (r *Reporter) GenerateReport(result *AnalysisResult, outputPath string) error {
	r.logger.Info("Generating report", "format", "markdown")

	var writer io.Writer
	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	r.Write(writer, result)

	if outputPath != "" {
		r.logger.Info("Report saved", "path", outputPath)
	}

	return nil
}

// Write renders the report to w
func (r *Reporter) Write(w io.Writer, result *AnalysisResult) {
	r.writeHeader(w, result)
	r.writeSummary(w, result)
	for _, panel := range result.Panels() {
		r.writePanel(w, panel)
	}
	r.writeFooter(w)
}

// writeHeader writes the report header
func (r *Reporter) writeHeader(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, "# Bike Rental Usage Report\n\n")
	fmt.Fprintf(w, "**Generated:** %s\n\n", result.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "**Date Range:** %s to %s (%d days)\n\n",
		result.Range.Start.Format(DateLayout),
		result.Range.End.Format(DateLayout),
		result.Range.Days(),
	)
	fmt.Fprintf(w, "**bikeinsight version:** %s\n\n", GetVersion())
	fmt.Fprintf(w, "---\n\n")
}

// writeSummary writes the summary section
func (r *Reporter) writeSummary(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "| Item | Value |\n")
	fmt.Fprintf(w, "|------|-------|\n")
	fmt.Fprintf(w, "| Dataset Range | %s to %s |\n",
		result.Bounds.Start.Format(DateLayout),
		result.Bounds.End.Format(DateLayout),
	)
	fmt.Fprintf(w, "| Hourly Records in Range | %s of %s |\n",
		humanize.Comma(int64(result.RecordsInUse)),
		humanize.Comma(int64(result.RecordsTotal)),
	)
	fmt.Fprintf(w, "| Rentals in Range | %s |\n", humanize.Comma(int64(result.RentalsInUse)))
	fmt.Fprintf(w, "| RFM Scope | %s to %s |\n",
		result.RFMRange.Start.Format(DateLayout),
		result.RFMRange.End.Format(DateLayout),
	)
	fmt.Fprintf(w, "| Run ID | `%s` |\n\n", result.RunID)
}

// writePanel writes one dashboard section, or its error
func (r *Reporter) writePanel(w io.Writer, panel *Panel) {
	fmt.Fprintf(w, "## %s\n\n", panel.Title)

	if panel.Failed() {
		fmt.Fprintf(w, "> **Panel unavailable:** %s\n\n", panel.Error)
		return
	}

	switch {
	case panel.Aggregate != nil:
		r.writeAggregate(w, panel.Aggregate)
	case panel.RFM != nil:
		r.writeRFM(w, panel.RFM)
	}

	for _, insight := range panel.Insights {
		r.writeInsight(w, insight)
	}
	if len(panel.Insights) > 0 {
		fmt.Fprintf(w, "\n")
	}
}

// writeAggregate writes the mean usage table, one column per label
func (r *Reporter) writeAggregate(w io.Writer, t *AggregateTable) {
	if len(t.Labels) == 0 {
		fmt.Fprintf(w, "*No records in the selected range.*\n\n")
		return
	}

	fmt.Fprintf(w, "| Hour | %s |\n", strings.Join(t.Labels, " | "))
	fmt.Fprintf(w, "|------|%s\n", strings.Repeat("------:|", len(t.Labels)))
	for h := 0; h < HoursPerDay; h++ {
		cells := make([]string, len(t.Labels))
		for i, label := range t.Labels {
			if v, ok := t.Lookup(label, h); ok {
				cells[i] = humanize.CommafWithDigits(v, 1)
			} else {
				cells[i] = "-"
			}
		}
		fmt.Fprintf(w, "| %s | %s |\n", formatHour(h), strings.Join(cells, " | "))
	}
	fmt.Fprintf(w, "\n")
}

// writeRFM writes the score pivot, one row per label
func (r *Reporter) writeRFM(w io.Writer, t *RFMTable) {
	if len(t.Pivot) == 0 {
		fmt.Fprintf(w, "*No records to score.*\n\n")
		return
	}

	header, rows := rfmTableCells(t)
	header[0] = "Label"
	fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprintf(w, "|%s\n", strings.Repeat("---|", len(header)))
	for _, row := range rows {
		for i := range row {
			if row[i] == "" {
				row[i] = "-"
			}
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
	}
	fmt.Fprintf(w, "\n*Scores range from 0 to %d.*\n\n", t.MaxScore)
}

// writeInsight writes a single insight
func (r *Reporter) writeInsight(w io.Writer, insight Insight) {
	marker := "🔵"
	switch insight.Priority {
	case "high":
		marker = "🔴"
	case "medium":
		marker = "🟡"
	}
	fmt.Fprintf(w, "- %s **%s:** %s\n", marker, insight.Title, insight.Description)
}

// writeFooter writes the report footer
func (r *Reporter) writeFooter(w io.Writer) {
	fmt.Fprintf(w, "\n---\n\n")
	fmt.Fprintf(w, "*RFM scores combine how late in the day a category was last seen, how many hourly records it has and how many rentals it produced.*\n\n")
	fmt.Fprintf(w, "*Generated by [bikeinsight](https://github.com/matthewgall/bikeinsight)*\n")
}
