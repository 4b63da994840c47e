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
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeSample(t *testing.T) *AnalysisResult {
	t.Helper()
	result, err := newTestAnalyzer(nil).Analyze(sampleDataset(t), time.Time{}, time.Time{})
	require.NoError(t, err)
	return result
}

func TestReporter_Markdown(t *testing.T) {
	result := analyzeSample(t)

	var buf bytes.Buffer
	NewReporter(NewDiscardLogger()).Write(&buf, result)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Bike Rental Usage Report"))
	assert.Contains(t, out, "**Date Range:** 2011-01-01 to 2011-01-04 (4 days)")
	assert.Contains(t, out, "| Rentals in Range | 1,640 |")
	assert.Contains(t, out, result.RunID)

	for _, p := range result.Panels() {
		assert.Contains(t, out, "## "+p.Title)
	}

	assert.Contains(t, out, "| Hour | Clear | Cloudy | Rain |")
	assert.Contains(t, out, "| 08:00 | 170 | - | 90 |")
	assert.Contains(t, out, "| Label | 0 | 1 |")
	assert.Contains(t, out, "*Scores range from 0 to 541.*")
	assert.Contains(t, out, "- 🔴 **Busiest Weather and Hour:**")
	assert.Contains(t, out, "*Generated by [bikeinsight]")
}

func TestReporter_MarkdownFailedPanel(t *testing.T) {
	result := analyzeSample(t)
	result.Weather = Panel{ID: PanelWeather, Title: "Weather vs Hourly Usage", Error: "missing columns in hourly table: weathersit"}

	var buf bytes.Buffer
	NewReporter(NewDiscardLogger()).Write(&buf, result)

	assert.Contains(t, buf.String(), "> **Panel unavailable:** missing columns in hourly table: weathersit")
	// other panels still render
	assert.Contains(t, buf.String(), "| Hour | Holiday | Workday |")
}

func TestReporter_GenerateReportToFile(t *testing.T) {
	result := analyzeSample(t)
	path := filepath.Join(t.TempDir(), "report.md")

	require.NoError(t, NewReporter(NewDiscardLogger()).GenerateReport(result, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Bike Rental Usage Report")
}

func TestHTMLReporter_Write(t *testing.T) {
	result := analyzeSample(t)

	var buf bytes.Buffer
	NewHTMLReporter(NewDiscardLogger(), nil).Write(&buf, result)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</html>"))
	for _, p := range result.Panels() {
		assert.Contains(t, out, `id="`+p.ID+`"`)
	}
	assert.Contains(t, out, `<table class="heatmap">`)
	assert.Contains(t, out, `<td class="empty"></td>`)
	assert.Contains(t, out, "Scores range from 0 to 541.")

	// no chart generator, no range form
	assert.NotContains(t, out, "data:image/png")
	assert.NotContains(t, out, `name="start"`)
}

func TestHTMLReporter_RangeForm(t *testing.T) {
	result := analyzeSample(t)

	var buf bytes.Buffer
	NewHTMLReporter(NewDiscardLogger(), nil).WithRangeForm().Write(&buf, result)

	assert.Contains(t, buf.String(), `name="start" value="2011-01-01" min="2011-01-01" max="2011-01-04"`)
	assert.Contains(t, buf.String(), `name="end" value="2011-01-04"`)
}

func TestHTMLReporter_EscapesContent(t *testing.T) {
	result := analyzeSample(t)
	result.Workday = Panel{ID: PanelWorkday, Title: "<b>Workday</b>", Error: `bad "column" <script>`}

	var buf bytes.Buffer
	NewHTMLReporter(NewDiscardLogger(), nil).Write(&buf, result)
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;b&gt;Workday&lt;/b&gt;")
	assert.Contains(t, out, `<div class="panel-error"><strong>Panel unavailable:</strong> bad &#34;column&#34; &lt;script&gt;</div>`)
}

func TestHTMLReporter_WriteError(t *testing.T) {
	bounds := DateRange{Start: day(t, "2011-01-01"), End: day(t, "2012-12-31")}
	err := &InvalidRangeError{
		Start:  day(t, "2013-01-01"),
		End:    day(t, "2013-02-01"),
		Reason: "outside dataset bounds",
	}

	var buf bytes.Buffer
	NewHTMLReporter(NewDiscardLogger(), nil).WithRangeForm().WriteError(&buf, bounds, "2013-01-01", "2013-02-01", err)
	out := buf.String()

	assert.Contains(t, out, `class="error-banner"`)
	assert.Contains(t, out, "Cannot render dashboard:")
	assert.Contains(t, out, "outside dataset bounds")
	assert.Contains(t, out, `value="2013-01-01"`)
	assert.NotContains(t, out, `class="heatmap"`)
}

func TestHeatColor(t *testing.T) {
	tests := []struct {
		score    int
		maxScore int
		want     string
	}{
		{0, 541, "rgb(255, 255, 204)"},
		{541, 541, "rgb(189, 0, 38)"},
		{900, 541, "rgb(189, 0, 38)"},
		{-5, 541, "rgb(255, 255, 204)"},
		{10, 0, "rgb(255, 255, 204)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, heatColor(tt.score, tt.maxScore), "score %d of %d", tt.score, tt.maxScore)
	}

	// shading is monotonic in the score
	assert.NotEqual(t, heatColor(100, 541), heatColor(400, 541))
}

func TestPriorityClass(t *testing.T) {
	assert.Equal(t, "high", priorityClass("high"))
	assert.Equal(t, "medium", priorityClass("medium"))
	assert.Equal(t, "low", priorityClass("low"))
	assert.Equal(t, "low", priorityClass("unknown"))
}

func TestJSONReporter_Write(t *testing.T) {
	result := analyzeSample(t)

	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter(NewDiscardLogger()).Write(&buf, result))

	// indented output
	assert.Contains(t, buf.String(), "\n  \"runId\"")

	var decoded AnalysisResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, result.RunID, decoded.RunID)
	assert.Equal(t, result.RentalsInUse, decoded.RentalsInUse)
	assert.Equal(t, PanelRFMWorkday, decoded.RFMWorkday.ID)
	require.NotNil(t, decoded.RFMWeather.RFM)
	assert.Equal(t, result.RFMWeather.RFM.Pivot, decoded.RFMWeather.RFM.Pivot)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestJSONReporter_WriteError(t *testing.T) {
	err := NewJSONReporter(NewDiscardLogger()).Write(failingWriter{}, map[string]int{"a": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
