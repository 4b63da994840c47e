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
	"html"
	"io"
	"os"

	"github.com/dustin/go-humanize"
)

// HTMLReporter generates HTML reports from analysis results
type HTMLReporter struct {
	logger *Logger
	charts *ChartGenerator

	// rangeForm adds the date range picker used by the dashboard server
	rangeForm bool
}

// NewHTMLReporter creates a new HTML report generator. charts may be nil,
// in which case only the tables are rendered.
func NewHTMLReporter(logger *Logger, charts *ChartGenerator) *HTMLReporter {
	return &HTMLReporter{
		logger: logger,
		charts: charts,
	}
}

// WithRangeForm enables the interactive date range form
func (r *HTMLReporter) WithRangeForm() *HTMLReporter {
	r.rangeForm = true
	return r
}

// GenerateHTMLReport generates an HTML report
func (r *HTMLReporter) GenerateHTMLReport(result *AnalysisResult, outputPath string) error {
	r.logger.Info("Generating HTML report")

	var writer io.Writer
	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create HTML report file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	r.Write(writer, result)

	if outputPath != "" {
		r.logger.Info("HTML report saved", "path", outputPath)
	}

	return nil
}

// Write renders a complete dashboard page for result
func (r *HTMLReporter) Write(w io.Writer, result *AnalysisResult) {
	r.writeHTMLHeader(w)
	r.writeHTMLBanner(w, result)
	if r.rangeForm {
		r.writeHTMLRangeForm(w, result.Bounds, result.Range.Start.Format(DateLayout), result.Range.End.Format(DateLayout))
	}
	r.writeHTMLSummary(w, result)
	for _, panel := range result.Panels() {
		r.writeHTMLPanel(w, panel)
	}
	r.writeHTMLFooter(w)
}

// WriteError renders the page shown when a render pass fails as a whole,
// such as an invalid date range. No charts are drawn.
func (r *HTMLReporter) WriteError(w io.Writer, bounds DateRange, start, end string, err error) {
	r.writeHTMLHeader(w)
	fmt.Fprintf(w, `
        <header>
            <h1>Bike Rental Usage</h1>
            <div class="subtitle">Dataset: %s to %s</div>
        </header>
`,
		bounds.Start.Format("2 Jan 2006"),
		bounds.End.Format("2 Jan 2006"),
	)
	if r.rangeForm {
		r.writeHTMLRangeForm(w, bounds, start, end)
	}
	fmt.Fprintf(w, `
        <div class="error-banner">
            <strong>Cannot render dashboard:</strong> %s
        </div>
`, html.EscapeString(err.Error()))
	r.writeHTMLFooter(w)
}

func (r *HTMLReporter) writeHTMLHeader(w io.Writer) {
	fmt.Fprint(w, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Bike Rental Usage Dashboard</title>
    <style>`+htmlStyles+`    </style>
</head>
<body>
    <div class="container">
`)
}

func (r *HTMLReporter) writeHTMLBanner(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, `
        <header>
            <h1>Bike Rental Usage</h1>
            <div class="subtitle">Generated: %s</div>
            <div class="subtitle">Date Range: %s to %s (%d days)</div>
            <div class="subtitle" style="opacity: 0.7; font-size: 0.9em; margin-top: 10px;">bikeinsight %s &middot; run %s</div>
        </header>
`,
		result.GeneratedAt.Format("Monday, 2 January 2006 at 15:04"),
		result.Range.Start.Format("2 Jan 2006"),
		result.Range.End.Format("2 Jan 2006"),
		result.Range.Days(),
		html.EscapeString(GetVersion()),
		html.EscapeString(result.RunID),
	)
}

func (r *HTMLReporter) writeHTMLRangeForm(w io.Writer, bounds DateRange, start, end string) {
	minDate := bounds.Start.Format(DateLayout)
	maxDate := bounds.End.Format(DateLayout)
	fmt.Fprintf(w, `
        <form class="card range-form" method="get" action="/">
            <label>Start <input type="date" name="start" value="%s" min="%s" max="%s"></label>
            <label>End <input type="date" name="end" value="%s" min="%s" max="%s"></label>
            <button type="submit">Apply</button>
        </form>
`,
		html.EscapeString(start), minDate, maxDate,
		html.EscapeString(end), minDate, maxDate,
	)
}

func (r *HTMLReporter) writeHTMLSummary(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, `
        <div class="card">
            <h2>Summary</h2>
            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-label">Hourly Records in Range</div>
                    <div class="metric-value">%s</div>
                    <span class="badge badge-info">of %s</span>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Rentals in Range</div>
                    <div class="metric-value">%s</div>
                </div>
                <div class="metric-card">
                    <div class="metric-label">RFM Scope</div>
                    <div class="metric-value" style="font-size: 1.1em;">%s to %s</div>
                </div>
            </div>
        </div>
`,
		humanize.Comma(int64(result.RecordsInUse)),
		humanize.Comma(int64(result.RecordsTotal)),
		humanize.Comma(int64(result.RentalsInUse)),
		result.RFMRange.Start.Format("2 Jan 2006"),
		result.RFMRange.End.Format("2 Jan 2006"),
	)
}

func (r *HTMLReporter) writeHTMLPanel(w io.Writer, panel *Panel) {
	fmt.Fprintf(w, `
        <div class="card" id="%s">
            <h2>%s</h2>
`, panel.ID, html.EscapeString(panel.Title))

	if panel.Failed() {
		fmt.Fprintf(w, `
            <div class="panel-error"><strong>Panel unavailable:</strong> %s</div>
        </div>
`, html.EscapeString(panel.Error))
		return
	}

	r.writeHTMLChart(w, panel)

	switch {
	case panel.Aggregate != nil:
		r.writeHTMLAggregate(w, panel.Aggregate)
	case panel.RFM != nil:
		r.writeHTMLHeatmap(w, panel.RFM)
	}

	for _, insight := range panel.Insights {
		fmt.Fprintf(w, `
            <div class="insight-box %s">
                <div class="insight-title">%s</div>
                <p>%s</p>
            </div>
`,
			priorityClass(insight.Priority),
			html.EscapeString(insight.Title),
			html.EscapeString(insight.Description),
		)
	}

	fmt.Fprintf(w, `
        </div>
`)
}

// writeHTMLChart embeds the panel chart. RFM panels are drawn as a
// coloured table instead, so only the usage panels get an image.
func (r *HTMLReporter) writeHTMLChart(w io.Writer, panel *Panel) {
	if r.charts == nil || panel.Aggregate == nil {
		return
	}

	chart, err := r.charts.GeneratePanelChart(panel)
	if err != nil {
		r.logger.Warn("Failed to generate chart", "panel", panel.ID, "error", err)
		return
	}

	fmt.Fprintf(w, `
            <div class="chart"><img src="data:image/png;base64,%s" alt="%s"></div>
`, chart, html.EscapeString(panel.Title))
}

func (r *HTMLReporter) writeHTMLAggregate(w io.Writer, t *AggregateTable) {
	if len(t.Labels) == 0 {
		fmt.Fprintf(w, `<p class="muted">No records in the selected range.</p>`)
		return
	}

	fmt.Fprintf(w, `
            <details>
                <summary>Mean rentals per hour</summary>
                <table>
                    <thead><tr><th>Hour</th>`)
	for _, label := range t.Labels {
		fmt.Fprintf(w, "<th>%s</th>", html.EscapeString(label))
	}
	fmt.Fprintf(w, "</tr></thead>\n                    <tbody>\n")
	for h := 0; h < HoursPerDay; h++ {
		fmt.Fprintf(w, "                        <tr><td>%s</td>", formatHour(h))
		for _, label := range t.Labels {
			if v, ok := t.Lookup(label, h); ok {
				fmt.Fprintf(w, "<td>%s</td>", humanize.CommafWithDigits(v, 1))
			} else {
				fmt.Fprintf(w, `<td class="muted">-</td>`)
			}
		}
		fmt.Fprintf(w, "</tr>\n")
	}
	fmt.Fprintf(w, `                    </tbody>
                </table>
            </details>
`)
}

// writeHTMLHeatmap draws the score pivot with each cell shaded by its score
func (r *HTMLReporter) writeHTMLHeatmap(w io.Writer, t *RFMTable) {
	if len(t.Pivot) == 0 {
		fmt.Fprintf(w, `<p class="muted">No records to score.</p>`)
		return
	}

	fmt.Fprintf(w, `
            <div class="heatmap-wrap">
            <table class="heatmap">
                <thead><tr><th></th>`)
	for h := 0; h < HoursPerDay; h++ {
		fmt.Fprintf(w, "<th>%d</th>", h)
	}
	fmt.Fprintf(w, "</tr></thead>\n                <tbody>\n")

	for _, row := range t.Pivot {
		fmt.Fprintf(w, "                    <tr><th>%s</th>", html.EscapeString(row.Label))
		for h := 0; h < HoursPerDay; h++ {
			if !row.Present[h] {
				fmt.Fprintf(w, `<td class="empty"></td>`)
				continue
			}
			fmt.Fprintf(w, `<td style="background: %s" title="%s %s">%d</td>`,
				heatColor(row.Scores[h], t.MaxScore),
				html.EscapeString(row.Label),
				formatHour(h),
				row.Scores[h],
			)
		}
		fmt.Fprintf(w, "</tr>\n")
	}

	fmt.Fprintf(w, `                </tbody>
            </table>
            </div>
            <p class="muted">Scores range from 0 to %d.</p>
`, t.MaxScore)
}

// heatColor shades a score from pale yellow (0) to deep red (max)
func heatColor(score, maxScore int) string {
	if maxScore <= 0 {
		return "rgb(255, 255, 204)"
	}
	f := float64(score) / float64(maxScore)
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	red := 255 - int(f*(255-189))
	green := 255 - int(f*(255-0))
	blue := 204 - int(f*(204-38))
	return fmt.Sprintf("rgb(%d, %d, %d)", red, green, blue)
}

func priorityClass(priority string) string {
	switch priority {
	case "high":
		return "high"
	case "medium":
		return "medium"
	default:
		return "low"
	}
}

func (r *HTMLReporter) writeHTMLFooter(w io.Writer) {
	fmt.Fprintf(w, `
        <footer>
            <p><em>RFM scores combine how late in the day a category was last seen, how many hourly records it has and how many rentals it produced.</em></p>
            <p style="margin-top: 10px;">Generated by <a href="https://github.com/matthewgall/bikeinsight" style="color: var(--primary-color); text-decoration: none;">bikeinsight</a></p>
        </footer>
    </div>
</body>
</html>
`)
}

const htmlStyles = `
        :root {
            --primary-color: #2E7D32;
            --secondary-color: #0277BD;
            --warning-color: #FFB800;
            --danger-color: #C62828;
            --bg-color: #F5F7FA;
            --card-bg: #FFFFFF;
            --text-color: #1F2933;
            --text-muted: #616E7C;
            --border-color: #E4E7EB;
        }

        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            background: var(--bg-color);
            color: var(--text-color);
            line-height: 1.6;
            padding: 20px;
        }

        .container {
            max-width: 1200px;
            margin: 0 auto;
        }

        header {
            background: linear-gradient(135deg, var(--primary-color), var(--secondary-color));
            color: white;
            padding: 40px;
            border-radius: 16px;
            margin-bottom: 30px;
        }

        h1 {
            font-size: 2.5em;
            margin-bottom: 10px;
            font-weight: 700;
        }

        .subtitle {
            color: rgba(255, 255, 255, 0.9);
            font-size: 1.1em;
        }

        .card {
            background: var(--card-bg);
            border-radius: 12px;
            padding: 30px;
            margin-bottom: 30px;
            border: 1px solid var(--border-color);
        }

        h2 {
            color: var(--primary-color);
            margin-bottom: 20px;
            font-size: 1.6em;
            border-bottom: 2px solid var(--border-color);
            padding-bottom: 10px;
        }

        table {
            width: 100%;
            border-collapse: collapse;
            margin: 20px 0;
        }

        th, td {
            padding: 8px;
            text-align: right;
            border-bottom: 1px solid var(--border-color);
        }

        .heatmap th, .heatmap td {
            padding: 6px 4px;
            text-align: center;
            font-size: 0.85em;
            border: 1px solid var(--border-color);
        }

        .heatmap td.empty {
            background: repeating-linear-gradient(45deg, #fafafa, #fafafa 4px, #eee 4px, #eee 8px);
        }

        .heatmap-wrap {
            overflow-x: auto;
        }

        .chart img {
            max-width: 100%;
        }

        .metric-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin: 20px 0;
        }

        .metric-card {
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 20px;
            text-align: center;
        }

        .metric-value {
            font-size: 2em;
            font-weight: bold;
            color: var(--secondary-color);
            margin: 10px 0;
        }

        .metric-label, .muted {
            color: var(--text-muted);
            font-size: 0.9em;
        }

        .badge {
            display: inline-block;
            padding: 6px 12px;
            border-radius: 20px;
            font-size: 0.85em;
            font-weight: 600;
        }

        .badge-info {
            background: var(--secondary-color);
            color: white;
        }

        .insight-box {
            border-left: 4px solid var(--secondary-color);
            padding: 15px 20px;
            margin: 15px 0;
            border-radius: 4px;
            background: rgba(2, 119, 189, 0.05);
        }

        .insight-box.high {
            border-left-color: var(--danger-color);
            background: rgba(198, 40, 40, 0.05);
        }

        .insight-box.medium {
            border-left-color: var(--warning-color);
            background: rgba(255, 184, 0, 0.05);
        }

        .insight-title {
            font-weight: 600;
            margin-bottom: 5px;
        }

        .panel-error, .error-banner {
            border-left: 4px solid var(--danger-color);
            background: rgba(198, 40, 40, 0.08);
            padding: 15px 20px;
            border-radius: 4px;
            margin-bottom: 30px;
        }

        .range-form {
            display: flex;
            gap: 20px;
            align-items: center;
        }

        footer {
            text-align: center;
            padding: 30px;
            color: var(--text-muted);
            border-top: 1px solid var(--border-color);
            margin-top: 40px;
        }

        @media (max-width: 768px) {
            body {
                padding: 10px;
            }

            header, .card {
                padding: 20px;
            }
        }
`
