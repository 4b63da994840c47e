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
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Logger wraps slog.Logger with domain-specific methods
type Logger struct {
	*slog.Logger
}

// NewLogger creates a text logger, switching to coloured output when
// stderr is a terminal
func NewLogger(debug bool) *Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return NewTintLogger(os.Stderr, debug)
	}
	return NewTextLogger(os.Stderr, debug)
}

// NewLoggerWithFormat creates a logger for an explicit format (text, json, tint)
func NewLoggerWithFormat(format string, debug bool) *Logger {
	switch format {
	case "json":
		return NewJSONLogger(os.Stderr, debug)
	case "tint":
		return NewTintLogger(os.Stderr, debug)
	default:
		return NewLogger(debug)
	}
}

// NewTextLogger creates a text-formatted logger
func NewTextLogger(w io.Writer, debug bool) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: levelFor(debug),
	})
	return &Logger{slog.New(handler)}
}

// NewJSONLogger creates a JSON-formatted logger
func NewJSONLogger(w io.Writer, debug bool) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: levelFor(debug),
	})
	return &Logger{slog.New(handler)}
}

// NewTintLogger creates a coloured logger for interactive use
func NewTintLogger(w io.Writer, debug bool) *Logger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      levelFor(debug),
		AddSource:  debug,
		TimeFormat: time.Kitchen,
	})
	return &Logger{slog.New(handler)}
}

// NewDiscardLogger returns a logger that drops everything, used in tests
func NewDiscardLogger() *Logger {
	return NewTextLogger(io.Discard, false)
}

func levelFor(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// WithComponent adds a component field to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{l.With("component", component)}
}

// WithRunID tags every record with the render pass id
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{l.With("run_id", runID)}
}

// LogSourceRequest logs a remote source request
func (l *Logger) LogSourceRequest(url string, attempt int) {
	l.Debug("Source request",
		"url", url,
		"attempt", attempt,
	)
}

// LogSourceError logs a remote source failure
func (l *Logger) LogSourceError(url string, statusCode int, err error) {
	l.Warn("Source request failed",
		"url", url,
		"status_code", statusCode,
		"error", err,
	)
}

// LogTableLoaded logs a loaded source table
func (l *Logger) LogTableLoaded(table, source string, rows int) {
	l.Info("Table loaded",
		"table", table,
		"source", source,
		"rows", rows,
	)
}

// LogPanel logs the outcome of one dashboard panel
func (l *Logger) LogPanel(panel string, rows int, err error) {
	if err != nil {
		l.Warn("Panel aborted",
			"panel", panel,
			"error", err,
		)
		return
	}
	l.Debug("Panel computed",
		"panel", panel,
		"rows", rows,
	)
}

// LogPanelWarning logs a non-fatal data problem found while computing a panel
func (l *Logger) LogPanelWarning(panel, warning string) {
	l.Warn("Panel warning",
		"panel", panel,
		"warning", warning,
	)
}

// LogRenderPass logs a completed render pass
func (l *Logger) LogRenderPass(r DateRange, records int, elapsed time.Duration) {
	l.Info("Render pass completed",
		"start", r.Start.Format(DateLayout),
		"end", r.End.Format(DateLayout),
		"records", records,
		"elapsed", elapsed.Round(time.Microsecond),
	)
}

// UserMessage outputs a message directly to stdout (bypassing structured logging)
func (l *Logger) UserMessage(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}
