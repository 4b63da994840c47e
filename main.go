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
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	envFile := flag.String("env-file", "", "Path to a dotenv file (default: .env when present)")
	dayPath := flag.String("day", "", "Day table: CSV, Parquet or http(s) URL (overrides config)")
	hourPath := flag.String("hour", "", "Hour table: CSV, Parquet or http(s) URL (overrides config)")
	startDate := flag.String("start", "", "First day of the range, YYYY-MM-DD (default: dataset start)")
	endDate := flag.String("end", "", "Last day of the range, YYYY-MM-DD (default: dataset end)")
	locale := flag.String("locale", "", "Label language: en or id (overrides config)")
	outputPath := flag.String("output", "", "Output file for report (default: stdout)")
	format := flag.String("format", "markdown", "Report format: markdown, html or json")
	serve := flag.Bool("serve", false, "Run the interactive dashboard instead of writing a report")
	addr := flag.String("addr", "", "Dashboard listen address (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("bikeinsight %s\n", GetVersion())
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := NewLogger(*debug)

	if err := LoadEnvFile(*envFile, logger); err != nil {
		logger.Error("Failed to load environment file", "error", err)
		os.Exit(1)
	}

	config, err := LoadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Command-line flags win over file and environment
	if *dayPath != "" {
		config.DayPath = *dayPath
	}
	if *hourPath != "" {
		config.HourPath = *hourPath
	}
	if *locale != "" {
		config.Locale = *locale
	}
	if *addr != "" {
		config.Server.Addr = *addr
	}
	if *debug {
		config.Debug = true
	}

	logger = NewLoggerWithFormat(config.LogFormat, config.Debug)
	logger.Info("Starting bikeinsight", "version", GetVersion())

	if err := config.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	go CheckForUpdates(ctx, logger)

	start, err := ParseDate(*startDate)
	if err != nil {
		logger.Error("Invalid start date", "error", err)
		os.Exit(1)
	}
	end, err := ParseDate(*endDate)
	if err != nil {
		logger.Error("Invalid end date", "error", err)
		os.Exit(1)
	}

	loader := NewLoader(config, logger.WithComponent("loader"))
	ds, err := loader.LoadAll(ctx)
	if err != nil {
		logger.Error("Failed to load dataset", "error", err)
		os.Exit(1)
	}

	if *serve {
		server := NewServer(config, ds, NewMetrics(), logger)
		if err := server.ListenAndServe(ctx); err != nil {
			logger.Error("Dashboard stopped", "error", err)
			os.Exit(1)
		}
		logger.Info("Dashboard stopped")
		return
	}

	analyzer := NewAnalyzer(config, logger.WithComponent("analyzer"))
	result, err := analyzer.Analyze(ds, start, end)
	if err != nil {
		logger.Error("Failed to perform analysis", "error", err)
		os.Exit(1)
	}

	if err := writeReport(config, logger, result, *format, *outputPath); err != nil {
		logger.Error("Failed to generate report", "error", err)
		os.Exit(1)
	}

	logger.Info("Analysis completed successfully")
}

// writeReport dispatches to the reporter for format
func writeReport(config *Config, logger *Logger, result *AnalysisResult, format, outputPath string) error {
	switch format {
	case "markdown", "md":
		return NewReporter(logger).GenerateReport(result, outputPath)
	case "html":
		return NewHTMLReporter(logger, NewChartGenerator(config.Charts)).GenerateHTMLReport(result, outputPath)
	case "json":
		return NewJSONReporter(logger).GenerateJSONReport(result, outputPath)
	default:
		return &ValidationError{Field: "format", Value: format, Message: "must be markdown, html or json"}
	}
}
