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
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Source tables
	DayPath  string `yaml:"day_path"`
	HourPath string `yaml:"hour_path"`

	// Label language (en or id)
	Locale string `yaml:"locale"`

	RFM    RFMConfig    `yaml:"rfm"`
	Charts ChartConfig  `yaml:"charts"`
	Server ServerConfig `yaml:"server"`
	Source SourceConfig `yaml:"source"`

	// Logging
	LogFormat string `yaml:"log_format"`
	Debug     bool   `yaml:"debug"`
}

// RFMConfig controls the RFM heatmaps
type RFMConfig struct {
	// ApplyDateRange scores only the selected range instead of the full dataset
	ApplyDateRange bool    `yaml:"apply_date_range"`
	JointScaling   bool    `yaml:"joint_scaling"`
	RecencyMax     float64 `yaml:"recency_max"`
	ValueMax       float64 `yaml:"value_max"`
}

// Options converts the config section into scorer options
func (c RFMConfig) Options() RFMOptions {
	return RFMOptions{
		RecencyMax:   c.RecencyMax,
		ValueMax:     c.ValueMax,
		JointScaling: c.JointScaling,
	}
}

// ChartConfig controls PNG chart rendering
type ChartConfig struct {
	Theme  string `yaml:"theme"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// ServerConfig controls the HTTP dashboard
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// SourceConfig controls fetching of remote source tables
type SourceConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		DayPath:  "data/day.csv",
		HourPath: "data/hour.csv",
		Locale:   LocaleEnglish,
		RFM: RFMConfig{
			ApplyDateRange: false,
			JointScaling:   true,
			RecencyMax:     DefaultRecencyMax,
			ValueMax:       DefaultValueMax,
		},
		Charts: ChartConfig{
			Theme:  "light",
			Width:  1000,
			Height: 480,
		},
		Server: ServerConfig{
			Addr:         ":8501",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Source: SourceConfig{
			Timeout: 30 * time.Second,
			Retries: 3,
		},
		LogFormat: "text",
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	// If no path provided, return defaults with env var overrides
	if path == "" {
		config.applyEnvironmentVariables()
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentVariables()

	return config, nil
}

// LoadEnvFile exports the variables of a dotenv file into the process
// environment. Variables already set are left alone. An empty path tries
// .env in the working directory and ignores its absence.
func LoadEnvFile(path string, logger *Logger) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Debug(".env file could not be loaded", "error", err)
		}
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentVariables overrides config with environment variables
func (c *Config) applyEnvironmentVariables() {
	if val := os.Getenv("BIKEINSIGHT_DAY_PATH"); val != "" {
		c.DayPath = val
	}
	if val := os.Getenv("BIKEINSIGHT_HOUR_PATH"); val != "" {
		c.HourPath = val
	}
	if val := os.Getenv("BIKEINSIGHT_LOCALE"); val != "" {
		c.Locale = val
	}
	if val := os.Getenv("BIKEINSIGHT_ADDR"); val != "" {
		c.Server.Addr = val
	}
	if val := os.Getenv("BIKEINSIGHT_LOG_FORMAT"); val != "" {
		c.LogFormat = val
	}
	if val := os.Getenv("BIKEINSIGHT_DEBUG"); val == "true" || val == "1" {
		c.Debug = true
	}
}

// Validate checks if the configuration is valid. Every problem found is
// reported as a *ValidationError inside one combined error.
func (c *Config) Validate() error {
	var result *multierror.Error
	fail := func(field, value, message string) {
		result = multierror.Append(result, &ValidationError{Field: field, Value: value, Message: message})
	}

	if strings.TrimSpace(c.DayPath) == "" {
		fail("day_path", "", "is required")
	}
	if strings.TrimSpace(c.HourPath) == "" {
		fail("hour_path", "", "is required")
	}

	if !IsSupportedLocale(c.Locale) {
		fail("locale", c.Locale, fmt.Sprintf("must be one of %s, %s", LocaleEnglish, LocaleIndonesian))
	}

	switch c.LogFormat {
	case "text", "json", "tint":
	default:
		fail("log_format", c.LogFormat, "must be text, json or tint")
	}

	if c.RFM.RecencyMax <= 0 {
		fail("rfm.recency_max", "", "must be positive")
	}
	if c.RFM.ValueMax <= 0 {
		fail("rfm.value_max", "", "must be positive")
	}

	if c.Charts.Width < 200 || c.Charts.Height < 200 {
		fail("charts", fmt.Sprintf("%dx%d", c.Charts.Width, c.Charts.Height), "width and height must be at least 200")
	}

	if c.Source.Retries < 0 {
		fail("source.retries", "", "cannot be negative")
	}
	if c.Source.Timeout <= 0 {
		fail("source.timeout", "", "must be positive")
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = validationErrorFormat
	return result
}

func validationErrorFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return "configuration validation failed:\n  - " + strings.Join(lines, "\n  - ")
}
