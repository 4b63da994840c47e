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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	result := analyzeSample(t)
	config := DefaultConfig()
	dir := t.TempDir()

	tests := []struct {
		format string
		prefix string
	}{
		{"markdown", "# Bike Rental Usage Report"},
		{"md", "# Bike Rental Usage Report"},
		{"html", "<!DOCTYPE html>"},
		{"json", "{"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			path := filepath.Join(dir, "report."+tt.format)
			require.NoError(t, writeReport(config, NewDiscardLogger(), result, tt.format, path))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), tt.prefix))
		})
	}

	err := writeReport(config, NewDiscardLogger(), result, "pdf", filepath.Join(dir, "report.pdf"))
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "format", validationErr.Field)
}
