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
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxSourceSize caps the body of a remote table
const maxSourceSize = 64 << 20

// SourceClient fetches source tables published over HTTP
type SourceClient struct {
	httpClient *http.Client
	retries    int
	backoff    time.Duration
	logger     *Logger
}

// NewSourceClient creates a new HTTP source client
func NewSourceClient(timeout time.Duration, retries int, logger *Logger) *SourceClient {
	return &SourceClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retries: retries,
		backoff: time.Second,
		logger:  logger,
	}
}

// Fetch downloads url, retrying on transport errors and retryable statuses
func (c *SourceClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s...
			wait := c.backoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		body, err := c.fetchOnce(ctx, url, attempt+1)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var srcErr *SourceError
		if !errors.As(err, &srcErr) || !srcErr.IsRetryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", c.retries+1, lastErr)
}

func (c *SourceClient) fetchOnce(ctx context.Context, url string, attempt int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", GetUserAgent())
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	c.logger.LogSourceRequest(url, attempt)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SourceError{
			URL:     url,
			Message: "request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		srcErr := &SourceError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Message:    string(bodyBytes),
		}
		c.logger.LogSourceError(url, resp.StatusCode, srcErr)
		return nil, srcErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceSize+1))
	if err != nil {
		return nil, &SourceError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Message:    "failed to read body",
			Err:        err,
		}
	}
	if len(body) > maxSourceSize {
		return nil, &SourceError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Message:    fmt.Sprintf("body exceeds %d bytes", maxSourceSize),
		}
	}

	return body, nil
}
