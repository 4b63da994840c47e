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
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"
)

var (
	version = "dev"
	commit  = "unknown"
)

// releasesURL is the endpoint queried for the latest published release
var releasesURL = "https://api.github.com/repos/matthewgall/bikeinsight/releases/latest"

// GetVersion returns the application version
func GetVersion() string {
	if version != "dev" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return shortRevision(setting.Value)
			}
		}
	}

	if commit != "unknown" {
		return shortRevision(commit)
	}

	return "dev"
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// GetUserAgent returns the user agent sent when fetching remote tables
func GetUserAgent() string {
	return fmt.Sprintf("matthewgall/bikeinsight %s", GetVersion())
}

// GitHubRelease represents a GitHub release
type GitHubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
	Name    string `json:"name"`
}

// LatestRelease returns the newest release if it is newer than current, or nil
func LatestRelease(ctx context.Context, current string) (*GitHubRelease, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", GetUserAgent())
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SourceError{StatusCode: resp.StatusCode, URL: releasesURL, Message: "release lookup failed"}
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to parse release: %w", err)
	}

	if release.TagName == "" || !isNewerVersion(release.TagName, current) {
		return nil, nil
	}
	return &release, nil
}

// CheckForUpdates prints a notice when a newer release is published.
// Development builds are never checked.
func CheckForUpdates(ctx context.Context, logger *Logger) {
	currentVersion := GetVersion()
	if currentVersion == "dev" || !strings.HasPrefix(currentVersion, "v") {
		logger.Debug("Skipping update check for development build")
		return
	}

	release, err := LatestRelease(ctx, currentVersion)
	if err != nil {
		logger.Debug("Failed to check for updates", "error", err)
		return
	}
	if release == nil {
		return
	}

	logger.UserMessage("\n╔══════════════════════════════════════════════════════════════╗")
	logger.UserMessage("║  A new version of bikeinsight is available!                  ║")
	logger.UserMessage("║  Current: %-51s║", currentVersion)
	logger.UserMessage("║  Latest:  %-51s║", release.TagName)
	logger.UserMessage("║                                                              ║")
	logger.UserMessage("║  Download: %-50s║", release.HTMLURL)
	logger.UserMessage("╚══════════════════════════════════════════════════════════════╝\n")
}

// isNewerVersion compares dotted versions numerically, ignoring a v prefix
// and any pre-release suffix
func isNewerVersion(latest, current string) bool {
	latestParts := versionParts(latest)
	currentParts := versionParts(current)

	for i := 0; i < len(latestParts) && i < len(currentParts); i++ {
		if latestParts[i] != currentParts[i] {
			return latestParts[i] > currentParts[i]
		}
	}

	return len(latestParts) > len(currentParts)
}

func versionParts(v string) []int {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}

	var parts []int
	for _, s := range strings.Split(v, ".") {
		n, err := strconv.Atoi(s)
		if err != nil {
			break
		}
		parts = append(parts, n)
	}
	return parts
}
