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
	"testing"
	"time"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func rec(t *testing.T, date string, hour, weather, workday, count int) HourlyRecord {
	t.Helper()
	return HourlyRecord{
		Date:    day(t, date),
		Hour:    hour,
		Weather: weather,
		Workday: workday,
		Count:   count,
	}
}

func allColumns() map[string]bool {
	return map[string]bool{
		ColDate:    true,
		ColHour:    true,
		ColWeather: true,
		ColWorkday: true,
		ColCount:   true,
	}
}

// newTestDataset builds a dataset whose daily table covers every date in hourly
func newTestDataset(t *testing.T, hourly ...HourlyRecord) *Dataset {
	t.Helper()
	seen := make(map[time.Time]bool)
	var daily []DailyRecord
	for _, h := range hourly {
		if !seen[h.Date] {
			seen[h.Date] = true
			daily = append(daily, DailyRecord{Date: h.Date})
		}
	}
	return &Dataset{
		Daily:         daily,
		Hourly:        hourly,
		HourlyColumns: allColumns(),
		LoadedAt:      time.Now(),
	}
}

// sampleDataset spans three days with commute and leisure patterns
func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	return newTestDataset(t,
		// 2011-01-01 is a holiday with mixed weather
		rec(t, "2011-01-01", 8, 1, 0, 40),
		rec(t, "2011-01-01", 13, 1, 0, 220),
		rec(t, "2011-01-01", 17, 2, 0, 150),
		// working days
		rec(t, "2011-01-03", 8, 1, 1, 300),
		rec(t, "2011-01-03", 13, 2, 1, 120),
		rec(t, "2011-01-03", 17, 1, 1, 420),
		rec(t, "2011-01-04", 8, 3, 1, 90),
		rec(t, "2011-01-04", 13, 1, 1, 140),
		rec(t, "2011-01-04", 17, 3, 1, 160),
	)
}
