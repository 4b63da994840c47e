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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterRange(t *testing.T) {
	ds := sampleDataset(t)

	t.Run("inclusive on both ends", func(t *testing.T) {
		got, err := FilterRange(ds.Hourly, day(t, "2011-01-01"), day(t, "2011-01-03"))
		require.NoError(t, err)
		assert.Len(t, got, 6)
		for _, r := range got {
			assert.False(t, r.Date.Before(day(t, "2011-01-01")))
			assert.False(t, r.Date.After(day(t, "2011-01-03")))
		}
	})

	t.Run("every matching record is kept", func(t *testing.T) {
		start, end := day(t, "2011-01-03"), day(t, "2011-01-04")
		got, err := FilterRange(ds.Hourly, start, end)
		require.NoError(t, err)

		want := 0
		for _, r := range ds.Hourly {
			if !r.Date.Before(start) && !r.Date.After(end) {
				want++
			}
		}
		assert.Len(t, got, want)
	})

	t.Run("single day", func(t *testing.T) {
		got, err := FilterRange(ds.Hourly, day(t, "2011-01-04"), day(t, "2011-01-04"))
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		got, err := FilterRange(ds.Hourly, day(t, "2011-01-04").Add(15*time.Hour), day(t, "2011-01-04").Add(2*time.Hour))
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("start after end", func(t *testing.T) {
		_, err := FilterRange(ds.Hourly, day(t, "2011-01-04"), day(t, "2011-01-01"))
		var rangeErr *InvalidRangeError
		require.True(t, errors.As(err, &rangeErr))
		assert.Contains(t, rangeErr.Reason, "after")
	})

	t.Run("input is not modified", func(t *testing.T) {
		before := make([]HourlyRecord, len(ds.Hourly))
		copy(before, ds.Hourly)

		got, err := FilterRange(ds.Hourly, day(t, "2011-01-03"), day(t, "2011-01-03"))
		require.NoError(t, err)
		if len(got) > 0 {
			got[0].Count = -1
		}
		assert.Equal(t, before, ds.Hourly)
	})

	t.Run("empty result", func(t *testing.T) {
		got, err := FilterRange(ds.Hourly, day(t, "2012-01-01"), day(t, "2012-01-31"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestBounds(t *testing.T) {
	ds := sampleDataset(t)

	bounds, err := ds.Bounds()
	require.NoError(t, err)
	assert.Equal(t, day(t, "2011-01-01"), bounds.Start)
	assert.Equal(t, day(t, "2011-01-04"), bounds.End)
	assert.Equal(t, 4, bounds.Days())

	_, err = (&Dataset{}).Bounds()
	var dataErr *DataError
	assert.True(t, errors.As(err, &dataErr))
}

func TestResolveRange(t *testing.T) {
	bounds := DateRange{Start: day(t, "2011-01-01"), End: day(t, "2012-12-31")}

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		want      DateRange
		wantError bool
	}{
		{
			name: "defaults to full bounds",
			want: bounds,
		},
		{
			name:  "open end",
			start: day(t, "2012-06-01"),
			want:  DateRange{Start: day(t, "2012-06-01"), End: bounds.End},
		},
		{
			name: "open start",
			end:  day(t, "2011-02-01"),
			want: DateRange{Start: bounds.Start, End: day(t, "2011-02-01")},
		},
		{
			name:      "start after end",
			start:     day(t, "2012-02-01"),
			end:       day(t, "2012-01-01"),
			wantError: true,
		},
		{
			name:      "before dataset",
			start:     day(t, "2010-12-31"),
			end:       day(t, "2011-01-05"),
			wantError: true,
		},
		{
			name:      "after dataset",
			start:     day(t, "2012-12-01"),
			end:       day(t, "2013-01-01"),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRange(bounds, tt.start, tt.end)
			if tt.wantError {
				var rangeErr *InvalidRangeError
				assert.True(t, errors.As(err, &rangeErr), "expected InvalidRangeError, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = ParseDate("2011-03-15")
	require.NoError(t, err)
	assert.Equal(t, day(t, "2011-03-15"), d)

	d, err = ParseDate("2011-03-15T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, day(t, "2011-03-15"), d)

	_, err = ParseDate("15/03/2011")
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}
