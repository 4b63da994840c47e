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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxScaler(t *testing.T) {
	s := FitMinMax(0, 800, []float64{3, 10, 7}, []float64{1, 25})

	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 25.0, s.Max)
	assert.Equal(t, 0.0, s.Transform(1))
	assert.Equal(t, 800.0, s.Transform(25))
	assert.InDelta(t, 400.0, s.Transform(13), 1e-9)

	for _, x := range []float64{1, 4.5, 13, 25} {
		assert.InDelta(t, x, s.Inverse(s.Transform(x)), 1e-9)
	}
}

func TestMinMaxScaler_ZeroVariance(t *testing.T) {
	s := FitMinMax(0, 24, []float64{5, 5, 5})

	assert.True(t, s.Degenerate())
	assert.Equal(t, 0.0, s.Transform(5))
	assert.Equal(t, 5.0, s.Inverse(0))

	empty := FitMinMax(0, 24)
	assert.True(t, empty.Degenerate())
	assert.Equal(t, 0.0, empty.Transform(42))
}

func TestRFMOptions_MaxScore(t *testing.T) {
	assert.Equal(t, 541, DefaultRFMOptions().MaxScore())
	assert.Equal(t, 100, RFMOptions{RecencyMax: 100, ValueMax: 100}.MaxScore())
}

// threeGroups yields the groups (Clear, 8), (Clear, 17) and (Cloudy, 8)
func threeGroups(t *testing.T) *Dataset {
	return newTestDataset(t,
		rec(t, "2011-01-01", 8, 1, 1, 100),
		rec(t, "2011-01-02", 8, 1, 1, 200),
		rec(t, "2011-01-01", 17, 1, 1, 400),
		rec(t, "2011-01-01", 8, 2, 1, 50),
	)
}

func TestScoreRFM_JointScaling(t *testing.T) {
	ds := threeGroups(t)

	table, err := ScoreRFM(ds, ds.Hourly, WeatherKey(LocaleEnglish), DefaultRFMOptions())
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, 541, table.MaxScore)

	clear8, clear17, cloudy8 := table.Rows[0], table.Rows[1], table.Rows[2]
	assert.Equal(t, "Clear", clear8.Label)
	assert.Equal(t, 8, clear8.Hour)
	assert.Equal(t, 17, clear17.Hour)
	assert.Equal(t, "Cloudy", cloudy8.Label)

	// recency is distance from the latest hour in the table
	assert.Equal(t, 9.0, clear8.Recency)
	assert.Equal(t, 0.0, clear17.Recency)
	assert.Equal(t, 9.0, cloudy8.Recency)
	assert.Equal(t, 24.0, clear8.RecencyScaled)
	assert.Equal(t, 0.0, clear17.RecencyScaled)

	assert.Equal(t, 2.0, clear8.Frequency)
	assert.Equal(t, 300.0, clear8.Monetary)

	// frequency and monetary share one fit over [1, 400]
	assert.InDelta(t, 800.0/399, clear8.FrequencyScaled, 1e-9)
	assert.InDelta(t, 299*800.0/399, clear8.MonetaryScaled, 1e-9)
	assert.Equal(t, 0.0, clear17.FrequencyScaled)
	assert.Equal(t, 800.0, clear17.MonetaryScaled)
	assert.InDelta(t, 49*800.0/399, cloudy8.MonetaryScaled, 1e-9)

	assert.Equal(t, 209, clear8.Score)
	assert.Equal(t, 267, clear17.Score)
	assert.Equal(t, 41, cloudy8.Score)
}

func TestScoreRFM_PerColumnScaling(t *testing.T) {
	ds := threeGroups(t)
	opts := DefaultRFMOptions()
	opts.JointScaling = false

	table, err := ScoreRFM(ds, ds.Hourly, WeatherKey(LocaleEnglish), opts)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, 800.0, table.Rows[0].FrequencyScaled)
	assert.InDelta(t, 250*800.0/350, table.Rows[0].MonetaryScaled, 1e-9)
	assert.Equal(t, 465, table.Rows[0].Score)
	assert.Equal(t, 267, table.Rows[1].Score)
	assert.Equal(t, 8, table.Rows[2].Score)
}

func TestScoreRFM_ScoresWithinBounds(t *testing.T) {
	ds := sampleDataset(t)
	opts := DefaultRFMOptions()

	for _, key := range []GroupKey{WeatherKey(LocaleEnglish), WorkdayKey(LocaleEnglish)} {
		table, err := ScoreRFM(ds, ds.Hourly, key, opts)
		require.NoError(t, err)
		require.NotEmpty(t, table.Rows)

		for _, row := range table.Rows {
			assert.GreaterOrEqual(t, row.Score, 0)
			assert.LessOrEqual(t, row.Score, opts.MaxScore())
			assert.GreaterOrEqual(t, row.RecencyScaled, 0.0)
			assert.LessOrEqual(t, row.RecencyScaled, opts.RecencyMax)
			assert.GreaterOrEqual(t, row.FrequencyScaled, 0.0)
			assert.LessOrEqual(t, row.MonetaryScaled, opts.ValueMax)
		}
	}
}

func TestScoreRFM_SingleGroup(t *testing.T) {
	t.Run("distinct frequency and monetary", func(t *testing.T) {
		ds := newTestDataset(t, rec(t, "2011-01-01", 8, 1, 1, 10))

		table, err := ScoreRFM(ds, ds.Hourly, WeatherKey(LocaleEnglish), DefaultRFMOptions())
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)

		row := table.Rows[0]
		assert.Equal(t, 0.0, row.RecencyScaled)
		assert.Equal(t, 0.0, row.FrequencyScaled)
		assert.Equal(t, 800.0, row.MonetaryScaled)
		assert.Equal(t, 267, row.Score)
		assert.Contains(t, table.Warnings, "insufficient variance to rescale, using lower bound")
	})

	t.Run("everything constant", func(t *testing.T) {
		ds := newTestDataset(t, rec(t, "2011-01-01", 8, 1, 1, 1))

		table, err := ScoreRFM(ds, ds.Hourly, WeatherKey(LocaleEnglish), DefaultRFMOptions())
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, 0, table.Rows[0].Score)
	})
}

func TestScoreRFM_Pivot(t *testing.T) {
	ds := newTestDataset(t,
		rec(t, "2011-01-01", 0, 0, 0, 5),
		rec(t, "2011-01-01", 23, 0, 0, 50),
		rec(t, "2011-01-02", 8, 1, 1, 500),
	)

	table, err := ScoreRFM(ds, ds.Hourly, WorkdayKey(LocaleEnglish), DefaultRFMOptions())
	require.NoError(t, err)

	require.Len(t, table.Pivot, 2)
	holiday, workday := table.Pivot[0], table.Pivot[1]
	assert.Equal(t, "Holiday", holiday.Label)
	assert.Equal(t, "Workday", workday.Label)

	assert.Len(t, holiday.Scores, HoursPerDay)
	assert.True(t, holiday.Present[0])
	assert.True(t, holiday.Present[23])
	assert.False(t, holiday.Present[8])
	assert.True(t, workday.Present[8])
	assert.False(t, workday.Present[0])

	for _, row := range table.Rows {
		p := table.Pivot[0]
		if row.Label == "Workday" {
			p = table.Pivot[1]
		}
		assert.Equal(t, row.Score, p.Scores[row.Hour])
	}
}

func TestScoreRFM_Errors(t *testing.T) {
	t.Run("missing key column", func(t *testing.T) {
		ds := sampleDataset(t)
		delete(ds.HourlyColumns, ColWorkday)

		_, err := ScoreRFM(ds, ds.Hourly, WorkdayKey(LocaleEnglish), DefaultRFMOptions())
		var mce *MissingColumnsError
		require.True(t, errors.As(err, &mce))
		assert.Equal(t, []string{ColWorkday}, mce.Columns)

		_, err = ScoreRFM(ds, ds.Hourly, WeatherKey(LocaleEnglish), DefaultRFMOptions())
		assert.NoError(t, err)
	})

	t.Run("no records", func(t *testing.T) {
		ds := sampleDataset(t)

		table, err := ScoreRFM(ds, nil, WeatherKey(LocaleEnglish), DefaultRFMOptions())
		require.NoError(t, err)
		assert.Empty(t, table.Rows)
		assert.Empty(t, table.Pivot)
		assert.Contains(t, table.Warnings, "no records to score")
	})

	t.Run("unmapped codes are excluded", func(t *testing.T) {
		ds := newTestDataset(t,
			rec(t, "2011-01-01", 8, 1, 1, 10),
			rec(t, "2011-01-01", 9, 7, 1, 10),
		)

		table, err := ScoreRFM(ds, ds.Hourly, WeatherKey(LocaleEnglish), DefaultRFMOptions())
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, 1, table.Rows[0].Code)
		require.NotEmpty(t, table.Warnings)
		assert.Contains(t, table.Warnings[0], "code 7")
	})
}
