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
	"time"
)

// FilterRange returns the records whose date lies in [start, end].
// The input slice is never modified.
func FilterRange(records []HourlyRecord, start, end time.Time) ([]HourlyRecord, error) {
	start, end = truncateDay(start), truncateDay(end)
	if start.After(end) {
		return nil, &InvalidRangeError{
			Start:  start,
			End:    end,
			Reason: "start date is after end date",
		}
	}

	r := DateRange{Start: start, End: end}
	filtered := make([]HourlyRecord, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Date) {
			filtered = append(filtered, rec)
		}
	}

	return filtered, nil
}

// Bounds returns the earliest and latest dates of the daily table
func (d *Dataset) Bounds() (DateRange, error) {
	if len(d.Daily) == 0 {
		return DateRange{}, &DataError{
			DataType: "daily",
			Message:  "no daily records to derive date bounds from",
		}
	}

	bounds := DateRange{Start: d.Daily[0].Date, End: d.Daily[0].Date}
	for _, rec := range d.Daily[1:] {
		if rec.Date.Before(bounds.Start) {
			bounds.Start = rec.Date
		}
		if rec.Date.After(bounds.End) {
			bounds.End = rec.Date
		}
	}

	return bounds, nil
}

// ResolveRange turns a user selection into a concrete range inside bounds.
// Zero start or end values default to the matching bound.
func ResolveRange(bounds DateRange, start, end time.Time) (DateRange, error) {
	if start.IsZero() {
		start = bounds.Start
	}
	if end.IsZero() {
		end = bounds.End
	}
	start, end = truncateDay(start), truncateDay(end)

	if start.After(end) {
		return DateRange{}, &InvalidRangeError{
			Start:  start,
			End:    end,
			Reason: "start date is after end date",
		}
	}
	if start.Before(bounds.Start) || end.After(bounds.End) {
		return DateRange{}, &InvalidRangeError{
			Start: start,
			End:   end,
			Reason: "outside dataset bounds " + bounds.Start.Format(DateLayout) +
				" to " + bounds.End.Format(DateLayout),
		}
	}

	return DateRange{Start: start, End: end}, nil
}

// ParseDate parses a dteday value; the empty string yields the zero time
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		// some exports carry a full timestamp
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, &ValidationError{
				Field:   "date",
				Value:   s,
				Message: "expected YYYY-MM-DD",
			}
		}
	}
	return truncateDay(t), nil
}

// truncateDay drops the time of day, keeping the calendar date in UTC
func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
