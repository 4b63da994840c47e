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

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

// parquetReadThreads is the column reader parallelism handed to parquet-go
const parquetReadThreads = 4

// parquetDailyRow is the on-disk layout of the day table
type parquetDailyRow struct {
	Dteday string `parquet:"name=dteday, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// parquetHourlyRow is the on-disk layout of the hour table
type parquetHourlyRow struct {
	Dteday     string `parquet:"name=dteday, type=BYTE_ARRAY, convertedtype=UTF8"`
	Hr         int32  `parquet:"name=hr, type=INT32"`
	Weathersit int32  `parquet:"name=weathersit, type=INT32"`
	Workingday int32  `parquet:"name=workingday, type=INT32"`
	Cnt        int32  `parquet:"name=cnt, type=INT32"`
}

// hourlyParquetColumns is the fixed column set of a parquet hour table
var hourlyParquetColumns = []string{ColDate, ColHour, ColWeather, ColWorkday, ColCount}

// readParquet loads every row of a local parquet file into a slice of T
func readParquet[T any](path string) ([]T, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(T), parquetReadThreads)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pr.ReadStop()

	rows := make([]T, int(pr.GetNumRows()))
	if len(rows) == 0 {
		return rows, nil
	}
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows, nil
}

func readDailyParquet(path string) ([]DailyRecord, error) {
	rows, err := readParquet[parquetDailyRow](path)
	if err != nil {
		return nil, err
	}

	records := make([]DailyRecord, 0, len(rows))
	for i, row := range rows {
		date, err := ParseDate(row.Dteday)
		if err != nil || date.IsZero() {
			return nil, fmt.Errorf("row %d: invalid %s %q", i+1, ColDate, row.Dteday)
		}
		records = append(records, DailyRecord{Date: date})
	}
	return records, nil
}

func readHourlyParquet(path string) ([]HourlyRecord, map[string]bool, error) {
	rows, err := readParquet[parquetHourlyRow](path)
	if err != nil {
		return nil, nil, err
	}

	records := make([]HourlyRecord, 0, len(rows))
	for i, row := range rows {
		date, err := ParseDate(row.Dteday)
		if err != nil || date.IsZero() {
			return nil, nil, fmt.Errorf("row %d: invalid %s %q", i+1, ColDate, row.Dteday)
		}
		records = append(records, HourlyRecord{
			Date:    date,
			Hour:    int(row.Hr),
			Weather: int(row.Weathersit),
			Workday: int(row.Workingday),
			Count:   int(row.Cnt),
		})
	}

	columns := make(map[string]bool, len(hourlyParquetColumns))
	for _, col := range hourlyParquetColumns {
		columns[col] = true
	}
	return records, columns, nil
}
