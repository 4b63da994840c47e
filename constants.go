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
	"sort"
)

const (
	// DateLayout is the format of the dteday column
	DateLayout = "2006-01-02"

	// HoursPerDay is the fixed width of the hour axis
	HoursPerDay = 24
)

// Source table column names
const (
	ColDate    = "dteday"
	ColHour    = "hr"
	ColWeather = "weathersit"
	ColWorkday = "workingday"
	ColCount   = "cnt"
)

// Label locales
const (
	LocaleEnglish    = "en"
	LocaleIndonesian = "id"
)

// Default RFM rescale ranges
const (
	DefaultRecencyMax = 24.0
	DefaultValueMax   = 800.0
)

// LabelMap is a fixed, total mapping from category code to display label
type LabelMap struct {
	Dimension string
	labels    map[int]string
}

// Label returns the label for code, or an UnmappedCodeError
func (m LabelMap) Label(code int) (string, error) {
	label, ok := m.labels[code]
	if !ok {
		return "", &UnmappedCodeError{Dimension: m.Dimension, Code: code}
	}
	return label, nil
}

// Codes returns the mapped codes in ascending order
func (m LabelMap) Codes() []int {
	codes := make([]int, 0, len(m.labels))
	for code := range m.labels {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// Labels returns the labels in code order
func (m LabelMap) Labels() []string {
	codes := m.Codes()
	labels := make([]string, len(codes))
	for i, code := range codes {
		labels[i] = m.labels[code]
	}
	return labels
}

var weatherLabels = map[string]map[int]string{
	LocaleEnglish: {
		1: "Clear",
		2: "Cloudy",
		3: "Rain",
		4: "Severe",
	},
	LocaleIndonesian: {
		1: "Cerah",
		2: "Berawan",
		3: "Hujan",
		4: "Ekstrem",
	},
}

var workdayLabels = map[string]map[int]string{
	LocaleEnglish: {
		1: "Workday",
		0: "Holiday",
	},
	LocaleIndonesian: {
		1: "Hari Kerja",
		0: "Hari Libur",
	},
}

// WeatherLabels returns the weather category labels for a locale
func WeatherLabels(locale string) LabelMap {
	labels, ok := weatherLabels[locale]
	if !ok {
		labels = weatherLabels[LocaleEnglish]
	}
	return LabelMap{Dimension: ColWeather, labels: labels}
}

// WorkdayLabels returns the workday flag labels for a locale
func WorkdayLabels(locale string) LabelMap {
	labels, ok := workdayLabels[locale]
	if !ok {
		labels = workdayLabels[LocaleEnglish]
	}
	return LabelMap{Dimension: ColWorkday, labels: labels}
}

// IsSupportedLocale reports whether label maps exist for locale
func IsSupportedLocale(locale string) bool {
	_, ok := weatherLabels[locale]
	return ok
}

// Panel identifiers, used as metric labels and map keys
const (
	PanelWeather    = "weather"
	PanelWorkday    = "workday"
	PanelRFMWeather = "rfm_weather"
	PanelRFMWorkday = "rfm_workday"
)

var panelTitles = map[string]map[string]string{
	LocaleEnglish: {
		PanelWeather:    "Weather vs Hourly Usage",
		PanelWorkday:    "Workday vs Hourly Usage",
		PanelRFMWeather: "RFM Analysis by Weather",
		PanelRFMWorkday: "RFM Analysis by Workday",
	},
	LocaleIndonesian: {
		PanelWeather:    "Pengaruh Cuaca terhadap Waktu Peminjaman Sepeda",
		PanelWorkday:    "Pengaruh Hari Kerja terhadap Waktu Peminjaman Sepeda",
		PanelRFMWeather: "RFM Analysis - Pengaruh Cuaca terhadap Penyewaan Sepeda",
		PanelRFMWorkday: "RFM Analysis - Pengaruh Hari Kerja dan Hari Libur",
	},
}

// PanelTitle returns the display title of a panel
func PanelTitle(locale, panel string) string {
	titles, ok := panelTitles[locale]
	if !ok {
		titles = panelTitles[LocaleEnglish]
	}
	return titles[panel]
}
