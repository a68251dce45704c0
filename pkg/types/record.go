// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strconv"
	"strings"
)

// UnknownCrimeType is the crime_type label for codes missing from the lookup table.
const UnknownCrimeType = "Unknown"

// NoMatch is the value every unresolved extraction field carries. Fields are
// never omitted from output; they hold NoMatch instead.
const NoMatch = ""

// MaxSuspects bounds the number of suspect descriptors kept per record.
const MaxSuspects = 2

// Record is one input row: a crime code and the free-text narrative.
type Record struct {
	CrimeCode string `json:"crime_code" yaml:"crime_code"`
	Narrative string `json:"narrative" yaml:"narrative"`
}

// Vehicle holds vehicle attributes found in a narrative. Each field is
// resolved independently; any of them may be NoMatch.
type Vehicle struct {
	Make  string `json:"make" yaml:"make"`
	Model string `json:"model" yaml:"model"`
	Color string `json:"color" yaml:"color"`
	Plate string `json:"plate" yaml:"plate"`
}

// IsEmpty reports whether no vehicle attribute was resolved.
func (v Vehicle) IsEmpty() bool {
	return v.Make == NoMatch && v.Model == NoMatch && v.Color == NoMatch && v.Plate == NoMatch
}

// Fields is the set of values an extractor derives from a narrative.
type Fields struct {
	// MethodOfEntry is a label from the entry-method vocabulary, "other", or NoMatch.
	MethodOfEntry string `json:"method_of_entry" yaml:"method_of_entry"`

	// Suspects holds at most MaxSuspects descriptors in narrative order.
	Suspects []string `json:"suspects" yaml:"suspects"`

	Vehicle Vehicle `json:"vehicle" yaml:"vehicle"`
}

// Extraction is the result produced for exactly one input Record.
type Extraction struct {
	CrimeType string `json:"crime_type" yaml:"crime_type"`
	Fields    `yaml:",inline"`
}

// Suspect returns the i-th (zero-based) suspect descriptor or NoMatch.
func (e Extraction) Suspect(i int) string {
	if i < 0 || i >= len(e.Suspects) {
		return NoMatch
	}
	return e.Suspects[i]
}

// ResultColumns are the output columns appended after the input columns,
// in output order.
var ResultColumns = []string{
	"crime_type",
	"method_of_entry",
	"suspect_1",
	"suspect_2",
	"vehicle_make",
	"vehicle_model",
	"vehicle_color",
	"vehicle_plate",
}

// Row returns the extraction flattened to ResultColumns order. The slice
// always has len(ResultColumns) entries.
func (e Extraction) Row() []string {
	return []string{
		e.CrimeType,
		e.MethodOfEntry,
		e.Suspect(0),
		e.Suspect(1),
		e.Vehicle.Make,
		e.Vehicle.Model,
		e.Vehicle.Color,
		e.Vehicle.Plate,
	}
}

// CrimeCodes maps a crime code to its human-readable description. It is
// loaded once per run and never modified afterwards.
type CrimeCodes map[string]string

// Lookup resolves code to its label, or UnknownCrimeType. Spreadsheet cells
// often render integer codes as floats ("220.0"), so that form also matches.
func (c CrimeCodes) Lookup(code string) string {
	code = strings.TrimSpace(code)
	if label, ok := c[code]; ok {
		return label
	}
	if f, err := strconv.ParseFloat(code, 64); err == nil && f == float64(int64(f)) {
		if label, ok := c[strconv.FormatInt(int64(f), 10)]; ok {
			return label
		}
	}
	return UnknownCrimeType
}
