// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the extraction artifact: the input columns followed
// by the result columns, one row per input record in input order. The file
// extension selects the format.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/crime-extract/pkg/types"
)

// Options controls Write.
type Options struct {
	// CSVCopy also writes a sibling .csv next to an .xlsx output.
	CSVCopy bool
}

// Table is the flattened artifact.
type Table struct {
	Header []string
	Rows   [][]string

	// Input and Results keep the unflattened data for structured formats.
	Input   []map[string]string
	Results []types.Extraction
}

// RowColumn is the row-number key column of the SQLite export.
const RowColumn = "_row"

// NewTable joins input rows with their extractions. Input columns that share
// a name with a result column are replaced by the result column. Remaining
// input names are made unique ignoring case: blank headers become column_N,
// and repeats or the reserved RowColumn get a _2, _3 suffix.
func NewTable(inputHeader []string, inputRows [][]string, results []types.Extraction) (*Table, error) {
	if len(inputRows) != len(results) {
		return nil, fmt.Errorf("have %d input rows but %d results", len(inputRows), len(results))
	}

	reserved := make(map[string]bool, len(types.ResultColumns))
	for _, c := range types.ResultColumns {
		reserved[c] = true
	}
	var keep []int
	for i, h := range inputHeader {
		if !reserved[strings.ToLower(h)] {
			keep = append(keep, i)
		}
	}

	t := &Table{Results: results}
	names := uniqueNames(inputHeader, keep)
	t.Header = append(t.Header, names...)
	t.Header = append(t.Header, types.ResultColumns...)

	for r, in := range inputRows {
		row := make([]string, 0, len(t.Header))
		input := make(map[string]string, len(keep))
		for k, i := range keep {
			v := ""
			if i < len(in) {
				v = in[i]
			}
			row = append(row, v)
			input[names[k]] = v
		}
		row = append(row, results[r].Row()...)
		t.Rows = append(t.Rows, row)
		t.Input = append(t.Input, input)
	}
	return t, nil
}

func uniqueNames(header []string, keep []int) []string {
	taken := map[string]bool{RowColumn: true}
	for _, c := range types.ResultColumns {
		taken[c] = true
	}
	out := make([]string, len(keep))
	for k, i := range keep {
		base := strings.TrimSpace(header[i])
		if base == "" {
			base = fmt.Sprintf("column_%d", i+1)
		}
		name := base
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[strings.ToLower(name)] = true
		out[k] = name
	}
	return out
}

// Write stores t at path and returns every file written.
func Write(ctx context.Context, path string, t *Table, opts Options) ([]string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		err = WriteXLSX(path, t)
		if err == nil && opts.CSVCopy {
			csvPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
			if err := WriteCSV(csvPath, t); err != nil {
				return []string{path}, err
			}
			return []string{path, csvPath}, nil
		}
	case ".csv":
		err = WriteCSV(path, t)
	case ".json":
		err = WriteJSON(path, t)
	case ".yaml", ".yml":
		err = WriteYAML(path, t)
	case ".db", ".sqlite", ".sqlite3":
		err = WriteSQLite(ctx, path, t)
	default:
		return nil, fmt.Errorf("unsupported output format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// Entry is one record in the JSON and YAML exports.
type Entry struct {
	Row        int               `json:"row" yaml:"row"`
	Input      map[string]string `json:"input" yaml:"input"`
	Extraction types.Extraction  `json:"extraction" yaml:"extraction"`
}

func (t *Table) entries() []Entry {
	entries := make([]Entry, len(t.Results))
	for i, r := range t.Results {
		e := r
		if e.Suspects == nil {
			e.Suspects = []string{}
		}
		entries[i] = Entry{Row: i + 1, Input: t.Input[i], Extraction: e}
	}
	return entries
}

// WriteJSON writes t as an indented JSON array of Entry.
func WriteJSON(path string, t *Table) error {
	data, err := json.MarshalIndent(t.entries(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteYAML writes t as a YAML sequence of Entry.
func WriteYAML(path string, t *Table) error {
	data, err := yaml.Marshal(t.entries())
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
