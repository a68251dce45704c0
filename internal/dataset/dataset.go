// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads the narrative table and the crime code lookup.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/crime-extract/pkg/types"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// Table is a loaded input file. Rows keep every original cell so output can
// repeat the input columns; Records holds the two columns extraction needs.
type Table struct {
	Header  []string
	Rows    [][]string
	Records []types.Record
}

// LoadTable reads a .csv or .xlsx file (first sheet) whose first row is the
// header. Both columns named in cfg must be present.
func LoadTable(path string, cfg types.InputConfig) (*Table, error) {
	var (
		raw [][]string
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		raw, err = readCSV(path)
	case ".xlsx", ".xlsm":
		raw, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .csv or .xlsx)", ext)
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("input %s is empty", path)
	}

	header := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		header[i] = strings.TrimSpace(h)
	}

	codeCol := cfg.CrimeCodeColumn
	if codeCol == "" {
		codeCol = types.DefaultCrimeCodeColumn
	}
	narrCol := cfg.NarrativeColumn
	if narrCol == "" {
		narrCol = types.DefaultNarrativeColumn
	}
	codeIdx, err := columnIndex(header, codeCol)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", path, err)
	}
	narrIdx, err := columnIndex(header, narrCol)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", path, err)
	}

	t := &Table{Header: header}
	for _, row := range raw[1:] {
		if isBlank(row) {
			continue
		}
		row = fit(row, len(header))
		t.Rows = append(t.Rows, row)
		t.Records = append(t.Records, types.Record{
			CrimeCode: strings.TrimSpace(row[codeIdx]),
			Narrative: row[narrIdx],
		})
	}
	return t, nil
}

// LoadCrimeCodes reads a CSV whose first column is the code and second the
// description, after one header row. A missing file is not an error: every
// code then resolves to types.UnknownCrimeType.
func LoadCrimeCodes(path string, logger *zap.Logger) (types.CrimeCodes, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rows, err := readCSV(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("crime codes file not found; crime types will be Unknown", zap.String("path", path))
			return types.CrimeCodes{}, nil
		}
		return nil, err
	}

	codes := make(types.CrimeCodes)
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		code := strings.TrimSpace(row[0])
		if code == "" {
			continue
		}
		codes[code] = strings.TrimSpace(row[1])
	}
	logger.Debug("loaded crime codes", zap.Int("count", len(codes)), zap.String("path", path))
	return codes, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(skipBOM(f))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheets[0], path, err)
	}
	return rows, nil
}

// skipBOM drops a UTF-8 byte order mark, which spreadsheet exports often add.
func skipBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, _ := io.ReadFull(r, buf)
	if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w %q (have %s)", ErrMissingColumn, name, strings.Join(header, ", "))
}

// fit pads or truncates row to exactly n cells.
func fit(row []string, n int) []string {
	if len(row) == n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
