// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/crime-extract/pkg/types"
)

func defaultInput() types.InputConfig {
	return types.InputConfig{CrimeCodeColumn: "crime_code", NarrativeColumn: "narrative"}
}

func TestLoadTable_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crimes.csv")
	content := "\xEF\xBB\xBFreport_id,Crime_Code,narrative\n" +
		"1,220,\"S1 (male, 6ft) pried front door.\"\n" +
		",,\n" +
		"2,459\n" +
		"3,999,Window smashed.,extra\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tbl, err := LoadTable(path, defaultInput())
	require.NoError(t, err)

	assert.Equal(t, []string{"report_id", "Crime_Code", "narrative"}, tbl.Header)
	require.Len(t, tbl.Records, 3, "blank row skipped")
	assert.Equal(t, types.Record{CrimeCode: "220", Narrative: "S1 (male, 6ft) pried front door."}, tbl.Records[0])
	assert.Equal(t, types.Record{CrimeCode: "459", Narrative: ""}, tbl.Records[1], "short row padded")
	assert.Equal(t, []string{"3", "999", "Window smashed."}, tbl.Rows[2], "long row truncated")
}

func TestLoadTable_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crimes.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"crime_code", "narrative"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{220, "Entry via pried door."}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"459", "Rear window smashed."}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := LoadTable(path, defaultInput())
	require.NoError(t, err)

	require.Len(t, tbl.Records, 2)
	assert.Equal(t, "220", tbl.Records[0].CrimeCode)
	assert.Equal(t, "Rear window smashed.", tbl.Records[1].Narrative)
}

func TestLoadTable_Errors(t *testing.T) {
	dir := t.TempDir()

	noNarrative := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(noNarrative, []byte("crime_code,text\n220,hello\n"), 0o644))
	_, err := LoadTable(noNarrative, defaultInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), `"narrative"`)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = LoadTable(empty, defaultInput())
	assert.Error(t, err)

	_, err = LoadTable(filepath.Join(dir, "data.parquet"), defaultInput())
	assert.ErrorContains(t, err, "unsupported input format")

	_, err = LoadTable(filepath.Join(dir, "missing.csv"), defaultInput())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadTable_CustomColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.csv")
	require.NoError(t, os.WriteFile(path, []byte("code,details\n220,Door kicked in.\n"), 0o644))

	tbl, err := LoadTable(path, types.InputConfig{CrimeCodeColumn: "code", NarrativeColumn: "details"})
	require.NoError(t, err)
	assert.Equal(t, []types.Record{{CrimeCode: "220", Narrative: "Door kicked in."}}, tbl.Records)
}

func TestLoadCrimeCodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crime_codes.csv")
	content := "code,description\n220, Burglary \n459,Commercial Burglary\n,orphan\nshort\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	codes, err := LoadCrimeCodes(path, nil)
	require.NoError(t, err)

	assert.Equal(t, types.CrimeCodes{"220": "Burglary", "459": "Commercial Burglary"}, codes)
	assert.Equal(t, "Burglary", codes.Lookup("220.0"))
	assert.Equal(t, types.UnknownCrimeType, codes.Lookup("999"))
}

func TestLoadCrimeCodes_MissingFile(t *testing.T) {
	codes, err := LoadCrimeCodes(filepath.Join(t.TempDir(), "nope.csv"), nil)
	require.NoError(t, err)
	assert.Empty(t, codes)
	assert.Equal(t, types.UnknownCrimeType, codes.Lookup("220"))
}
