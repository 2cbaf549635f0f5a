package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/ppiankov/placescore/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func scored(values ...float64) []model.ScoredRecord {
	records := make([]model.ScoredRecord, len(values))
	for i, v := range values {
		status := model.StatusLikelyInvalid
		if v >= 60 {
			status = model.StatusValid
		}
		records[i] = model.ScoredRecord{Index: i, Score: model.Score{Value: v, Status: status}}
	}
	return records
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("places.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatOf("/tmp/out/places.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatOf("places.parquet")
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "in.csv", "\ufeffName,HasCity,CityGeo\nJoe's,1,akron\nShort\n")

	tbl, err := Read(path, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "HasCity", "CityGeo"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())

	assert.Equal(t, model.Row{"Name": "Joe's", "HasCity": "1", "CityGeo": "akron"}, tbl.Row(0))

	// A short row leaves trailing columns absent
	row := tbl.Row(1)
	assert.Equal(t, "Short", row["Name"])
	_, ok := row["HasCity"]
	assert.False(t, ok)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = ReadCSV(writeFile(t, "empty.csv", ""))
	assert.Error(t, err)
}

func TestWithScores_AppendsColumns(t *testing.T) {
	tbl := &Table{
		Columns: []string{"Name", "HasCity"},
		Cells:   [][]string{{"A", "1"}, {"B"}},
	}

	out, err := tbl.WithScores(scored(91, 12.5))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "HasCity", "Score", "Status"}, out.Columns)
	assert.Equal(t, []string{"A", "1", "91", "Valid"}, out.Cells[0])
	assert.Equal(t, []string{"B", "", "12.5", "LikelyInvalid"}, out.Cells[1])

	// The input table is untouched
	assert.Equal(t, []string{"Name", "HasCity"}, tbl.Columns)
	assert.Equal(t, []string{"B"}, tbl.Cells[1])
}

func TestWithScores_OverwritesExistingColumns(t *testing.T) {
	tbl := &Table{
		Columns: []string{"status", "Name", "SCORE"},
		Cells:   [][]string{{"Review", "A", "40"}},
	}

	out, err := tbl.WithScores(scored(70))
	require.NoError(t, err)

	assert.Equal(t, []string{"status", "Name", "SCORE"}, out.Columns)
	assert.Equal(t, []string{"Valid", "A", "70"}, out.Cells[0])
}

func TestWithScores_LengthMismatch(t *testing.T) {
	tbl := &Table{Columns: []string{"Name"}, Cells: [][]string{{"A"}}}
	_, err := tbl.WithScores(scored(1, 2))
	assert.Error(t, err)
}

func TestSubset(t *testing.T) {
	tbl := &Table{Columns: []string{"Name"}, Cells: [][]string{{"A"}, {"B"}, {"C"}}}

	sub := tbl.Subset([]int{0, 2})
	assert.Equal(t, tbl.Columns, sub.Columns)
	assert.Equal(t, [][]string{{"A"}, {"C"}}, sub.Cells)

	assert.Equal(t, 0, tbl.Subset(nil).Len())
}

func TestCSVRoundTrip(t *testing.T) {
	tbl := &Table{
		Columns: []string{"Name", "Cuisine"},
		Cells:   [][]string{{"Luigi's, Akron", "pizza;italian"}, {"\"Quoted\"", ""}},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Write(path, tbl))

	got, err := Read(path, "")
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, got.Columns)
	assert.Equal(t, tbl.Cells, got.Cells)
}

func TestXLSXRoundTrip(t *testing.T) {
	tbl := &Table{
		Columns: []string{"Name", "HasCity", "Score"},
		Cells:   [][]string{{"Joe's", "1", "35"}, {"Cafe", "0", "0"}},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Write(path, tbl))

	got, err := Read(path, "")
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, got.Columns)
	assert.Equal(t, tbl.Cells, got.Cells)
}

func TestReadXLSX_SheetByName(t *testing.T) {
	f := xlsx.NewFile()
	for name, rows := range map[string][][]string{
		"Summary": {{"Total"}, {"2"}},
		"Places":  {{"Name", "HasPhone"}, {"Joe's", "1"}},
	} {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, cells := range rows {
			row := sheet.AddRow()
			for _, v := range cells {
				row.AddCell().SetString(v)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.Save(path))

	tbl, err := ReadXLSX(path, "Places")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "HasPhone"}, tbl.Columns)
	assert.Equal(t, model.Row{"Name": "Joe's", "HasPhone": "1"}, tbl.Row(0))

	_, err = ReadXLSX(path, "Missing")
	assert.Error(t, err)
}
