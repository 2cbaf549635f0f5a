// Package table reads and writes the tabular files placescore scores:
// CSV and XLSX with a header row.
package table

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ppiankov/placescore/internal/model"
	"github.com/ppiankov/placescore/internal/normalize"
)

// Format is a supported file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf picks the format from the file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("table: unsupported file extension %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// Table is a header plus rows of string cells. Rows may be shorter than the
// header; missing trailing cells read as absent.
type Table struct {
	Columns []string
	Cells   [][]string
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Cells)
}

// Row returns data row i keyed by column name. Cells beyond the row's length
// are left out of the map so they read the same as a missing column.
func (t *Table) Row(i int) model.Row {
	cells := t.Cells[i]
	row := make(model.Row, len(t.Columns))
	for j, col := range t.Columns {
		if j < len(cells) {
			row[col] = cells[j]
		}
	}
	return row
}

// Rows returns every data row keyed by column name
func (t *Table) Rows() []model.Row {
	rows := make([]model.Row, t.Len())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// WithScores returns a copy of the table with Score and Status columns set
// from records, which must be aligned 1:1 with the rows. Existing output
// columns are overwritten in place; otherwise they are appended.
func (t *Table) WithScores(records []model.ScoredRecord) (*Table, error) {
	if len(records) != t.Len() {
		return nil, eris.Errorf("table: %d scored records for %d rows", len(records), t.Len())
	}

	columns := append([]string(nil), t.Columns...)
	scoreCol := findColumn(columns, normalize.OutputColumns[0])
	if scoreCol < 0 {
		columns = append(columns, normalize.OutputColumns[0])
		scoreCol = len(columns) - 1
	}
	statusCol := findColumn(columns, normalize.OutputColumns[1])
	if statusCol < 0 {
		columns = append(columns, normalize.OutputColumns[1])
		statusCol = len(columns) - 1
	}

	out := &Table{Columns: columns, Cells: make([][]string, t.Len())}
	for i, rec := range records {
		cells := make([]string, len(columns))
		copy(cells, t.Cells[i])
		cells[scoreCol] = FormatScore(rec.Score.Value)
		cells[statusCol] = string(rec.Score.Status)
		out.Cells[i] = cells
	}

	return out, nil
}

// Subset returns a table holding only the given rows, in the given order
func (t *Table) Subset(indices []int) *Table {
	out := &Table{Columns: t.Columns, Cells: make([][]string, 0, len(indices))}
	for _, i := range indices {
		out.Cells = append(out.Cells, t.Cells[i])
	}
	return out
}

// FormatScore renders a score in its shortest decimal form
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Read loads a table from a CSV or XLSX file. sheet selects an XLSX sheet by
// name; empty means the first sheet.
func Read(path, sheet string) (*Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return ReadXLSX(path, sheet)
	default:
		return ReadCSV(path)
	}
}

// Write saves a table as CSV or XLSX depending on the extension
func Write(path string, t *Table) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatXLSX:
		return WriteXLSX(path, t)
	default:
		return WriteCSV(path, t)
	}
}

func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, eris.New("table: missing header row")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	return &Table{Columns: header, Cells: records[1:]}, nil
}

func findColumn(columns []string, name string) int {
	for i, c := range columns {
		if normalize.CanonicalKey(c) == normalize.CanonicalKey(name) {
			return i
		}
	}
	return -1
}
