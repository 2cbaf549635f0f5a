package table

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
)

// ReadCSV loads a comma-separated file with a header row. Rows may have a
// varying number of fields.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "table: open csv")
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "table: read csv")
	}

	return fromRecords(records)
}

// WriteCSV saves a table as a comma-separated file
func WriteCSV(path string, t *Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "table: create csv")
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = eris.Wrap(closeErr, "table: close csv")
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return eris.Wrap(err, "table: write csv header")
	}
	if err := w.WriteAll(t.Cells); err != nil {
		return eris.Wrap(err, "table: write csv rows")
	}

	return nil
}
