package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FormatCSV selects a directory holding one CSV file per table.
const FormatCSV = "csv"

// CSVReader reads <dir>/actuals.csv, budget.csv, cash.csv and fx.csv.
// Absent files are left out of the result so Load can report them uniformly.
type CSVReader struct{}

// Format returns the reader name.
func (r *CSVReader) Format() string { return FormatCSV }

// Read loads every table file present in dir.
func (r *CSVReader) Read(dir string) (Sheets, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening ledger source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening ledger source: %s is not a directory", dir)
	}

	sheets := make(Sheets, len(TableNames()))
	for _, name := range TableNames() {
		path := filepath.Join(dir, name+".csv")
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		recs, err := ReadRecords(f)
		f.Close()
		if err != nil {
			return nil, &DataLoadError{Table: name, Err: err}
		}
		sheets[name] = recs
	}
	return sheets, nil
}

// ReadRecords reads every CSV record from r. All records must have as many
// fields as the header.
func ReadRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return records, nil
}

// WriteCSV writes each table in sheets to <dir>/<table>.csv.
func WriteCSV(dir string, sheets Sheets) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	for _, name := range TableNames() {
		recs, ok := sheets[name]
		if !ok {
			continue
		}
		if err := writeCSVFile(filepath.Join(dir, name+".csv"), recs); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVFile(path string, recs [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	for i, rec := range recs {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing %s row %d: %w", path, i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
