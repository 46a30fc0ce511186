package ledger

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FormatXLSX selects a workbook with one sheet per table.
const FormatXLSX = "xlsx"

// XLSXReader reads the actuals, budget, cash and fx sheets of a workbook.
// Other sheets are ignored.
type XLSXReader struct{}

// Format returns the reader name.
func (r *XLSXReader) Format() string { return FormatXLSX }

// Read loads the ledger sheets of the workbook at path. Cell values are read
// as displayed, so date cells arrive in their number format.
func (r *XLSXReader) Read(path string) (Sheets, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	wanted := make(map[string]bool, len(TableNames()))
	for _, name := range TableNames() {
		wanted[name] = true
	}

	sheets := make(Sheets, len(wanted))
	for _, sheet := range f.GetSheetList() {
		name := strings.ToLower(strings.TrimSpace(sheet))
		if !wanted[name] {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &DataLoadError{Table: name, Err: fmt.Errorf("reading sheet %q: %w", sheet, err)}
		}
		sheets[name] = rows
	}
	return sheets, nil
}

// WriteXLSX writes sheets into a new workbook at path.
func WriteXLSX(path string, sheets Sheets) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, name := range TableNames() {
		recs, ok := sheets[name]
		if !ok {
			continue
		}
		if first {
			// Reuse the default sheet so the workbook has no empty tab.
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("naming sheet %s: %w", name, err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
		for i, rec := range recs {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			row := make([]any, len(rec))
			for j, v := range rec {
				row[j] = v
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("writing sheet %s row %d: %w", name, i+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}
