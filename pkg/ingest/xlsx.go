package ingest

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/gridcompare/pkg/core/table"
)

// ReadXLSX reads one worksheet of an Excel file. The first row is the header;
// an empty sheetName selects the first sheet.
//
// Example:
//
//	t, err := ingest.ReadXLSX("export.xlsx", "Orders")
func ReadXLSX(filePath string, sheetName string) (*table.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: %s[%s]", ErrNoHeader, filepath.Base(filePath), sheetName)
	}

	// GetRows drops trailing empty cells; the header defines the width
	header := rows[0]
	data := rows[1:]

	name := filepath.Base(filePath)
	if sheetName != f.GetSheetName(0) {
		name += "[" + sheetName + "]"
	}
	return table.FromStrings(name, header, data)
}
