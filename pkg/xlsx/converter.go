package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/gridcompare/pkg/core/table"
	"github.com/ruslano69/gridcompare/pkg/grid"
)

// WriteSheet - copy a table into its own worksheet
//
// Row 1 holds the field names in the header style, data starts at row 2 in
// field order. Lookup formulas of the Compare sheet address exactly this
// shape, so nothing is reordered or skipped. Numbers are written as numbers,
// empty values leave the cell blank.
//
// Example:
//
//	err := w.WriteSheet(original, "Original file")
func (w *Writer) WriteSheet(t *table.Table, sheetName string) error {
	if err := w.newSheet(sheetName); err != nil {
		return err
	}

	fields := t.Fields()
	for col, field := range fields {
		if err := w.f.SetCellStr(sheetName, grid.Cell(col+1, 1), field); err != nil {
			return fmt.Errorf("failed to write header %q: %w", field, err)
		}
	}
	if len(fields) > 0 {
		last := grid.Cell(len(fields), 1)
		if err := w.f.SetCellStyle(sheetName, "A1", last, w.headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i := 0; i < t.Len(); i++ {
		for col, v := range t.Row(i) {
			if v.IsEmpty() {
				continue
			}
			cell := grid.Cell(col+1, i+2)
			if err := w.f.SetCellValue(sheetName, cell, v.Native()); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheetName, cell, err)
			}
		}
	}

	if len(fields) > 0 {
		if err := w.setWidth(sheetName, len(fields)); err != nil {
			return err
		}
	}

	w.log.Debug().
		Str("sheet", sheetName).
		Str("table", t.Name()).
		Int("fields", len(fields)).
		Int("rows", t.Len()).
		Msg("sheet written")
	return nil
}

// newSheet creates a sheet; reusing a name would overwrite cells silently.
func (w *Writer) newSheet(name string) error {
	if w.closed {
		return ErrWriterClosed
	}
	for _, s := range w.sheets {
		if s == name {
			return fmt.Errorf("sheet %q written twice", name)
		}
	}
	if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	w.sheets = append(w.sheets, name)
	return nil
}

func (w *Writer) setWidth(sheetName string, columns int) error {
	first, last := grid.ColumnName(1), grid.ColumnName(columns)
	if err := w.f.SetColWidth(sheetName, first, last, w.opts.ColumnWidth); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

// newHeaderStyle - bold header on a blue fill
func newHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}
