// Package xlsx persists a comparison report as an Excel workbook.
//
// The workbook is written in one pass: the two source sheets, then the
// Compare grid with its formulas and formatting. Formulas are stored without
// cached results and the workbook asks for a full recalculation on load.
package xlsx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/gridcompare/pkg/core/table"
	"github.com/ruslano69/gridcompare/pkg/grid"
	"github.com/ruslano69/gridcompare/pkg/report"
)

// DefaultFileName is used when the output path is a directory.
const DefaultFileName = "comparison_output.xlsx"

// defaultSheet is the sheet excelize.NewFile starts with.
const defaultSheet = "Sheet1"

// ErrWriterClosed - the writer was finalized or closed.
var ErrWriterClosed = errors.New("writer is closed")

// Options of the workbook writer.
type Options struct {
	// ColumnWidth of every written column (default 15).
	ColumnWidth float64 `yaml:"column_width"`
	// FreezeHeader keeps the key column and both header rows of the grid visible.
	FreezeHeader bool `yaml:"freeze_header"`
}

// DefaultOptions returns width 15 with frozen headers.
func DefaultOptions() Options {
	return Options{ColumnWidth: 15, FreezeHeader: true}
}

// Writer accumulates sheets of one workbook.
type Writer struct {
	f    *excelize.File
	log  zerolog.Logger
	opts Options

	headerStyle int
	styles      *styleCache
	sheets      []string
	closed      bool
}

// NewWriter starts an empty workbook.
func NewWriter(log zerolog.Logger, opts Options) (*Writer, error) {
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = DefaultOptions().ColumnWidth
	}

	f := excelize.NewFile()

	fullCalc := true
	if err := f.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set calc properties: %w", err)
	}

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	return &Writer{
		f:           f,
		log:         log,
		opts:        opts,
		headerStyle: headerStyle,
		styles:      newStyleCache(f),
	}, nil
}

// Sheets returns the names written so far, in order.
func (w *Writer) Sheets() []string { return append([]string(nil), w.sheets...) }

// WriteGrid writes the Compare sheet: both header rows, the key column from
// row 3, every formula of the set and the formatting plan. Cells that hold
// no label, key or formula stay blank.
func (w *Writer) WriteGrid(sheetName string, headerRows [][]string, keys []table.Value,
	formulas *grid.FormulaSet, plan *grid.FormatPlan) error {
	if err := w.newSheet(sheetName); err != nil {
		return err
	}

	lastCol := 0
	for r, row := range headerRows {
		if len(row) > lastCol {
			lastCol = len(row)
		}
		for c, label := range row {
			if label == "" {
				continue
			}
			if err := w.f.SetCellStr(sheetName, grid.Cell(c+1, r+1), label); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
		}
	}

	for i, k := range keys {
		if k.IsEmpty() {
			continue
		}
		cell := grid.Cell(grid.KeyColumn, grid.FirstDataRow+i)
		if err := w.f.SetCellValue(sheetName, cell, k.Native()); err != nil {
			return fmt.Errorf("failed to write key %s: %w", cell, err)
		}
	}

	for _, fm := range formulas.All() {
		if err := w.f.SetCellFormula(sheetName, fm.Cell(), fm.Text); err != nil {
			return fmt.Errorf("failed to write formula %s: %w", fm.Cell(), err)
		}
	}

	if err := w.applyFormat(sheetName, plan); err != nil {
		return err
	}

	if lastCol > 0 {
		if err := w.setWidth(sheetName, lastCol); err != nil {
			return err
		}
	}

	if w.opts.FreezeHeader {
		topLeft := grid.Cell(grid.KeyColumn+1, grid.FirstDataRow)
		if err := w.f.SetPanes(sheetName, &excelize.Panes{
			Freeze:      true,
			XSplit:      grid.KeyColumn,
			YSplit:      grid.SubHeaderRow,
			TopLeftCell: topLeft,
			ActivePane:  "bottomRight",
		}); err != nil {
			return fmt.Errorf("failed to freeze panes: %w", err)
		}
	}

	w.log.Debug().
		Str("sheet", sheetName).
		Int("keys", len(keys)).
		Int("formulas", formulas.Len()).
		Int("ranges", len(plan.Items)).
		Msg("grid written")
	return nil
}

// applyFormat merges every directive touching a cell into one style.
func (w *Writer) applyFormat(sheetName string, plan *grid.FormatPlan) error {
	cells := make(map[cellRef]styleKey)

	for _, item := range plan.Items {
		rg := item.Range
		switch item.Directive {
		case grid.DirectiveAlignLeft:
			for row := rg.FromRow; row <= rg.ToRow; row++ {
				for col := rg.FromCol; col <= rg.ToCol; col++ {
					k := cells[cellRef{col, row}]
					k.alignLeft = true
					cells[cellRef{col, row}] = k
				}
			}
		case grid.DirectiveBorderBox:
			for ref, mask := range perimeter(rg) {
				k := cells[ref]
				k.border |= mask
				cells[ref] = k
			}
		default:
			return fmt.Errorf("unknown format directive %v", item.Directive)
		}
	}

	for ref, key := range cells {
		style, err := w.styles.get(key)
		if err != nil {
			return fmt.Errorf("failed to create style: %w", err)
		}
		cell := grid.Cell(ref.col, ref.row)
		if err := w.f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style %s: %w", cell, err)
		}
	}
	return nil
}

// Finalize saves the workbook. When path is an existing directory the file
// DefaultFileName is created inside it. It returns the path written.
func (w *Writer) Finalize(path string) (string, error) {
	if w.closed {
		return "", ErrWriterClosed
	}
	if len(w.sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if !w.wrote(defaultSheet) {
		if err := w.f.DeleteSheet(defaultSheet); err != nil {
			return "", fmt.Errorf("failed to drop %s: %w", defaultSheet, err)
		}
	}
	if idx, err := w.f.GetSheetIndex(w.sheets[0]); err == nil && idx >= 0 {
		w.f.SetActiveSheet(idx)
	}

	if err := w.f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}

	w.log.Info().Str("path", path).Strs("sheets", w.sheets).Msg("workbook saved")
	return path, w.Close()
}

// Close releases the workbook. Safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.f.Close()
}

func (w *Writer) wrote(name string) bool {
	for _, s := range w.sheets {
		if s == name {
			return true
		}
	}
	return false
}

// WriteReport persists a report: original sheet, export sheet, Compare grid.
func WriteReport(r *report.Report, path string, log zerolog.Logger, opts Options) (string, error) {
	w, err := NewWriter(log, opts)
	if err != nil {
		return "", err
	}
	defer w.Close()

	if err := w.WriteSheet(r.Original, r.Sheets.Original); err != nil {
		return "", err
	}
	if err := w.WriteSheet(r.Export, r.Sheets.Export); err != nil {
		return "", err
	}
	if err := w.WriteGrid(r.Sheets.Compare, r.Layout.HeaderRows(), r.Layout.Keys, r.Formulas, r.Format); err != nil {
		return "", err
	}
	return w.Finalize(path)
}
