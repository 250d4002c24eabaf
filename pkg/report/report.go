// Package report assembles a comparison report from two tables and a key.
//
// BuildComparisonReport is pure: it validates the key, resolves the common
// fields, plans the grid once and derives formulas and formatting from that
// one plan. Writing the workbook is left to pkg/xlsx.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ruslano69/gridcompare/pkg/core/table"
	"github.com/ruslano69/gridcompare/pkg/diff"
	"github.com/ruslano69/gridcompare/pkg/grid"
)

// Default sheet names of the persisted workbook.
const (
	SheetOriginal = "Original file"
	SheetExport   = "Export file"
	SheetCompare  = "Compare"
)

var (
	// ErrKeyFieldMissing - the chosen key is not a field of one or both tables.
	ErrKeyFieldMissing = errors.New("key field missing")

	// ErrEmptyCommonFieldSet is for callers that refuse a key-only grid;
	// BuildComparisonReport itself never returns it.
	ErrEmptyCommonFieldSet = errors.New("no common fields to compare")
)

// SheetNames names the three sheets of the workbook.
type SheetNames struct {
	Original string `yaml:"original"`
	Export   string `yaml:"export"`
	Compare  string `yaml:"compare"`
}

// DefaultSheetNames returns "Original file", "Export file", "Compare".
func DefaultSheetNames() SheetNames {
	return SheetNames{Original: SheetOriginal, Export: SheetExport, Compare: SheetCompare}
}

// Options tune report assembly.
type Options struct {
	// KeyTriplet renders the key field as its own Original/Export/Compare
	// triplet when it is a common field, in addition to column A.
	KeyTriplet bool
	Sheets     SheetNames
}

// DefaultOptions keeps the key triplet and uses the default sheet names.
func DefaultOptions() Options {
	return Options{KeyTriplet: true, Sheets: DefaultSheetNames()}
}

// Report is everything needed to write the comparison workbook.
type Report struct {
	Original *table.Table
	Export   *table.Table
	KeyField string
	Sheets   SheetNames

	Layout   *grid.Layout
	Formulas *grid.FormulaSet
	Format   *grid.FormatPlan

	// Preview is what the Compare column will evaluate to.
	Preview *diff.Preview
}

// Fields returns the compared fields in grid order.
func (r *Report) Fields() []string { return append([]string(nil), r.Layout.Fields...) }

// BuildComparisonReport builds a report with DefaultOptions.
func BuildComparisonReport(original, export *table.Table, keyField string) (*Report, error) {
	return Build(original, export, keyField, DefaultOptions())
}

// Build assembles the report. It fails with ErrKeyFieldMissing before any
// other work when keyField is not declared in both tables; any other
// component error is returned as is and no partial report is produced.
func Build(original, export *table.Table, keyField string, opts Options) (*Report, error) {
	if original == nil || export == nil {
		return nil, fmt.Errorf("tables cannot be nil")
	}
	if err := checkKey(original, export, keyField); err != nil {
		return nil, err
	}
	sheets := opts.Sheets
	if sheets == (SheetNames{}) {
		sheets = DefaultSheetNames()
	}
	if err := sheets.validate(); err != nil {
		return nil, err
	}

	fields := diff.CommonFields(original, export)
	if !opts.KeyTriplet {
		fields = diff.Without(fields, keyField)
	}

	keys, err := original.Column(keyField)
	if err != nil {
		return nil, err
	}

	// the one and only address of this report
	layout, err := grid.PlanLayout(fields, keys)
	if err != nil {
		return nil, err
	}

	formulas, err := grid.SynthesizeFormulas(layout.Addr, layout.Fields,
		grid.SourceOf(sheets.Original, original),
		grid.SourceOf(sheets.Export, export),
		keyField)
	if err != nil {
		return nil, err
	}

	format, err := grid.PlanFormat(layout.Addr, layout.Fields)
	if err != nil {
		return nil, err
	}

	preview, err := diff.Evaluate(original, export, layout.Fields, keyField)
	if err != nil {
		return nil, err
	}

	return &Report{
		Original: original,
		Export:   export,
		KeyField: keyField,
		Sheets:   sheets,
		Layout:   layout,
		Formulas: formulas,
		Format:   format,
		Preview:  preview,
	}, nil
}

// RequireFields returns ErrEmptyCommonFieldSet for a key-only grid.
func (r *Report) RequireFields() error {
	if len(r.Layout.Fields) == 0 {
		return fmt.Errorf("%w: %q and %q share no comparable field",
			ErrEmptyCommonFieldSet, r.Original.Name(), r.Export.Name())
	}
	return nil
}

func checkKey(original, export *table.Table, keyField string) error {
	var missing []string
	if !original.HasField(keyField) {
		missing = append(missing, original.Name())
	}
	if !export.HasField(keyField) {
		missing = append(missing, export.Name())
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %q not declared in %q", ErrKeyFieldMissing, keyField, missing)
	}
	return nil
}

func (s SheetNames) validate() error {
	names := []string{s.Original, s.Export, s.Compare}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			return fmt.Errorf("sheet names must not be empty: %+v", s)
		}
		// sheet names are case-insensitive in a workbook
		if seen[strings.ToLower(n)] {
			return fmt.Errorf("sheet name %q used twice", n)
		}
		seen[strings.ToLower(n)] = true
	}
	return nil
}
