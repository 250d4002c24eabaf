package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/gridcompare/pkg/core/table"
)

// Compare cell results.
const (
	ResultOK    = "OK"
	ResultError = "Error"
)

// Source describes a pass-through sheet as the formulas see it: header in
// row 1, data from row 2, fields in declared order from column A.
type Source struct {
	Sheet  string
	Fields []string
	Rows   int
}

// SourceOf describes t written to the named sheet.
func SourceOf(sheet string, t *table.Table) Source {
	return Source{Sheet: sheet, Fields: t.Fields(), Rows: t.Len()}
}

// Formula is formula text anchored at a cell. Text has no leading "=".
type Formula struct {
	Col  int
	Row  int
	Text string
}

// Cell returns the A1 name of the anchor cell.
func (f Formula) Cell() string { return Cell(f.Col, f.Row) }

// Triplet holds the three formulas of one (row, field).
type Triplet struct {
	Original Formula
	Export   Formula
	Compare  Formula
}

// FormulaSet is every formula of the Compare sheet.
type FormulaSet struct {
	Cells     [][]Triplet // [row offset][field]
	Summaries []Formula   // one per field, row 1 of the Compare column
}

// Len is the total number of formulas.
func (s *FormulaSet) Len() int {
	n := len(s.Summaries)
	for _, row := range s.Cells {
		n += rolesPerField * len(row)
	}
	return n
}

// All flattens the set: summaries first, then data rows left to right.
func (s *FormulaSet) All() []Formula {
	out := make([]Formula, 0, s.Len())
	out = append(out, s.Summaries...)
	for _, row := range s.Cells {
		for _, t := range row {
			out = append(out, t.Original, t.Export, t.Compare)
		}
	}
	return out
}

// SynthesizeFormulas emits the lookup, compare and summary formulas for
// the grid at addr. The key column is resolved in each source on its own;
// a key or field missing from either source is reported immediately.
func SynthesizeFormulas(addr *Address, fields []string, original, export Source, keyField string) (*FormulaSet, error) {
	if len(fields) != addr.Fields() {
		return nil, fmt.Errorf("%w: %d fields, address has %d", ErrAddressMismatch, len(fields), addr.Fields())
	}

	orig, err := newSourceRefs(original, keyField, fields)
	if err != nil {
		return nil, err
	}
	exp, err := newSourceRefs(export, keyField, fields)
	if err != nil {
		return nil, err
	}

	set := &FormulaSet{
		Cells:     make([][]Triplet, addr.Rows()),
		Summaries: make([]Formula, len(fields)),
	}

	for i, f := range fields {
		oCol := addr.Column(i, RoleOriginal)
		eCol := addr.Column(i, RoleExport)
		cCol := addr.Column(i, RoleCompare)
		set.Summaries[i] = Formula{Col: cCol, Row: SuperHeaderRow, Text: summaryFormula(addr, cCol)}

		for r := 0; r < addr.Rows(); r++ {
			if set.Cells[r] == nil {
				set.Cells[r] = make([]Triplet, len(fields))
			}
			row := addr.Row(r)
			keyCell := "$" + ColumnName(KeyColumn) + strconv.Itoa(row)

			set.Cells[r][i] = Triplet{
				Original: Formula{Col: oCol, Row: row, Text: orig.lookup(f, keyCell)},
				Export:   Formula{Col: eCol, Row: row, Text: exp.lookup(f, keyCell)},
				Compare:  Formula{Col: cCol, Row: row, Text: compareFormula(Cell(oCol, row), Cell(eCol, row))},
			}
		}
	}

	for r := range set.Cells {
		if set.Cells[r] == nil {
			set.Cells[r] = []Triplet{}
		}
	}

	return set, nil
}

// compareFormula is "Error" when either lookup failed, "OK" when both sides
// have the same type and the same case-sensitive text, "Error" otherwise.
func compareFormula(orig, exp string) string {
	return fmt.Sprintf(`IF(OR(ISERROR(%[1]s),ISERROR(%[2]s)),"%[3]s",IF(AND(ISTEXT(%[1]s)=ISTEXT(%[2]s),EXACT(%[1]s,%[2]s)),"%[4]s","%[3]s"))`,
		orig, exp, ResultError, ResultOK)
}

// summaryFormula counts "Error" over exactly the emitted data rows.
func summaryFormula(addr *Address, col int) string {
	if addr.Rows() == 0 {
		return "0"
	}
	return fmt.Sprintf(`COUNTIF(%s:%s,"%s")`,
		Cell(col, FirstDataRow), Cell(col, addr.LastRow()), ResultError)
}

// sourceRefs are the absolute ranges of one pass-through sheet.
// Fields are addressed by their declared column number: a header match
// in the sheet would fold case and treat ? * ~ as wildcards.
type sourceRefs struct {
	data    string // whole data block, row 2 down
	keys    string // key column, row 2 down
	columns map[string]int
}

func newSourceRefs(src Source, keyField string, fields []string) (*sourceRefs, error) {
	width := len(src.Fields)
	if width > excelize.MaxColumns {
		return nil, fmt.Errorf("%w: sheet %q has %d fields", ErrTooManyColumns, src.Sheet, width)
	}
	if src.Rows+1 > excelize.TotalRows {
		return nil, fmt.Errorf("sheet %q has %d rows, limit %d", src.Sheet, src.Rows, excelize.TotalRows-1)
	}

	refs := &sourceRefs{columns: make(map[string]int, width)}
	for i, f := range src.Fields {
		refs.columns[f] = i + 1
	}

	keyCol, ok := refs.columns[keyField]
	if !ok {
		return nil, &table.FieldNotFoundError{Table: src.Sheet, Field: keyField}
	}
	for _, f := range fields {
		if _, ok := refs.columns[f]; !ok {
			return nil, &table.FieldNotFoundError{Table: src.Sheet, Field: f}
		}
	}

	// An empty table still gets a one-row block so every range stays
	// top-to-bottom; the lookups then find nothing.
	lastRow := src.Rows + 1
	if lastRow < 2 {
		lastRow = 2
	}

	sheet := quoteSheet(src.Sheet)
	refs.data = sheet + "!" + AbsCell(1, 2) + ":" + AbsCell(width, lastRow)
	refs.keys = sheet + "!" + AbsCell(keyCol, 2) + ":" + AbsCell(keyCol, lastRow)
	return refs, nil
}

// lookup finds the last source row whose key equals keyCell and returns the
// field's value; #N/A when the key is absent. A blank source cell yields ""
// rather than the 0 a bare INDEX shows, so it never equals a number.
func (s *sourceRefs) lookup(field, keyCell string) string {
	cell := fmt.Sprintf("INDEX(%s,LOOKUP(2,1/EXACT(%s,%s),ROW(%s)-1),%d)",
		s.data, s.keys, keyCell, s.keys, s.columns[field])
	return fmt.Sprintf(`IF(ISBLANK(%[1]s),"",%[1]s)`, cell)
}

// quoteSheet quotes a sheet name for use in a reference.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
