// Package grid computes the Compare sheet: its addressing scheme, header
// rows, lookup/compare formulas and formatting directives.
//
// Everything in this package is derived from a single *Address. The layout
// planner creates it once; the formula synthesizer and the format planner
// only consume it, so header, formula and border columns cannot drift apart.
package grid

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Role is the position of a column inside a field triplet.
type Role int

const (
	RoleOriginal Role = iota
	RoleExport
	RoleCompare
)

// Roles in column order.
var Roles = [...]Role{RoleOriginal, RoleExport, RoleCompare}

func (r Role) String() string {
	switch r {
	case RoleOriginal:
		return "Original"
	case RoleExport:
		return "Export"
	case RoleCompare:
		return "Compare"
	default:
		return "Role(" + strconv.Itoa(int(r)) + ")"
	}
}

const (
	KeyColumn      = 1 // column A
	SuperHeaderRow = 1 // field names
	SubHeaderRow   = 2 // Key / Original / Export / Compare
	FirstDataRow   = 3

	rolesPerField = len(Roles)
)

var (
	ErrTooManyColumns  = errors.New("grid exceeds the worksheet column limit")
	ErrAddressMismatch = errors.New("input does not match grid address")
)

// Address maps (field, role) to a one-based column and a data row offset
// to a one-based row. Column 1 is reserved for the key.
type Address struct {
	fields int
	rows   int
}

// NewAddress returns the addressing scheme for F fields and R data rows.
func NewAddress(fields, rows int) (*Address, error) {
	if fields < 0 || rows < 0 {
		return nil, fmt.Errorf("invalid grid size %d fields x %d rows", fields, rows)
	}
	if last := KeyColumn + rolesPerField*fields; last > excelize.MaxColumns {
		return nil, fmt.Errorf("%w: %d fields need %d columns, limit %d",
			ErrTooManyColumns, fields, last, excelize.MaxColumns)
	}
	if last := FirstDataRow + rows - 1; last > excelize.TotalRows {
		return nil, fmt.Errorf("grid needs %d rows, limit %d", last, excelize.TotalRows)
	}
	return &Address{fields: fields, rows: rows}, nil
}

// Fields is F.
func (a *Address) Fields() int { return a.fields }

// Rows is R, the number of data rows.
func (a *Address) Rows() int { return a.rows }

// Column returns the column of (field, role): 2+3i, 3+3i, 4+3i.
func (a *Address) Column(field int, role Role) int {
	if field < 0 || field >= a.fields {
		panic(fmt.Sprintf("grid: field index %d out of range [0,%d)", field, a.fields))
	}
	if role < RoleOriginal || role > RoleCompare {
		panic(fmt.Sprintf("grid: invalid role %d", role))
	}
	return KeyColumn + 1 + rolesPerField*field + int(role)
}

// Row returns the sheet row of data row offset (0-based).
func (a *Address) Row(offset int) int {
	if offset < 0 || offset >= a.rows {
		panic(fmt.Sprintf("grid: row offset %d out of range [0,%d)", offset, a.rows))
	}
	return FirstDataRow + offset
}

// LastColumn is the rightmost used column (1 when F = 0).
func (a *Address) LastColumn() int { return KeyColumn + rolesPerField*a.fields }

// LastRow is the bottom used row; the sub-header row when R = 0.
func (a *Address) LastRow() int { return SubHeaderRow + a.rows }

// Cell returns the A1-style name of (col, row).
func Cell(col, row int) string {
	return ColumnName(col) + strconv.Itoa(row)
}

// AbsCell returns the $A$1-style name of (col, row).
func AbsCell(col, row int) string {
	return "$" + ColumnName(col) + "$" + strconv.Itoa(row)
}

// ColumnName converts a one-based column number to letters (1 → A, 27 → AA).
func ColumnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		panic(fmt.Sprintf("grid: %v", err))
	}
	return name
}
