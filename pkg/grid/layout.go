package grid

import (
	"github.com/ruslano69/gridcompare/pkg/core/table"
)

// KeyHeader is the sub-header label of the key column.
const KeyHeader = "Key"

// Layout is the grid skeleton: the address, both header rows and the key
// column. It carries no formulas.
type Layout struct {
	Addr   *Address
	Fields []string

	// SuperHeader is row 1: "" under the key, then field, "", "" per triplet.
	SuperHeader []string
	// SubHeader is row 2: "Key", then Original, Export, Compare per triplet.
	SubHeader []string
	// Keys are the key column values, one per data row from row 3.
	Keys []table.Value
}

// PlanLayout creates the grid address for fields x keys and fills the
// header rows. It is the only place an Address is created for a report.
func PlanLayout(fields []string, keys []table.Value) (*Layout, error) {
	addr, err := NewAddress(len(fields), len(keys))
	if err != nil {
		return nil, err
	}

	l := &Layout{
		Addr:        addr,
		Fields:      append([]string(nil), fields...),
		SuperHeader: make([]string, addr.LastColumn()),
		SubHeader:   make([]string, addr.LastColumn()),
		Keys:        append([]table.Value(nil), keys...),
	}

	l.SubHeader[KeyColumn-1] = KeyHeader
	for i, f := range l.Fields {
		l.SuperHeader[addr.Column(i, RoleOriginal)-1] = f
		for _, role := range Roles {
			l.SubHeader[addr.Column(i, role)-1] = role.String()
		}
	}

	return l, nil
}

// HeaderRows returns rows 1 and 2 in order.
func (l *Layout) HeaderRows() [][]string {
	return [][]string{l.SuperHeader, l.SubHeader}
}

// KeyCell returns the name of the key cell of data row offset.
func (l *Layout) KeyCell(offset int) string {
	return Cell(KeyColumn, l.Addr.Row(offset))
}
