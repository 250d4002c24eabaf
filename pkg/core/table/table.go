// Package table holds the in-memory tabular model shared by ingestion,
// the comparison grid and the workbook writer.
//
// A Table is immutable once built: constructors copy their input and
// accessors return copies where mutation would leak.
package table

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Table is an ordered list of named fields plus ordered rows.
// Every row carries exactly one value per field.
type Table struct {
	name   string
	fields []string
	index  map[string]int
	rows   [][]Value
}

// New builds a table. Short rows are padded with empty values; rows wider
// than the header and duplicate field names are rejected.
func New(name string, fields []string, rows [][]Value) (*Table, error) {
	t := &Table{
		name:   name,
		fields: append([]string(nil), fields...),
		index:  make(map[string]int, len(fields)),
		rows:   make([][]Value, len(rows)),
	}

	for i, f := range t.fields {
		if _, dup := t.index[f]; dup {
			return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateField, f, name)
		}
		t.index[f] = i
	}

	for i, row := range rows {
		if len(row) > len(t.fields) {
			return nil, fmt.Errorf("%w: %q row %d has %d values, %d fields",
				ErrRowWidth, name, i+1, len(row), len(t.fields))
		}
		r := make([]Value, len(t.fields))
		copy(r, row)
		t.rows[i] = r
	}

	return t, nil
}

// FromStrings builds a table from raw text records, inferring cell kinds.
func FromStrings(name string, fields []string, records [][]string) (*Table, error) {
	rows := make([][]Value, len(records))
	for i, rec := range records {
		row := make([]Value, len(rec))
		for j, raw := range rec {
			row[j] = Infer(raw)
		}
		rows[i] = row
	}
	return New(name, fields, rows)
}

// MustFromStrings is FromStrings for fixtures; it panics on error.
func MustFromStrings(name string, fields []string, records [][]string) *Table {
	t, err := FromStrings(name, fields, records)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table's display name (usually the source file).
func (t *Table) Name() string { return t.name }

// Fields returns a copy of the declared field names in order.
func (t *Table) Fields() []string { return append([]string(nil), t.fields...) }

// Width is the number of declared fields.
func (t *Table) Width() int { return len(t.fields) }

// Len is the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// HasField reports whether name is a declared field (case-sensitive, verbatim).
func (t *Table) HasField(name string) bool {
	_, ok := t.index[name]
	return ok
}

// FieldIndex returns the 0-based position of a field.
func (t *Table) FieldIndex(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return -1, &FieldNotFoundError{Table: t.name, Field: name}
	}
	return i, nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	return append([]Value(nil), t.rows[i]...)
}

// Cell returns the value of field col in row i.
func (t *Table) Cell(i, col int) Value { return t.rows[i][col] }

// Column returns the values of one field in row order.
func (t *Table) Column(name string) ([]Value, error) {
	col, err := t.FieldIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[col]
	}
	return out, nil
}

// Map returns a new table with fn applied to every cell.
func (t *Table) Map(fn func(field string, v Value) Value) *Table {
	out := &Table{
		name:   t.name,
		fields: t.fields,
		index:  t.index,
		rows:   make([][]Value, len(t.rows)),
	}
	for i, row := range t.rows {
		r := make([]Value, len(row))
		for j, v := range row {
			r[j] = fn(t.fields[j], v)
		}
		out.rows[i] = r
	}
	return out
}

// Fingerprint is a 64-bit xxh3 digest of fields and cells, hex-encoded.
// Two tables with the same header and the same cell text share a fingerprint.
func (t *Table) Fingerprint() string {
	h := xxh3.New()
	sep := []byte{0x1f}
	for _, f := range t.fields {
		h.WriteString(f)
		h.Write(sep)
	}
	h.Write([]byte{0x1e})
	for _, row := range t.rows {
		for _, v := range row {
			h.Write([]byte{byte(v.Kind)})
			h.WriteString(v.Raw)
			h.Write(sep)
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(uint64ToBytes(h.Sum64()))
}

// uint64ToBytes big-endian.
func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
