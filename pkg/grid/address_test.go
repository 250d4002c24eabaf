package grid

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestAddress_ColumnsAreBijective(t *testing.T) {
	for _, f := range []int{0, 1, 2, 7, 40} {
		addr, err := NewAddress(f, 3)
		if err != nil {
			t.Fatalf("NewAddress(%d) failed: %v", f, err)
		}

		seen := map[int]bool{KeyColumn: true}
		prev := KeyColumn
		for i := 0; i < f; i++ {
			for _, role := range Roles {
				col := addr.Column(i, role)
				if want := 2 + 3*i + int(role); col != want {
					t.Errorf("F=%d Column(%d,%v) = %d, want %d", f, i, role, col, want)
				}
				if seen[col] {
					t.Errorf("F=%d column %d assigned twice", f, col)
				}
				if col != prev+1 {
					t.Errorf("F=%d gap or disorder: %d after %d", f, col, prev)
				}
				seen[col] = true
				prev = col
			}
		}

		if addr.LastColumn() != prev {
			t.Errorf("F=%d LastColumn() = %d, want %d", f, addr.LastColumn(), prev)
		}
		if len(seen) != 1+3*f {
			t.Errorf("F=%d covered %d columns, want %d", f, len(seen), 1+3*f)
		}
	}
}

func TestAddress_Rows(t *testing.T) {
	addr, _ := NewAddress(1, 4)
	if addr.Row(0) != 3 || addr.Row(3) != 6 {
		t.Errorf("Row() = %d..%d, want 3..6", addr.Row(0), addr.Row(3))
	}
	if addr.LastRow() != 6 {
		t.Errorf("LastRow() = %d, want 6", addr.LastRow())
	}

	empty, _ := NewAddress(1, 0)
	if empty.LastRow() != SubHeaderRow {
		t.Errorf("LastRow() with no data = %d, want %d", empty.LastRow(), SubHeaderRow)
	}
}

func TestAddress_OutOfRangePanics(t *testing.T) {
	addr, _ := NewAddress(2, 2)
	for name, fn := range map[string]func(){
		"field":  func() { addr.Column(2, RoleOriginal) },
		"role":   func() { addr.Column(0, Role(3)) },
		"row":    func() { addr.Row(2) },
		"negrow": func() { addr.Row(-1) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			fn()
		})
	}
}

func TestNewAddress_Limits(t *testing.T) {
	maxFields := (excelize.MaxColumns - 1) / 3
	if _, err := NewAddress(maxFields, 1); err != nil {
		t.Errorf("NewAddress(%d) failed: %v", maxFields, err)
	}
	_, err := NewAddress(maxFields+1, 1)
	if !errors.Is(err, ErrTooManyColumns) {
		t.Errorf("expected ErrTooManyColumns, got %v", err)
	}
	if _, err := NewAddress(-1, 0); err == nil {
		t.Error("expected error for negative size")
	}
}

func TestCellNames(t *testing.T) {
	tests := []struct {
		col, row int
		cell     string
		abs      string
	}{
		{1, 1, "A1", "$A$1"},
		{26, 3, "Z3", "$Z$3"},
		{27, 10, "AA10", "$AA$10"},
		{703, 2, "AAA2", "$AAA$2"},
	}
	for _, tt := range tests {
		if got := Cell(tt.col, tt.row); got != tt.cell {
			t.Errorf("Cell(%d,%d) = %s, want %s", tt.col, tt.row, got, tt.cell)
		}
		if got := AbsCell(tt.col, tt.row); got != tt.abs {
			t.Errorf("AbsCell(%d,%d) = %s, want %s", tt.col, tt.row, got, tt.abs)
		}
	}
}

func TestRole_String(t *testing.T) {
	want := []string{"Original", "Export", "Compare"}
	for i, r := range Roles {
		if r.String() != want[i] {
			t.Errorf("Role %d = %s, want %s", i, r, want[i])
		}
	}
}
