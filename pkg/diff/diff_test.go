package diff

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ruslano69/gridcompare/pkg/core/table"
)

// Helper: создать тестовую таблицу из [][]string
func createTestTable(name string, fields []string, rows [][]string) *table.Table {
	return table.MustFromStrings(name, fields, rows)
}

func TestBuildKeyIndex_LastWriteWins(t *testing.T) {
	tbl := createTestTable("orig", []string{"ID", "Name"}, [][]string{
		{"X", "first"},
		{"Y", "other"},
		{"X", "second"},
	})

	ix, err := BuildKeyIndex(tbl, "ID")
	if err != nil {
		t.Fatalf("BuildKeyIndex failed: %v", err)
	}

	if ix.Len() != 2 {
		t.Errorf("Expected 2 distinct keys, got %d", ix.Len())
	}

	row, ok := ix.Lookup(table.Text("X"))
	if !ok {
		t.Fatal("Expected key X to be present")
	}
	if row[1].Raw != "second" {
		t.Errorf("Expected last row for X, got Name=%q", row[1].Raw)
	}

	if i, _ := ix.RowIndex(table.Text("X")); i != 2 {
		t.Errorf("Expected row index 2 for X, got %d", i)
	}
}

func TestBuildKeyIndex_EmptyKeyIsDistinct(t *testing.T) {
	tbl := createTestTable("orig", []string{"ID", "Name"}, [][]string{
		{"", "blank"},
		{"1", "one"},
	})

	ix, err := BuildKeyIndex(tbl, "ID")
	if err != nil {
		t.Fatalf("BuildKeyIndex failed: %v", err)
	}

	v, ok, err := ix.Value(table.Empty(), "Name")
	if err != nil || !ok {
		t.Fatalf("Expected empty key to be indexed, ok=%v err=%v", ok, err)
	}
	if v.Raw != "blank" {
		t.Errorf("Expected 'blank', got %q", v.Raw)
	}
}

func TestBuildKeyIndex_FieldNotFound(t *testing.T) {
	tbl := createTestTable("orig", []string{"ID"}, nil)

	_, err := BuildKeyIndex(tbl, "id")
	if !errors.Is(err, table.ErrFieldNotFound) {
		t.Errorf("Expected ErrFieldNotFound, got %v", err)
	}
}

func TestBuildKeyIndex_NumericKeysCanonical(t *testing.T) {
	tbl := createTestTable("orig", []string{"ID"}, [][]string{{"1.0"}})

	ix, err := BuildKeyIndex(tbl, "ID")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ix.RowIndex(table.Infer("1")); !ok {
		t.Error("Expected 1 to find key 1.0")
	}
}

func TestBuildKeyIndex_WideIntegerKeys(t *testing.T) {
	tbl, err := table.New("orig", []string{"ID", "Name"}, [][]table.Value{
		{table.Integer(9007199254740992), table.Text("a")},
		{table.Integer(9007199254740993), table.Text("b")},
	})
	if err != nil {
		t.Fatal(err)
	}

	ix, err := BuildKeyIndex(tbl, "ID")
	if err != nil {
		t.Fatal(err)
	}
	if ix.Len() != 2 {
		t.Fatalf("Expected 2 distinct keys, got %d", ix.Len())
	}
	v, ok, err := ix.Value(table.Infer("9007199254740993"), "Name")
	if err != nil || !ok || v.Raw != "b" {
		t.Errorf("Expected Name=b, got %#v ok=%v err=%v", v, ok, err)
	}
}

func TestCommonFields(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []string
		expect []string
	}{
		{"same", []string{"ID", "Name"}, []string{"ID", "Name"}, []string{"ID", "Name"}},
		{"original order wins", []string{"C", "A", "B"}, []string{"A", "B", "C"}, []string{"C", "A", "B"}},
		{"export extra ignored", []string{"ID"}, []string{"Extra", "ID"}, []string{"ID"}},
		{"case sensitive", []string{"ID", "name"}, []string{"ID", "Name"}, []string{"ID"}},
		{"no trimming", []string{"ID", "Name "}, []string{"ID", "Name"}, []string{"ID"}},
		{"disjoint", []string{"A"}, []string{"B"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CommonFields(createTestTable("a", tt.a, nil), createTestTable("b", tt.b, nil))
			if diff := cmp.Diff(tt.expect, got); diff != "" {
				t.Errorf("CommonFields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithout(t *testing.T) {
	got := Without([]string{"ID", "Name", "Age"}, "ID")
	if diff := cmp.Diff([]string{"Name", "Age"}, got); diff != "" {
		t.Errorf("Without mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_IdenticalTables(t *testing.T) {
	fields := []string{"ID", "Name"}
	rows := [][]string{{"1", "Alice"}, {"2", "Bob"}, {"3", "Carol"}}
	a := createTestTable("a", fields, rows)

	p, err := Evaluate(a, a, fields, "ID")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if !p.IsEqual() {
		t.Errorf("Expected all OK, got %d errors", p.TotalErrors())
	}
	if len(p.Outcomes) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(p.Outcomes))
	}
	for r, row := range p.Outcomes {
		for f, o := range row {
			if o != OutcomeOK {
				t.Errorf("row %d field %d: %v", r, f, o)
			}
		}
	}
}

func TestEvaluate_KeyMissingInExport(t *testing.T) {
	fields := []string{"ID", "Name"}
	a := createTestTable("a", fields, [][]string{{"1", "A"}, {"2", "B"}, {"3", "C"}, {"4", "D"}})
	b := createTestTable("b", fields, [][]string{{"1", "A"}, {"2", "B"}, {"3", "C"}})

	p, err := Evaluate(a, b, fields, "ID")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if diff := cmp.Diff([]int{1, 1}, p.ErrorCounts); diff != "" {
		t.Errorf("ErrorCounts mismatch (-want +got):\n%s", diff)
	}
	if p.Outcomes[3][1] != OutcomeNotFound {
		t.Errorf("Expected not found for key 4, got %v", p.Outcomes[3][1])
	}
	if len(p.MissingInExport) != 1 || p.MissingInExport[0].Raw != "4" {
		t.Errorf("Expected key 4 missing in export, got %v", p.MissingInExport)
	}
}

func TestEvaluate_Mismatch(t *testing.T) {
	a := createTestTable("a", []string{"ID", "Name", "Age"}, [][]string{{"1", "Alice", "25"}})
	// другой порядок колонок и ключевое поле на другой позиции
	b := createTestTable("b", []string{"Age", "Name", "ID"}, [][]string{{"26", "Alice", "1"}})

	p, err := Evaluate(a, b, []string{"Name", "Age"}, "ID")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if len(p.Mismatches) != 1 {
		t.Fatalf("Expected 1 mismatch, got %d", len(p.Mismatches))
	}
	m := p.Mismatches[0]
	if m.Field != "Age" || m.Original.Raw != "25" || m.Export.Raw != "26" {
		t.Errorf("Unexpected mismatch: %+v", m)
	}
	if p.Outcomes[0][0] != OutcomeOK {
		t.Errorf("Expected Name OK, got %v", p.Outcomes[0][0])
	}
}

func TestEvaluate_NoTypeCoercion(t *testing.T) {
	a := table.MustFromStrings("a", []string{"ID", "V"}, [][]string{{"1", "abc"}})
	b := table.MustFromStrings("b", []string{"ID", "V"}, [][]string{{"1", "ABC"}})

	p, err := Evaluate(a, b, []string{"V"}, "ID")
	if err != nil {
		t.Fatal(err)
	}
	if p.Outcomes[0][0] != OutcomeMismatch {
		t.Errorf("Expected case-sensitive mismatch, got %v", p.Outcomes[0][0])
	}
}

func TestEvaluate_FieldNotFound(t *testing.T) {
	a := createTestTable("a", []string{"ID", "Name"}, nil)
	b := createTestTable("b", []string{"ID"}, nil)

	_, err := Evaluate(a, b, []string{"Name"}, "ID")
	if !errors.Is(err, table.ErrFieldNotFound) {
		t.Errorf("Expected ErrFieldNotFound, got %v", err)
	}
}

func TestPreview_FormatText(t *testing.T) {
	fields := []string{"ID", "Name"}
	a := createTestTable("a", fields, [][]string{{"1", "A"}, {"2", "B"}})
	b := createTestTable("b", fields, [][]string{{"1", "Z"}})

	p, err := Evaluate(a, b, fields, "ID")
	if err != nil {
		t.Fatal(err)
	}

	out := p.FormatText()
	for _, want := range []string{"Missing in export (1)", "Mismatches (1)", "Name: 'A' → 'Z'"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatText missing %q:\n%s", want, out)
		}
	}
}
