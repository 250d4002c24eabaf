package ingest

import (
	"testing"

	"github.com/ruslano69/gridcompare/pkg/core/table"
)

func TestNormalizer_Rules(t *testing.T) {
	n, err := NewNormalizer(nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		rule  NormalizeRule
		input string
		want  string
	}{
		{NormalizeTrim, "  a b  ", "a b"},
		{NormalizeWhitespace, "  Hello    World\n", "Hello World"},
		{NormalizeUpperCase, "abc", "ABC"},
		{NormalizeLowerCase, "ABC", "abc"},
		{NormalizeNFC, "e\u0301", "\u00e9"},
		{NormalizePhone, "+7 (999) 123-45-67", "79991234567"},
		{NormalizePhone, "8(999)123-45-67", "79991234567"},
		{NormalizePhone, "12345", "12345"},
		{NormalizeEmail, " John.Doe@Example.COM ", "john.doe@example.com"},
		{NormalizeEmail, "not-an-email", "not-an-email"},
		{NormalizeDate, "01.12.2024", "2024-12-01"},
		{NormalizeDate, "5/3/24", "2024-03-05"},
		{NormalizeDate, "2024-12-01", "2024-12-01"},
	}

	for _, tt := range tests {
		t.Run(string(tt.rule)+"/"+tt.input, func(t *testing.T) {
			if got := n.normalizeValue(tt.input, tt.rule); got != tt.want {
				t.Errorf("normalizeValue(%q, %s) = %q, want %q", tt.input, tt.rule, got, tt.want)
			}
		})
	}
}

func TestNewNormalizer_InvalidRule(t *testing.T) {
	_, err := NewNormalizer([]Rule{{Field: "Name", Strategy: "reverse"}})
	if err == nil {
		t.Error("expected error for unknown rule")
	}
}

func TestNormalizer_Apply(t *testing.T) {
	src := table.MustFromStrings("a", []string{"ID", "Name", "Email"}, [][]string{
		{" 42 ", "  ann   lee ", " A@B.COM "},
		{"7", "", "x@y.z"},
	})

	n, err := NewNormalizer([]Rule{
		{Field: AllFields, Strategy: NormalizeTrim},
		{Field: "Name", Strategy: NormalizeWhitespace},
		{Field: "Name", Strategy: NormalizeUpperCase},
		{Field: "Email", Strategy: NormalizeEmail},
	})
	if err != nil {
		t.Fatal(err)
	}

	got := n.Apply(src)

	id := got.Cell(0, 0)
	if id.Kind != table.KindNumber || id.Num != 42 {
		t.Errorf("trimmed id = %#v, want number 42", id)
	}
	if v := got.Cell(0, 1).Raw; v != "ANN LEE" {
		t.Errorf("name = %q", v)
	}
	if v := got.Cell(0, 2).Raw; v != "a@b.com" {
		t.Errorf("email = %q", v)
	}
	if !got.Cell(1, 1).IsEmpty() {
		t.Error("empty values must stay empty")
	}

	// source table is untouched
	if src.Cell(0, 0).Raw != " 42 " {
		t.Errorf("Apply mutated its input: %q", src.Cell(0, 0).Raw)
	}
}

func TestNormalizer_NilIsNoop(t *testing.T) {
	src := table.MustFromStrings("a", []string{"ID"}, [][]string{{"1"}})
	var n *Normalizer
	if n.Apply(src) != src {
		t.Error("nil normalizer must return its input")
	}
}
