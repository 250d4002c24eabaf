package diff

import (
	"fmt"
	"strings"

	"github.com/ruslano69/gridcompare/pkg/core/table"
)

// Outcome - ожидаемый результат ячейки Compare
type Outcome uint8

const (
	OutcomeOK       Outcome = iota // значения совпадают
	OutcomeMismatch                // значения различаются
	OutcomeNotFound                // ключ отсутствует в одной из таблиц
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeMismatch:
		return "mismatch"
	default:
		return "not found"
	}
}

// Mismatch описывает одно расхождение значения поля
type Mismatch struct {
	Row      int // строка сетки (0-based, порядок ключей исходной таблицы)
	Key      table.Value
	Field    string
	Original table.Value
	Export   table.Value
}

// Preview - результат вычисления сетки сравнения в памяти.
//
// Повторяет семантику формул листа Compare: поиск по последней строке
// с ключом, "Error" при отсутствии ключа или различии значений. Служит для
// отчёта в консоли и тестов; на сами формулы не влияет.
type Preview struct {
	Fields   []string
	Keys     []table.Value
	Outcomes [][]Outcome // [строка][поле]

	ErrorCounts     []int         // по полям; совпадает со счётчиком в строке 1
	MissingInExport []table.Value // ключи исходной таблицы, которых нет в export
	Mismatches      []Mismatch
}

// Evaluate вычисляет ожидаемые значения ячеек Compare для полей fields.
// Строки сетки - значения ключа исходной таблицы в исходном порядке.
func Evaluate(original, export *table.Table, fields []string, keyField string) (*Preview, error) {
	if original == nil || export == nil {
		return nil, fmt.Errorf("tables cannot be nil")
	}

	origIdx, err := BuildKeyIndex(original, keyField)
	if err != nil {
		return nil, err
	}
	expIdx, err := BuildKeyIndex(export, keyField)
	if err != nil {
		return nil, err
	}

	// Индексы колонок полей в обеих таблицах
	origCols := make([]int, len(fields))
	expCols := make([]int, len(fields))
	for i, f := range fields {
		if origCols[i], err = original.FieldIndex(f); err != nil {
			return nil, err
		}
		if expCols[i], err = export.FieldIndex(f); err != nil {
			return nil, err
		}
	}

	keys, err := original.Column(keyField)
	if err != nil {
		return nil, err
	}

	p := &Preview{
		Fields:      append([]string(nil), fields...),
		Keys:        keys,
		Outcomes:    make([][]Outcome, len(keys)),
		ErrorCounts: make([]int, len(fields)),
	}

	for r, key := range keys {
		row := make([]Outcome, len(fields))
		oi, inOrig := origIdx.RowIndex(key)
		ei, inExp := expIdx.RowIndex(key)
		if !inExp {
			p.MissingInExport = append(p.MissingInExport, key)
		}

		for f := range fields {
			if !inOrig || !inExp {
				row[f] = OutcomeNotFound
				p.ErrorCounts[f]++
				continue
			}
			ov := original.Cell(oi, origCols[f])
			ev := export.Cell(ei, expCols[f])
			if ov.Equal(ev) {
				row[f] = OutcomeOK
				continue
			}
			row[f] = OutcomeMismatch
			p.ErrorCounts[f]++
			p.Mismatches = append(p.Mismatches, Mismatch{
				Row:      r,
				Key:      key,
				Field:    fields[f],
				Original: ov,
				Export:   ev,
			})
		}
		p.Outcomes[r] = row
	}

	return p, nil
}

// TotalErrors - сумма всех счётчиков "Error"
func (p *Preview) TotalErrors() int {
	n := 0
	for _, c := range p.ErrorCounts {
		n += c
	}
	return n
}

// IsEqual проверяет, что все ячейки Compare будут "OK"
func (p *Preview) IsEqual() bool {
	return p.TotalErrors() == 0
}

// FormatText форматирует результат в текстовый вид
func (p *Preview) FormatText() string {
	var sb strings.Builder

	sb.WriteString("=== Compare Statistics ===\n")
	sb.WriteString(fmt.Sprintf("Keys:            %d\n", len(p.Keys)))
	sb.WriteString(fmt.Sprintf("Fields:          %d\n", len(p.Fields)))
	sb.WriteString(fmt.Sprintf("Missing export:  %d\n", len(p.MissingInExport)))
	sb.WriteString(fmt.Sprintf("Mismatches:      %d\n\n", len(p.Mismatches)))

	if len(p.Fields) > 0 {
		sb.WriteString("=== Errors per field ===\n")
		for i, f := range p.Fields {
			sb.WriteString(fmt.Sprintf("  %-20s %d\n", f, p.ErrorCounts[i]))
		}
		sb.WriteString("\n")
	}

	if len(p.MissingInExport) > 0 {
		sb.WriteString(fmt.Sprintf("=== Missing in export (%d) ===\n", len(p.MissingInExport)))
		for _, k := range p.MissingInExport {
			sb.WriteString(fmt.Sprintf("- %s\n", k.Raw))
		}
		sb.WriteString("\n")
	}

	if len(p.Mismatches) > 0 {
		sb.WriteString(fmt.Sprintf("=== Mismatches (%d) ===\n", len(p.Mismatches)))
		for _, m := range p.Mismatches {
			sb.WriteString(fmt.Sprintf("~ Key: %s  %s: '%s' → '%s'\n",
				m.Key.Raw, m.Field, m.Original.Raw, m.Export.Raw))
		}
	}

	return sb.String()
}
