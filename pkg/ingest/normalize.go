package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ruslano69/gridcompare/pkg/core/table"
)

// NormalizeRule определяет правило нормализации
type NormalizeRule string

const (
	// NormalizeTrim убирает пробелы по краям
	NormalizeTrim NormalizeRule = "trim"
	// NormalizeWhitespace убирает лишние пробелы
	NormalizeWhitespace NormalizeRule = "whitespace"
	// NormalizeUpperCase приводит к верхнему регистру
	NormalizeUpperCase NormalizeRule = "uppercase"
	// NormalizeLowerCase приводит к нижнему регистру
	NormalizeLowerCase NormalizeRule = "lowercase"
	// NormalizeNFC приводит Unicode к канонической композиции (NFC)
	NormalizeNFC NormalizeRule = "nfc"
	// NormalizePhone приводит телефон к формату 79991234567
	NormalizePhone NormalizeRule = "phone"
	// NormalizeEmail приводит email к нижнему регистру
	NormalizeEmail NormalizeRule = "email"
	// NormalizeDate приводит дату к формату YYYY-MM-DD
	NormalizeDate NormalizeRule = "date"
)

// AllFields - поле-маска: правило применяется ко всем полям
const AllFields = "*"

// Rule связывает поле с правилом нормализации
type Rule struct {
	Field    string        `yaml:"field"`
	Strategy NormalizeRule `yaml:"strategy"`
}

// Normalizer нормализует значения перед сравнением.
// Применяется одинаково к обеим таблицам, чтобы различия в пробелах,
// регистре или форме Unicode не давали "Error" в Compare.
type Normalizer struct {
	rules map[string][]NormalizeRule // field_name -> rules

	// Предкомпилированные регулярные выражения
	phoneRegex      *regexp.Regexp
	whitespaceRegex *regexp.Regexp
	dateRegex       *regexp.Regexp
}

// NewNormalizer создает нормализатор; неизвестное правило - ошибка
func NewNormalizer(rules []Rule) (*Normalizer, error) {
	n := &Normalizer{
		rules:           make(map[string][]NormalizeRule),
		phoneRegex:      regexp.MustCompile(`[^\d+]`), // Все кроме цифр и +
		whitespaceRegex: regexp.MustCompile(`\s+`),    // Множественные пробелы
		dateRegex:       regexp.MustCompile(`^(\d{1,2})[./\-](\d{1,2})[./\-](\d{2,4})$`), // DD.MM.YYYY или DD/MM/YYYY
	}

	for _, r := range rules {
		switch r.Strategy {
		case NormalizeTrim, NormalizeWhitespace, NormalizeUpperCase, NormalizeLowerCase,
			NormalizeNFC, NormalizePhone, NormalizeEmail, NormalizeDate:
		default:
			return nil, fmt.Errorf("invalid normalize rule '%s' for field '%s'", r.Strategy, r.Field)
		}
		field := r.Field
		if field == "" {
			field = AllFields
		}
		n.rules[field] = append(n.rules[field], r.Strategy)
	}

	return n, nil
}

// Len возвращает число полей с правилами
func (n *Normalizer) Len() int { return len(n.rules) }

// Apply возвращает нормализованную копию таблицы.
// После нормализации тип ячейки выводится заново: " 42 " становится числом 42.
func (n *Normalizer) Apply(t *table.Table) *table.Table {
	if n == nil || len(n.rules) == 0 {
		return t
	}
	return t.Map(func(field string, v table.Value) table.Value {
		if v.IsEmpty() {
			return v
		}
		rules := n.rulesFor(field)
		if len(rules) == 0 {
			return v
		}
		raw := v.Raw
		for _, rule := range rules {
			raw = n.normalizeValue(raw, rule)
		}
		if raw == v.Raw {
			return v
		}
		return table.Infer(raw)
	})
}

func (n *Normalizer) rulesFor(field string) []NormalizeRule {
	all := n.rules[AllFields]
	own := n.rules[field]
	if len(all) == 0 {
		return own
	}
	return append(append([]NormalizeRule(nil), all...), own...)
}

// normalizeValue применяет правило; при ошибке значение остается как есть
func (n *Normalizer) normalizeValue(value string, rule NormalizeRule) string {
	switch rule {
	case NormalizeTrim:
		return strings.TrimSpace(value)
	case NormalizeWhitespace:
		return n.whitespaceRegex.ReplaceAllString(strings.TrimSpace(value), " ")
	case NormalizeUpperCase:
		return strings.ToUpper(value)
	case NormalizeLowerCase:
		return strings.ToLower(value)
	case NormalizeNFC:
		return norm.NFC.String(value)
	case NormalizePhone:
		return n.normalizePhone(value)
	case NormalizeEmail:
		return n.normalizeEmail(value)
	case NormalizeDate:
		return n.normalizeDate(value)
	}
	return value
}

// normalizePhone приводит телефон к формату 79991234567
// Примеры:
//   - "+7 (999) 123-45-67" → "79991234567"
//   - "8(999)123-45-67" → "79991234567"
func (n *Normalizer) normalizePhone(value string) string {
	cleaned := n.phoneRegex.ReplaceAllString(value, "")

	if strings.HasPrefix(cleaned, "+7") {
		cleaned = "7" + cleaned[2:]
	}
	if strings.HasPrefix(cleaned, "8") && len(cleaned) == 11 {
		cleaned = "7" + cleaned[1:]
	}

	// Если это не российский номер, возвращаем как есть
	if len(cleaned) != 11 || !strings.HasPrefix(cleaned, "7") {
		return value
	}
	return cleaned
}

// normalizeEmail: " John.Doe@Example.COM " → "john.doe@example.com"
func (n *Normalizer) normalizeEmail(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if !strings.Contains(normalized, "@") || !strings.Contains(normalized, ".") {
		return value
	}
	return normalized
}

// normalizeDate приводит дату к формату YYYY-MM-DD
// Примеры:
//   - "01.12.2024" → "2024-12-01"
//   - "15/03/24" → "2024-03-15"
func (n *Normalizer) normalizeDate(value string) string {
	matches := n.dateRegex.FindStringSubmatch(strings.TrimSpace(value))
	if len(matches) != 4 {
		return value
	}

	day, month, year := matches[1], matches[2], matches[3]
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}
	if len(year) == 2 {
		year = "20" + year
	}
	if len(year) != 4 {
		return value
	}

	return fmt.Sprintf("%s-%s-%s", year, month, day)
}
