package diff

import (
	"github.com/ruslano69/gridcompare/pkg/core/table"
)

// CommonFields возвращает поля, объявленные в обеих таблицах, в порядке
// исходной (original) таблицы. Сравнение имён точное: регистр учитывается,
// пробелы не обрезаются.
//
// Ключевое поле не исключается. Пустой результат не является ошибкой на
// этом уровне - решение принимает вызывающая сторона.
func CommonFields(original, export *table.Table) []string {
	fields := make([]string, 0, original.Width())
	seen := make(map[string]struct{}, original.Width())
	for _, f := range original.Fields() {
		if _, dup := seen[f]; dup {
			continue
		}
		if export.HasField(f) {
			seen[f] = struct{}{}
			fields = append(fields, f)
		}
	}
	return fields
}

// Without возвращает копию fields без указанного поля
func Without(fields []string, field string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != field {
			out = append(out, f)
		}
	}
	return out
}
