package diff

import (
	"github.com/ruslano69/gridcompare/pkg/core/table"
)

// KeyIndex - индекс строк таблицы по значению ключевого поля.
//
// Повторяющийся ключ не является ошибкой: в индексе остаётся последняя
// строка с этим ключом (last-write-wins). Пустая строка - обычный ключ.
type KeyIndex struct {
	tbl    *table.Table
	field  string
	column int
	rows   map[string]int // canonical key -> номер строки
}

// BuildKeyIndex строит индекс таблицы по полю keyField.
// Возвращает table.ErrFieldNotFound, если поле не объявлено в таблице.
func BuildKeyIndex(t *table.Table, keyField string) (*KeyIndex, error) {
	col, err := t.FieldIndex(keyField)
	if err != nil {
		return nil, err
	}

	ix := &KeyIndex{
		tbl:    t,
		field:  keyField,
		column: col,
		rows:   make(map[string]int, t.Len()),
	}
	for i := 0; i < t.Len(); i++ {
		ix.rows[t.Cell(i, col).Key()] = i
	}
	return ix, nil
}

// Field возвращает имя ключевого поля
func (ix *KeyIndex) Field() string { return ix.field }

// Column возвращает позицию ключевого поля в таблице (0-based)
func (ix *KeyIndex) Column() int { return ix.column }

// Len - количество различных ключей
func (ix *KeyIndex) Len() int { return len(ix.rows) }

// RowIndex возвращает номер строки, закреплённой за ключом
func (ix *KeyIndex) RowIndex(key table.Value) (int, bool) {
	i, ok := ix.rows[key.Key()]
	return i, ok
}

// Lookup возвращает копию строки для ключа
func (ix *KeyIndex) Lookup(key table.Value) ([]table.Value, bool) {
	i, ok := ix.rows[key.Key()]
	if !ok {
		return nil, false
	}
	return ix.tbl.Row(i), true
}

// Value возвращает значение поля для ключа.
// Второй результат false, если ключ отсутствует.
func (ix *KeyIndex) Value(key table.Value, field string) (table.Value, bool, error) {
	col, err := ix.tbl.FieldIndex(field)
	if err != nil {
		return table.Value{}, false, err
	}
	i, ok := ix.rows[key.Key()]
	if !ok {
		return table.Value{}, false, nil
	}
	return ix.tbl.Cell(i, col), true, nil
}
