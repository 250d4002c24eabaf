package table

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldNotFound is matched by every *FieldNotFoundError.
	ErrFieldNotFound = errors.New("field not found")

	ErrDuplicateField = errors.New("duplicate field name")
	ErrRowWidth       = errors.New("row has more values than declared fields")
)

// FieldNotFoundError names the missing field and the table it was looked up in.
type FieldNotFoundError struct {
	Table string
	Field string
}

func (e *FieldNotFoundError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("field %q not found", e.Field)
	}
	return fmt.Sprintf("field %q not found in %q", e.Field, e.Table)
}

func (e *FieldNotFoundError) Is(target error) bool {
	return target == ErrFieldNotFound
}
