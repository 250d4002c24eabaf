package table

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind describes what a cell holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "empty"
	}
}

// numberPattern accepts plain decimal notation only: no hex floats, no
// underscores, no NaN/Inf spellings and no surrounding blanks.
var numberPattern = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// Value is a single cell: text, numeric or empty.
// Raw keeps the source spelling so a pass-through sheet shows what was read.
type Value struct {
	Kind Kind
	Raw  string
	Num  float64
}

// Empty returns the empty value.
func Empty() Value { return Value{} }

// Text returns a text value. The empty string yields the empty value.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: KindText, Raw: s}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Raw: strconv.FormatFloat(f, 'f', -1, 64), Num: f}
}

// Integer returns a numeric value that keeps the exact integer spelling,
// so keys beyond float64 precision stay distinct.
func Integer(i int64) Value {
	return Value{Kind: KindNumber, Raw: strconv.FormatInt(i, 10), Num: float64(i)}
}

// Infer classifies a raw cell the way a spreadsheet import does:
// "" is empty, decimal notation is a number, everything else is text.
func Infer(raw string) Value {
	if raw == "" {
		return Value{}
	}
	if numberPattern.MatchString(raw) {
		f, err := strconv.ParseFloat(raw, 64)
		if err == nil && !math.IsInf(f, 0) {
			return Value{Kind: KindNumber, Raw: raw, Num: f}
		}
	}
	return Value{Kind: KindText, Raw: raw}
}

// IsEmpty reports whether v holds nothing.
func (v Value) IsEmpty() bool { return v.Kind == KindEmpty }

// Key returns the canonical lookup form of v. Numbers are rendered in
// shortest form so that "1" and "1.0" address the same key.
func (v Value) Key() string {
	switch v.Kind {
	case KindNumber:
		if s, ok := v.wideInt(); ok {
			return s
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Raw
	default:
		return ""
	}
}

// wideInt returns the canonical integer spelling of a number that float64
// cannot hold exactly (|n| >= 2^53) when Raw is an integer literal.
func (v Value) wideInt() (string, bool) {
	if v.Kind != KindNumber || math.Abs(v.Num) < 1<<53 {
		return "", false
	}
	if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
		return strconv.FormatInt(n, 10), true
	}
	if n, err := strconv.ParseUint(strings.TrimPrefix(v.Raw, "+"), 10, 64); err == nil {
		return strconv.FormatUint(n, 10), true
	}
	return "", false
}

// Equal is exact value equality: same kind and same value, no coercion.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		a, aok := v.wideInt()
		b, bok := o.wideInt()
		if aok && bok {
			return a == b
		}
		return v.Num == o.Num
	case KindText:
		return v.Raw == o.Raw
	default:
		return true
	}
}

// Native returns the Go value a spreadsheet writer should store:
// nil, string, int64 or float64. Integers beyond 2^53 are stored as their
// digits so spreadsheet keys stay distinct.
func (v Value) Native() any {
	switch v.Kind {
	case KindText:
		return v.Raw
	case KindNumber:
		if s, ok := v.wideInt(); ok {
			return s
		}
		if v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < 1<<53 {
			return int64(v.Num)
		}
		return v.Num
	default:
		return nil
	}
}

func (v Value) String() string { return v.Raw }

// GoString makes test failures readable.
func (v Value) GoString() string {
	return fmt.Sprintf("%s(%q)", v.Kind, v.Raw)
}
