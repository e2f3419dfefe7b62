package frame

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/float16"
)

// ErrConversion marks a cell that the target kind cannot represent at all,
// such as non-numeric text converted to a number.
var ErrConversion = errors.New("type conversion failed")

// ConversionError describes the first cell that failed to convert.
type ConversionError struct {
	Column string
	From   Kind
	To     Kind
	Row    int
	Value  string
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("convert column %q from %s to %s: row %d value %q", e.Column, e.From, e.To, e.Row, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is lets errors.Is match ErrConversion.
func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

func (e *ConversionError) Unwrap() error { return e.Err }

// AsType converts every cell of col to kind and returns the new column.
// Integer narrowing wraps like a two's-complement cast and float narrowing
// may lose precision or overflow to infinity; callers detect changed values
// by comparing cells.
func AsType(col *Column, kind Kind) (*Column, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	if col.kind == kind {
		return col, nil
	}
	if col.kind == Category {
		return AsType(decode(col), kind)
	}
	if kind == Category {
		return encode(col), nil
	}
	n := col.Len()
	out := &Column{name: col.name, kind: kind}
	switch kind.Family() {
	case FamilyInteger:
		vals := make([]int64, n)
		for i := 0; i < n; i++ {
			v, err := toInt(col.Value(i))
			if err != nil {
				return nil, col.convErr(kind, i, err)
			}
			vals[i] = v
		}
		switch kind {
		case Int64:
			out.i64 = vals
		case Int32:
			out.i32 = narrowInts[int32](vals)
		case Int16:
			out.i16 = narrowInts[int16](vals)
		case Int8:
			out.i8 = narrowInts[int8](vals)
		}
	case FamilyFloat:
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			v, err := toFloat(col.Value(i))
			if err != nil {
				return nil, col.convErr(kind, i, err)
			}
			vals[i] = v
		}
		switch kind {
		case Float64:
			out.f64 = vals
		case Float32:
			out.f32 = make([]float32, n)
			for i, v := range vals {
				out.f32[i] = float32(v)
			}
		case Float16:
			out.f16 = make([]float16.Num, n)
			for i, v := range vals {
				out.f16[i] = float16.New(float32(v))
			}
		}
	default:
		out.str = make([]string, n)
		for i := 0; i < n; i++ {
			out.str[i] = col.Value(i).String()
		}
	}
	return out, nil
}

func (c *Column) convErr(to Kind, row int, err error) error {
	return &ConversionError{Column: c.name, From: c.kind, To: to, Row: row, Value: c.Value(row).String(), Err: err}
}

func narrowInts[T int8 | int16 | int32](vals []int64) []T {
	out := make([]T, len(vals))
	for i, v := range vals {
		out[i] = T(v)
	}
	return out
}

func toInt(v Value) (int64, error) {
	switch v.Family {
	case FamilyInteger:
		return v.Int, nil
	case FamilyFloat:
		f := v.Float
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, errors.New("non-finite value")
		}
		f = math.Trunc(f)
		if f < -9.223372036854775808e18 || f >= 9.223372036854775808e18 {
			return 0, errors.New("value out of int64 range")
		}
		return int64(f), nil
	default:
		i, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return 0, err
		}
		return i, nil
	}
}

func toFloat(v Value) (float64, error) {
	switch v.Family {
	case FamilyInteger:
		return float64(v.Int), nil
	case FamilyFloat:
		return v.Float, nil
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, err
		}
		return f, nil
	}
}

// FromValues builds a column of kind from cells using the AsType rules. A
// categorical column takes the family of its first cell for the dictionary.
func FromValues(name string, kind Kind, vals []Value) (*Column, error) {
	var dense *Column
	base := kind
	if kind == Category {
		base = Object
		if len(vals) > 0 {
			switch vals[0].Family {
			case FamilyInteger:
				base = Int64
			case FamilyFloat:
				base = Float64
			}
		}
	}
	switch base.Family() {
	case FamilyInteger:
		ints := make([]int64, len(vals))
		for i, v := range vals {
			x, err := toInt(v)
			if err != nil {
				return nil, &ConversionError{Column: name, From: base, To: kind, Row: i, Value: v.String(), Err: err}
			}
			ints[i] = x
		}
		dense = NewInt64(name, ints)
	case FamilyFloat:
		floats := make([]float64, len(vals))
		for i, v := range vals {
			x, err := toFloat(v)
			if err != nil {
				return nil, &ConversionError{Column: name, From: base, To: kind, Row: i, Value: v.String(), Err: err}
			}
			floats[i] = x
		}
		dense = NewFloat64(name, floats)
	default:
		strs := make([]string, len(vals))
		for i, v := range vals {
			strs[i] = v.String()
		}
		dense = NewObject(name, strs)
	}
	return AsType(dense, kind)
}
