package frame

import (
	"github.com/apache/arrow-go/v18/arrow/float16"
)

// stringHeaderSize is the size of a Go string header on 64-bit platforms.
const stringHeaderSize = 16

// Column is a named, immutable sequence of values of a single Kind.
// Constructors copy their input.
type Column struct {
	name string
	kind Kind

	i64 []int64
	i32 []int32
	i16 []int16
	i8  []int8
	f64 []float64
	f32 []float32
	f16 []float16.Num
	str []string
	cat *categorical
}

func NewInt64(name string, vals []int64) *Column {
	return &Column{name: name, kind: Int64, i64: append([]int64(nil), vals...)}
}

func NewInt32(name string, vals []int32) *Column {
	return &Column{name: name, kind: Int32, i32: append([]int32(nil), vals...)}
}

func NewInt16(name string, vals []int16) *Column {
	return &Column{name: name, kind: Int16, i16: append([]int16(nil), vals...)}
}

func NewInt8(name string, vals []int8) *Column {
	return &Column{name: name, kind: Int8, i8: append([]int8(nil), vals...)}
}

func NewFloat64(name string, vals []float64) *Column {
	return &Column{name: name, kind: Float64, f64: append([]float64(nil), vals...)}
}

func NewFloat32(name string, vals []float32) *Column {
	return &Column{name: name, kind: Float32, f32: append([]float32(nil), vals...)}
}

func NewFloat16(name string, vals []float16.Num) *Column {
	return &Column{name: name, kind: Float16, f16: append([]float16.Num(nil), vals...)}
}

// NewObject builds a generic text column.
func NewObject(name string, vals []string) *Column {
	return &Column{name: name, kind: Object, str: append([]string(nil), vals...)}
}

// NewCategory dictionary-encodes vals into a categorical column.
func NewCategory(name string, vals []string) *Column {
	c, _ := AsType(NewObject(name, vals), Category)
	return c
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }

// Len returns the number of rows.
func (c *Column) Len() int {
	switch c.kind {
	case Int64:
		return len(c.i64)
	case Int32:
		return len(c.i32)
	case Int16:
		return len(c.i16)
	case Int8:
		return len(c.i8)
	case Float64:
		return len(c.f64)
	case Float32:
		return len(c.f32)
	case Float16:
		return len(c.f16)
	case Object:
		return len(c.str)
	case Category:
		return c.cat.codes.len()
	}
	return 0
}

// Value returns the cell at row i. Categorical cells are decoded.
func (c *Column) Value(i int) Value {
	switch c.kind {
	case Int64:
		return IntValue(c.i64[i])
	case Int32:
		return IntValue(int64(c.i32[i]))
	case Int16:
		return IntValue(int64(c.i16[i]))
	case Int8:
		return IntValue(int64(c.i8[i]))
	case Float64:
		return FloatValue(c.f64[i])
	case Float32:
		return FloatValue(float64(c.f32[i]))
	case Float16:
		return FloatValue(float64(c.f16[i].Float32()))
	case Object:
		return StringValue(c.str[i])
	case Category:
		return c.cat.dict.Value(c.cat.codes.at(i))
	}
	return Value{}
}

// Rename returns a copy of the column under a new name. Storage is shared.
func (c *Column) Rename(name string) *Column {
	cp := *c
	cp.name = name
	return &cp
}

// Dictionary returns the categories of a categorical column, nil otherwise.
func (c *Column) Dictionary() *Column {
	if c.kind != Category {
		return nil
	}
	return c.cat.dict
}

// Code returns the dictionary index of row i of a categorical column.
func (c *Column) Code(i int) int { return c.cat.codes.at(i) }

// CodeWidth returns the byte width of the codes of a categorical column.
func (c *Column) CodeWidth() int {
	if c.kind != Category {
		return 0
	}
	return c.cat.codes.width()
}

// MemoryUsage returns the deep footprint of the column in bytes, including
// string payloads and categorical dictionaries.
func (c *Column) MemoryUsage() int64 {
	switch c.kind {
	case Object:
		var n int64
		for _, s := range c.str {
			n += stringHeaderSize + int64(len(s))
		}
		return n
	case Category:
		return int64(c.cat.codes.len()*c.cat.codes.width()) + c.cat.dict.MemoryUsage()
	}
	return int64(c.Len() * c.kind.Width())
}

// EqualColumns reports whether a and b have the same name, kind and cells.
func EqualColumns(a, b *Column) bool {
	if a.name != b.name || a.kind != b.kind || a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !Equal(a.Value(i), b.Value(i)) {
			return false
		}
	}
	return true
}
