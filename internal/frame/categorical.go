package frame

import "math"

// categorical is a dictionary plus per-row codes. Codes use the narrowest
// signed width able to index the dictionary.
type categorical struct {
	dict  *Column
	codes codes
}

type codes struct {
	w8  []int8
	w16 []int16
	w32 []int32
}

func newCodes(idx []int, dictLen int) codes {
	switch {
	case dictLen <= math.MaxInt8:
		w := make([]int8, len(idx))
		for i, v := range idx {
			w[i] = int8(v)
		}
		return codes{w8: w}
	case dictLen <= math.MaxInt16:
		w := make([]int16, len(idx))
		for i, v := range idx {
			w[i] = int16(v)
		}
		return codes{w16: w}
	default:
		w := make([]int32, len(idx))
		for i, v := range idx {
			w[i] = int32(v)
		}
		return codes{w32: w}
	}
}

func (c codes) len() int {
	switch {
	case c.w8 != nil:
		return len(c.w8)
	case c.w16 != nil:
		return len(c.w16)
	}
	return len(c.w32)
}

func (c codes) width() int {
	switch {
	case c.w8 != nil:
		return 1
	case c.w16 != nil:
		return 2
	}
	return 4
}

func (c codes) at(i int) int {
	switch {
	case c.w8 != nil:
		return int(c.w8[i])
	case c.w16 != nil:
		return int(c.w16[i])
	}
	return int(c.w32[i])
}

// encode builds a categorical column from a dense one. Categories keep
// first-appearance order.
func encode(src *Column) *Column {
	n := src.Len()
	seen := make(map[key]int)
	idx := make([]int, n)
	var uniq []int
	for i := 0; i < n; i++ {
		k := keyOf(src.Value(i))
		code, ok := seen[k]
		if !ok {
			code = len(uniq)
			seen[k] = code
			uniq = append(uniq, i)
		}
		idx[i] = code
	}
	dict := src.take(uniq)
	return &Column{
		name: src.name,
		kind: Category,
		cat:  &categorical{dict: dict, codes: newCodes(idx, dict.Len())},
	}
}

// decode expands a categorical column into its dictionary kind.
func decode(c *Column) *Column {
	rows := make([]int, c.Len())
	for i := range rows {
		rows[i] = c.cat.codes.at(i)
	}
	return c.cat.dict.take(rows).Rename(c.name)
}

// take gathers the given rows of a dense column into a new column.
func (c *Column) take(rows []int) *Column {
	out := &Column{name: c.name, kind: c.kind}
	switch c.kind {
	case Int64:
		out.i64 = gather(c.i64, rows)
	case Int32:
		out.i32 = gather(c.i32, rows)
	case Int16:
		out.i16 = gather(c.i16, rows)
	case Int8:
		out.i8 = gather(c.i8, rows)
	case Float64:
		out.f64 = gather(c.f64, rows)
	case Float32:
		out.f32 = gather(c.f32, rows)
	case Float16:
		out.f16 = gather(c.f16, rows)
	case Object:
		out.str = gather(c.str, rows)
	case Category:
		return decode(c).take(rows)
	}
	return out
}

func gather[T any](src []T, rows []int) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = src[r]
	}
	return out
}

func (c codes) head(n int) codes {
	switch {
	case c.w8 != nil:
		return codes{w8: append([]int8(nil), c.w8[:n]...)}
	case c.w16 != nil:
		return codes{w16: append([]int16(nil), c.w16[:n]...)}
	}
	return codes{w32: append([]int32(nil), c.w32[:n]...)}
}

// Head returns the first n rows. Categorical columns keep their dictionary
// and code width.
func (c *Column) Head(n int) *Column {
	if n < 0 {
		n = 0
	}
	if n >= c.Len() {
		return c
	}
	if c.kind == Category {
		return &Column{name: c.name, kind: Category, cat: &categorical{dict: c.cat.dict, codes: c.cat.codes.head(n)}}
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return c.take(rows)
}
