package frame

import (
	"math"
	"strconv"
)

// Value is a single cell. Only the field matching Family is meaningful;
// categorical cells are reported in the family of their dictionary.
type Value struct {
	Family Family
	Int    int64
	Float  float64
	Str    string
}

func IntValue(v int64) Value     { return Value{Family: FamilyInteger, Int: v} }
func FloatValue(v float64) Value { return Value{Family: FamilyFloat, Float: v} }
func StringValue(v string) Value { return Value{Family: FamilyText, Str: v} }

func (v Value) String() string {
	switch v.Family {
	case FamilyInteger:
		return strconv.FormatInt(v.Int, 10)
	case FamilyFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.Str
	}
}

// Equal reports exact equality of two cells. NaN equals NaN. An integer and a
// float are equal only when the float is integral and has the same value.
// Text never equals a number.
func Equal(a, b Value) bool {
	switch {
	case a.Family == FamilyInteger && b.Family == FamilyInteger:
		return a.Int == b.Int
	case a.Family == FamilyFloat && b.Family == FamilyFloat:
		return floatEqual(a.Float, b.Float)
	case a.Family == FamilyInteger && b.Family == FamilyFloat:
		return intFloatEqual(a.Int, b.Float)
	case a.Family == FamilyFloat && b.Family == FamilyInteger:
		return intFloatEqual(b.Int, a.Float)
	case a.Family == FamilyText && b.Family == FamilyText:
		return a.Str == b.Str
	}
	return false
}

// Close reports whether two cells are equal within tolerance:
// |a-b| <= abs + rel*|a|. Text cells fall back to Equal.
func Close(a, b Value, rel, abs float64) bool {
	x, okA := a.number()
	y, okB := b.number()
	if !okA || !okB {
		return Equal(a, b)
	}
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.IsNaN(x) && math.IsNaN(y)
	}
	if math.IsInf(x, 0) || math.IsInf(y, 0) {
		return x == y
	}
	return math.Abs(x-y) <= abs+rel*math.Abs(x)
}

func (v Value) number() (float64, bool) {
	switch v.Family {
	case FamilyInteger:
		return float64(v.Int), true
	case FamilyFloat:
		return v.Float, true
	}
	return 0, false
}

func floatEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
}

func intFloatEqual(i int64, f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	if f < -9.223372036854775808e18 || f >= 9.223372036854775808e18 {
		return false
	}
	return int64(f) == i
}

// key is a hashable form of a Value; NaN collapses to a single entry.
type key struct {
	family Family
	i      int64
	f      float64
	nan    bool
	s      string
}

func keyOf(v Value) key {
	k := key{family: v.Family}
	switch v.Family {
	case FamilyInteger:
		k.i = v.Int
	case FamilyFloat:
		if math.IsNaN(v.Float) {
			k.nan = true
		} else {
			k.f = v.Float
		}
	default:
		k.s = v.Str
	}
	return k
}
