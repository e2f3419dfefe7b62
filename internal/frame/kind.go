package frame

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the storage type of a column.
type Kind int

const (
	Int64 Kind = iota
	Int32
	Int16
	Int8
	Float64
	Float32
	Float16
	Object
	Category
)

// Family groups kinds whose values compare with the same rules.
type Family int

const (
	FamilyInteger Family = iota
	FamilyFloat
	FamilyText
	FamilyCategorical
)

// ErrUnknownKind is returned by ParseKind for names outside the enumeration.
var ErrUnknownKind = errors.New("unknown kind")

var kindNames = [...]string{
	Int64:    "int64",
	Int32:    "int32",
	Int16:    "int16",
	Int8:     "int8",
	Float64:  "float64",
	Float32:  "float32",
	Float16:  "float16",
	Object:   "object",
	Category: "category",
}

// Kinds lists every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{Int64, Int32, Int16, Int8, Float64, Float32, Float16, Object, Category}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k >= Int64 && k <= Category }

// Family returns the comparison family of the kind.
func (k Kind) Family() Family {
	switch k {
	case Int64, Int32, Int16, Int8:
		return FamilyInteger
	case Float64, Float32, Float16:
		return FamilyFloat
	case Category:
		return FamilyCategorical
	default:
		return FamilyText
	}
}

// Width is the per-element byte width for fixed width kinds, 0 otherwise.
func (k Kind) Width() int {
	switch k {
	case Int64, Float64:
		return 8
	case Int32, Float32:
		return 4
	case Int16, Float16:
		return 2
	case Int8:
		return 1
	}
	return 0
}

// ParseKind resolves a kind name. Matching is case-insensitive and accepts
// "str"/"string" as aliases of object.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "str", "string":
		return Object, nil
	case "categorical":
		return Category, nil
	}
	for i, s := range kindNames {
		if s == n {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
