package diet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownUnit is returned by ParseUnit for unsupported display units.
var ErrUnknownUnit = errors.New("unknown unit")

// Unit is a display unit for byte counts.
type Unit string

const (
	Byte Unit = "byte"
	KB   Unit = "KB"
	MB   Unit = "MB"
	GB   Unit = "GB"
)

// Divisor returns the number of bytes in one unit.
func (u Unit) Divisor() float64 {
	switch u {
	case KB:
		return 1 << 10
	case MB:
		return 1 << 20
	case GB:
		return 1 << 30
	}
	return 1
}

// Scale converts a byte count to the unit.
func (u Unit) Scale(n int64) float64 { return float64(n) / u.Divisor() }

// ParseUnit accepts byte|B|bytes|KB|MB|GB in any case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "byte", "bytes", "b":
		return Byte, nil
	case "kb":
		return KB, nil
	case "mb", "":
		return MB, nil
	case "gb":
		return GB, nil
	}
	return "", fmt.Errorf("%w: %q (use byte|KB|MB|GB)", ErrUnknownUnit, s)
}
