// Package sample builds the demonstration dataset used by the demo command.
package sample

import (
	"strconv"

	"github.com/KaramelBytes/dtypediet/internal/frame"
)

// DefaultRows is the row count of the demo dataset.
const DefaultRows = 100

// Dataset returns seven columns of the given length:
//
//	a=0, b=256, c=65536 (int64), d=1100.0, e=100101.0 (float64),
//	str_a="hello", str_b=row number as text (object).
func Dataset(rows int) *frame.Dataset {
	if rows < 0 {
		rows = 0
	}
	ints := func(v int64) []int64 {
		out := make([]int64, rows)
		for i := range out {
			out[i] = v
		}
		return out
	}
	floats := func(v float64) []float64 {
		out := make([]float64, rows)
		for i := range out {
			out[i] = v
		}
		return out
	}
	same := make([]string, rows)
	distinct := make([]string, rows)
	for i := 0; i < rows; i++ {
		same[i] = "hello"
		distinct[i] = strconv.Itoa(i)
	}
	ds, err := frame.NewDataset(
		frame.NewInt64("a", ints(0)),
		frame.NewInt64("b", ints(256)),
		frame.NewInt64("c", ints(65_536)),
		frame.NewFloat64("d", floats(1_100.0)),
		frame.NewFloat64("e", floats(100_101.0)),
		frame.NewObject("str_a", same),
		frame.NewObject("str_b", distinct),
	)
	if err != nil {
		// names are distinct and lengths equal
		panic(err)
	}
	return ds
}
