package diet

import (
	"fmt"

	"github.com/KaramelBytes/dtypediet/internal/frame"
)

// EvaluationResult is the outcome of converting one column to one candidate kind.
type EvaluationResult struct {
	Kind      frame.Kind
	Different int
	Bytes     int64
	Column    string
}

// Tolerance configures approximate comparison: two numbers match when
// |a-b| <= Abs + Rel*|a|.
type Tolerance struct {
	Rel float64
	Abs float64
}

// DefaultTolerance is rtol=1e-5, atol=1e-8.
func DefaultTolerance() Tolerance { return Tolerance{Rel: 1e-5, Abs: 1e-8} }

// Evaluate converts col to kind and counts the cells whose value changed
// under exact comparison. The converted column is discarded. Conversion
// errors are returned as-is.
func Evaluate(col *frame.Column, kind frame.Kind) (EvaluationResult, error) {
	out, err := frame.AsType(col, kind)
	if err != nil {
		return EvaluationResult{}, err
	}
	diff := 0
	for i := 0; i < col.Len(); i++ {
		if !frame.Equal(col.Value(i), out.Value(i)) {
			diff++
		}
	}
	return EvaluationResult{Kind: kind, Different: diff, Bytes: out.MemoryUsage(), Column: col.Name()}, nil
}

// EvaluateApprox is Evaluate with tolerance-based comparison for numeric
// cells. Text cells still compare exactly.
func EvaluateApprox(col *frame.Column, kind frame.Kind, tol Tolerance) (EvaluationResult, error) {
	if tol.Rel < 0 || tol.Abs < 0 {
		return EvaluationResult{}, fmt.Errorf("negative tolerance: rel=%g abs=%g", tol.Rel, tol.Abs)
	}
	out, err := frame.AsType(col, kind)
	if err != nil {
		return EvaluationResult{}, err
	}
	diff := 0
	for i := 0; i < col.Len(); i++ {
		if !frame.Close(col.Value(i), out.Value(i), tol.Rel, tol.Abs) {
			diff++
		}
	}
	return EvaluationResult{Kind: kind, Different: diff, Bytes: out.MemoryUsage(), Column: col.Name()}, nil
}
