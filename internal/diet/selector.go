package diet

import (
	"go.uber.org/zap"

	"github.com/KaramelBytes/dtypediet/internal/frame"
	"github.com/KaramelBytes/dtypediet/internal/logger"
)

// Options controls the candidate search and report.
type Options struct {
	// Unit scales the displayed byte counts.
	Unit Unit
	// Approx enables tolerance-based comparison. Off by default; exact
	// comparison is the only mode that guarantees no value changes.
	Approx    bool
	Tolerance Tolerance
	// Source names the dataset in the report header.
	Source string
	Logger *zap.Logger
}

// DefaultOptions returns exact comparison with MB display.
func DefaultOptions() Options {
	return Options{Unit: MB, Tolerance: DefaultTolerance()}
}

// Selector finds the narrowest value-preserving kind for a column.
type Selector struct {
	opt Options
	log *zap.Logger
}

func NewSelector(opt Options) *Selector {
	l := opt.Logger
	if l == nil {
		l = logger.Nop()
	}
	return &Selector{opt: opt, log: l}
}

// BestFit walks the candidates of col's kind from narrowest to widest and
// returns the first with zero changed values, or nil if there is none.
func (s *Selector) BestFit(col *frame.Column) (*EvaluationResult, error) {
	cands := Candidates(col.Kind())
	for i := len(cands) - 1; i >= 0; i-- {
		res, err := s.evaluate(col, cands[i])
		if err != nil {
			return nil, err
		}
		s.log.Debug("evaluated candidate",
			zap.String("column", col.Name()),
			zap.Stringer("candidate", cands[i]),
			zap.Int("different", res.Different),
			zap.Int64("bytes", res.Bytes))
		if res.Different == 0 {
			return &res, nil
		}
	}
	return nil, nil
}

func (s *Selector) evaluate(col *frame.Column, kind frame.Kind) (EvaluationResult, error) {
	if s.opt.Approx {
		return EvaluateApprox(col, kind, s.opt.Tolerance)
	}
	return Evaluate(col, kind)
}

// BestFit runs an exact search with default options.
func BestFit(col *frame.Column) (*EvaluationResult, error) {
	return NewSelector(DefaultOptions()).BestFit(col)
}
