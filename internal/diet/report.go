package diet

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/dtypediet/internal/frame"
)

// Row is the proposal for one column. ProposedKind, ProposedBytes and
// ImprovementBytes are either all set or all nil.
type Row struct {
	Column           string      `json:"column" yaml:"column"`
	CurrentKind      frame.Kind  `json:"current_kind" yaml:"current_kind"`
	ProposedKind     *frame.Kind `json:"proposed_kind" yaml:"proposed_kind"`
	CurrentBytes     int64       `json:"current_bytes" yaml:"current_bytes"`
	ProposedBytes    *int64      `json:"proposed_bytes" yaml:"proposed_bytes"`
	ImprovementBytes *int64      `json:"improvement_bytes" yaml:"improvement_bytes"`
}

// HasProposal reports whether a narrower kind was found.
func (r Row) HasProposal() bool { return r.ProposedKind != nil }

// Current returns the current footprint in unit.
func (r Row) Current(u Unit) float64 { return u.Scale(r.CurrentBytes) }

// Proposed returns the proposed footprint in unit.
func (r Row) Proposed(u Unit) (float64, bool) {
	if r.ProposedBytes == nil {
		return 0, false
	}
	return u.Scale(*r.ProposedBytes), true
}

// Improvement returns the saved memory in unit.
func (r Row) Improvement(u Unit) (float64, bool) {
	if r.ImprovementBytes == nil {
		return 0, false
	}
	return u.Scale(*r.ImprovementBytes), true
}

// ImprovementPct returns improvement / current * 100.
func (r Row) ImprovementPct() (float64, bool) {
	if r.ImprovementBytes == nil || r.CurrentBytes == 0 {
		return 0, false
	}
	return float64(*r.ImprovementBytes) / float64(r.CurrentBytes) * 100, true
}

// Report is an ordered list of per-column proposals plus run metadata.
type Report struct {
	ID          string    `json:"id" yaml:"id"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Rows        int       `json:"rows" yaml:"rows"`
	Unit        Unit      `json:"unit" yaml:"unit"`
	Approximate bool      `json:"approximate" yaml:"approximate"`
	Columns     []Row     `json:"columns" yaml:"columns"`
}

// Totals sums footprints across columns. Columns without a proposal count
// their current size as proposed.
type Totals struct {
	CurrentBytes  int64
	ProposedBytes int64
	SavedBytes    int64
}

func (t Totals) SavedPct() float64 {
	if t.CurrentBytes == 0 {
		return 0
	}
	return float64(t.SavedBytes) / float64(t.CurrentBytes) * 100
}

func (r *Report) Totals() Totals {
	var t Totals
	for _, row := range r.Columns {
		t.CurrentBytes += row.CurrentBytes
		if row.ProposedBytes != nil {
			t.ProposedBytes += *row.ProposedBytes
		} else {
			t.ProposedBytes += row.CurrentBytes
		}
	}
	t.SavedBytes = t.CurrentBytes - t.ProposedBytes
	return t
}

// Row returns the proposal for the named column.
func (r *Report) Row(name string) (Row, bool) {
	for _, row := range r.Columns {
		if row.Column == name {
			return row, true
		}
	}
	return Row{}, false
}

// Proposals returns the rows that carry a proposed kind.
func (r *Report) Proposals() []Row {
	var out []Row
	for _, row := range r.Columns {
		if row.HasProposal() {
			out = append(out, row)
		}
	}
	return out
}

// BuildReport runs the best-fit search on every column of ds in order. A
// value-preserving candidate that is not strictly smaller is reported as no
// proposal. The first conversion error aborts the report.
func BuildReport(ds *frame.Dataset, opt Options) (*Report, error) {
	if opt.Unit == "" {
		opt.Unit = MB
	}
	sel := NewSelector(opt)
	rep := &Report{
		ID:          uuid.NewString(),
		Source:      opt.Source,
		GeneratedAt: time.Now().UTC(),
		Rows:        ds.Rows(),
		Unit:        opt.Unit,
		Approximate: opt.Approx,
		Columns:     make([]Row, 0, ds.NumColumns()),
	}
	for _, col := range ds.Columns() {
		row, err := buildRow(sel, col)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name(), err)
		}
		rep.Columns = append(rep.Columns, row)
	}
	t := rep.Totals()
	sel.log.Info("report built",
		zap.String("source", rep.Source),
		zap.Int("columns", len(rep.Columns)),
		zap.Int("proposals", len(rep.Proposals())),
		zap.Int64("current_bytes", t.CurrentBytes),
		zap.Int64("saved_bytes", t.SavedBytes))
	return rep, nil
}

func buildRow(sel *Selector, col *frame.Column) (Row, error) {
	row := Row{Column: col.Name(), CurrentKind: col.Kind(), CurrentBytes: col.MemoryUsage()}
	res, err := sel.BestFit(col)
	if err != nil {
		return Row{}, err
	}
	if res == nil {
		return row, nil
	}
	improvement := row.CurrentBytes - res.Bytes
	if improvement <= 0 {
		return row, nil
	}
	kind, bytes := res.Kind, res.Bytes
	row.ProposedKind = &kind
	row.ProposedBytes = &bytes
	row.ImprovementBytes = &improvement
	return row, nil
}

// Optimize returns a copy of ds where every column with a proposed kind in
// rep is converted to it. ds is not modified.
func Optimize(ds *frame.Dataset, rep *Report) (*frame.Dataset, error) {
	out := ds.Clone()
	for _, row := range rep.Columns {
		col, ok := ds.Column(row.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %q", frame.ErrColumnNotFound, row.Column)
		}
		if row.ProposedKind == nil {
			continue
		}
		conv, err := frame.AsType(col, *row.ProposedKind)
		if err != nil {
			return nil, err
		}
		if err := out.Replace(conv); err != nil {
			return nil, err
		}
	}
	return out, nil
}
