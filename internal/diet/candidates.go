// Package diet proposes narrower storage kinds for dataset columns.
//
// The search is exact: a candidate kind is accepted only when converting a
// column to it leaves every value unchanged. Candidates are tried from the
// narrowest to the widest, so the first admissible one saves the most memory.
package diet

import "github.com/KaramelBytes/dtypediet/internal/frame"

// candidates maps a source kind to narrower kinds, wide to narrow.
var candidates = map[frame.Kind][]frame.Kind{
	frame.Int64:   {frame.Int32, frame.Int16, frame.Int8},
	frame.Float64: {frame.Float32, frame.Float16},
	frame.Object:  {frame.Category},
}

// Candidates returns the narrower kinds to try for kind, ordered wide to
// narrow, or nil when none are defined.
func Candidates(kind frame.Kind) []frame.Kind {
	c, ok := candidates[kind]
	if !ok {
		return nil
	}
	return append([]frame.Kind(nil), c...)
}

// SourceKinds lists the kinds that have candidates, in declaration order.
func SourceKinds() []frame.Kind {
	var out []frame.Kind
	for _, k := range frame.Kinds() {
		if _, ok := candidates[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
