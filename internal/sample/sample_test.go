package sample

import (
	"testing"

	"github.com/KaramelBytes/dtypediet/internal/frame"
)

func TestDatasetShape(t *testing.T) {
	ds := Dataset(DefaultRows)
	want := []string{"a", "b", "c", "d", "e", "str_a", "str_b"}
	got := ds.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}
	if ds.Rows() != DefaultRows {
		t.Fatalf("rows = %d, want %d", ds.Rows(), DefaultRows)
	}
	strB, _ := ds.Column("str_b")
	if strB.Kind() != frame.Object || strB.Value(42).Str != "42" {
		t.Fatalf("str_b = %s %q", strB.Kind(), strB.Value(42).Str)
	}
	if e, _ := ds.Column("e"); e.Value(0).Float != 100101.0 {
		t.Fatalf("e[0] = %v", e.Value(0).Float)
	}
}

func TestDatasetEmpty(t *testing.T) {
	if ds := Dataset(-1); ds.Rows() != 0 || ds.NumColumns() != 7 {
		t.Fatalf("rows=%d cols=%d", ds.Rows(), ds.NumColumns())
	}
}
