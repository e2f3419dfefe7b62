package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateColumn is returned when a column name is already present.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrLengthMismatch is returned when a column's length differs from the dataset's row count.
	ErrLengthMismatch = errors.New("column length mismatch")
	// ErrColumnNotFound is returned for lookups of absent columns.
	ErrColumnNotFound = errors.New("column not found")
)

// Dataset is an ordered set of uniquely named columns sharing a row count.
type Dataset struct {
	cols  []*Column
	index map[string]int
}

// NewDataset validates and assembles columns in the given order.
func NewDataset(cols ...*Column) (*Dataset, error) {
	ds := &Dataset{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if err := ds.Add(c); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Add appends a column.
func (d *Dataset) Add(c *Column) error {
	if _, ok := d.index[c.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name())
	}
	if len(d.cols) > 0 && c.Len() != d.Rows() {
		return fmt.Errorf("%w: %q has %d rows, dataset has %d", ErrLengthMismatch, c.Name(), c.Len(), d.Rows())
	}
	d.index[c.Name()] = len(d.cols)
	d.cols = append(d.cols, c)
	return nil
}

// Replace swaps the column with the same name in place, keeping its position.
func (d *Dataset) Replace(c *Column) error {
	i, ok := d.index[c.Name()]
	if !ok {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, c.Name())
	}
	if c.Len() != d.Rows() {
		return fmt.Errorf("%w: %q has %d rows, dataset has %d", ErrLengthMismatch, c.Name(), c.Len(), d.Rows())
	}
	d.cols[i] = c
	return nil
}

// Column returns the named column.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// Columns returns the columns in order. The slice is a copy.
func (d *Dataset) Columns() []*Column { return append([]*Column(nil), d.cols...) }

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name()
	}
	return out
}

func (d *Dataset) NumColumns() int { return len(d.cols) }

// Rows returns the shared row count, 0 for an empty dataset.
func (d *Dataset) Rows() int {
	if len(d.cols) == 0 {
		return 0
	}
	return d.cols[0].Len()
}

// Clone copies the column list. Columns themselves are immutable and shared.
func (d *Dataset) Clone() *Dataset {
	cp := &Dataset{cols: append([]*Column(nil), d.cols...), index: make(map[string]int, len(d.cols))}
	for k, v := range d.index {
		cp.index[k] = v
	}
	return cp
}

// Head returns a dataset holding the first n rows of every column.
func (d *Dataset) Head(n int) *Dataset {
	if n >= d.Rows() {
		return d
	}
	cp := d.Clone()
	for i, c := range cp.cols {
		cp.cols[i] = c.Head(n)
	}
	return cp
}

// MemoryUsage sums the deep footprint of every column.
func (d *Dataset) MemoryUsage() int64 {
	var n int64
	for _, c := range d.cols {
		n += c.MemoryUsage()
	}
	return n
}

// EqualDatasets reports structural and value equality.
func EqualDatasets(a, b *Dataset) bool {
	if a.NumColumns() != b.NumColumns() {
		return false
	}
	for i := range a.cols {
		if !EqualColumns(a.cols[i], b.cols[i]) {
			return false
		}
	}
	return true
}
