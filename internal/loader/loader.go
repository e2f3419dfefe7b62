// Package loader reads tabular files into in-memory datasets.
package loader

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dtypediet/internal/arrowio"
	"github.com/KaramelBytes/dtypediet/internal/frame"
)

// Options controls how text-based inputs are read.
type Options struct {
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// XLSX sheet selection. SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for loading.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// Table is a loaded dataset plus notes about how it was read.
type Table struct {
	Name      string
	Data      *frame.Dataset
	Rows      int // data rows seen in the source
	Processed int // rows kept after MaxRows
	Warnings  []string
}

// Load picks a reader by file extension.
func Load(ctx context.Context, path string, opt Options) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return LoadCSV(path, opt)
	case ".xlsx":
		return LoadXLSX(path, opt)
	case ".parquet", ".pq":
		return LoadParquet(ctx, path, opt)
	case ".arrow", ".ipc", ".feather":
		return LoadArrow(path, opt)
	}
	return nil, fmt.Errorf("unsupported input %q (use .csv, .tsv, .xlsx, .parquet or .arrow)", filepath.Base(path))
}

// LoadParquet reads a Parquet file. Narrow kinds stored by arrowio are kept.
func LoadParquet(ctx context.Context, path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()
	ds, err := arrowio.ReadParquet(ctx, f)
	if err != nil {
		return nil, err
	}
	return headTable(path, ds, opt), nil
}

// LoadArrow reads an Arrow IPC file.
func LoadArrow(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open arrow: %w", err)
	}
	defer f.Close()
	ds, err := arrowio.ReadIPC(f)
	if err != nil {
		return nil, err
	}
	return headTable(path, ds, opt), nil
}

// headTable applies MaxRows to a dataset read in one piece.
func headTable(path string, ds *frame.Dataset, opt Options) *Table {
	t := &Table{Name: filepath.Base(path), Data: ds, Rows: ds.Rows(), Processed: ds.Rows()}
	if opt.MaxRows > 0 && opt.MaxRows < t.Rows {
		t.Data = ds.Head(opt.MaxRows)
		t.Processed = opt.MaxRows
		t.Warnings = append(t.Warnings, maxRowsWarning(t.Processed, t.Rows))
	}
	return t
}

func maxRowsWarning(processed, rows int) string {
	return fmt.Sprintf("processed only %d/%d rows due to MaxRows", processed, rows)
}

// columnAcc collects raw cells and tracks which kind they all parse as.
type columnAcc struct {
	name     string
	cells    []string
	allInt   bool
	allFloat bool
	nonEmpty int
}

func newColumnAcc(name string) *columnAcc {
	return &columnAcc{name: name, allInt: true, allFloat: true}
}

func (c *columnAcc) add(v string) {
	c.cells = append(c.cells, v)
	s := strings.TrimSpace(v)
	if s == "" {
		// a missing cell forces float (NaN) for numeric columns
		c.allInt = false
		return
	}
	c.nonEmpty++
	if c.allInt {
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			c.allInt = false
		}
	}
	if c.allFloat {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			c.allFloat = false
		}
	}
}

// column infers int64, then float64, then object.
func (c *columnAcc) column() *frame.Column {
	switch {
	case c.nonEmpty > 0 && c.allInt:
		vals := make([]int64, len(c.cells))
		for i, s := range c.cells {
			vals[i], _ = strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		}
		return frame.NewInt64(c.name, vals)
	case c.nonEmpty > 0 && c.allFloat:
		vals := make([]float64, len(c.cells))
		for i, s := range c.cells {
			s = strings.TrimSpace(s)
			if s == "" {
				vals[i] = math.NaN()
				continue
			}
			vals[i], _ = strconv.ParseFloat(s, 64)
		}
		return frame.NewFloat64(c.name, vals)
	}
	return frame.NewObject(c.name, c.cells)
}

// headerNames trims names, fills blanks and makes duplicates unique.
func headerNames(header []string) []string {
	out := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for seen[name] > 0 {
			seen[base]++
			name = fmt.Sprintf("%s_%d", base, seen[base])
		}
		seen[name]++
		out[i] = name
	}
	return out
}

// build turns row-major records into a table.
type builder struct {
	name    string
	cols    []*columnAcc
	maxRows int
	tbl     *Table
}

func newBuilder(name string, header []string, opt Options) *builder {
	names := headerNames(header)
	cols := make([]*columnAcc, len(names))
	for i, n := range names {
		cols[i] = newColumnAcc(n)
	}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	return &builder{name: name, cols: cols, maxRows: maxRows, tbl: &Table{Name: name}}
}

func (b *builder) add(rec []string) {
	b.tbl.Rows++
	if b.tbl.Processed >= b.maxRows {
		return
	}
	b.tbl.Processed++
	for j, c := range b.cols {
		v := ""
		if j < len(rec) {
			v = rec[j]
		}
		c.add(v)
	}
}

func (b *builder) finish() (*Table, error) {
	cols := make([]*frame.Column, len(b.cols))
	for i, c := range b.cols {
		cols[i] = c.column()
	}
	ds, err := frame.NewDataset(cols...)
	if err != nil {
		return nil, err
	}
	b.tbl.Data = ds
	if b.tbl.Processed < b.tbl.Rows {
		b.tbl.Warnings = append(b.tbl.Warnings, maxRowsWarning(b.tbl.Processed, b.tbl.Rows))
	}
	return b.tbl, nil
}
