package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/KaramelBytes/dtypediet/internal/frame"
)

// LoadCSV reads a delimited text file. The first record is the header.
func LoadCSV(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return ReadCSV(f, filepath.Base(path), delim, opt)
}

// ReadCSV reads delimited records from r.
func ReadCSV(r io.Reader, name string, delim rune, opt Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	// leading-space trimming would swallow empty fields when the delimiter is a tab
	cr.TrimLeadingSpace = !unicode.IsSpace(delim)
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return emptyTable(name), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return emptyTable(name), nil
	}
	b := newBuilder(name, header, opt)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", b.tbl.Rows+1, err)
		}
		b.add(rec)
	}
	return b.finish()
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func emptyTable(name string) *Table {
	ds, _ := frame.NewDataset()
	return &Table{Name: name, Data: ds}
}
