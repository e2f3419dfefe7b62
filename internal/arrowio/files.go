package arrowio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/KaramelBytes/dtypediet/internal/frame"
	"github.com/KaramelBytes/dtypediet/internal/utils"
)

// ErrUnknownExtension is returned when a path has no recognised file format.
var ErrUnknownExtension = errors.New("unknown file extension")

// FileFormat is an on-disk columnar format.
type FileFormat int

const (
	FormatParquet FileFormat = iota
	FormatIPC
)

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return FormatParquet, nil
	case ".arrow", ".ipc", ".feather":
		return FormatIPC, nil
	}
	return 0, fmt.Errorf("%w: %q (use .parquet or .arrow)", ErrUnknownExtension, filepath.Base(path))
}

// ParquetOptions configures Parquet output.
type ParquetOptions struct {
	// Compression is one of snappy, gzip, zstd, lz4, brotli, none.
	Compression string
}

// ParseCompression resolves a codec name.
func ParseCompression(name string) (compress.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "lz4":
		return compress.Codecs.Lz4Raw, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	}
	return compress.Codecs.Uncompressed, fmt.Errorf("unknown parquet compression: %q", name)
}

// WriteParquet writes ds as one row group. The Arrow schema is stored in the
// file so narrow kinds survive a round trip.
func WriteParquet(w io.Writer, ds *frame.Dataset, opt ParquetOptions) error {
	codec, err := ParseCompression(opt.Compression)
	if err != nil {
		return err
	}
	mem := memory.NewGoAllocator()
	rec, err := ToRecord(mem, ds)
	if err != nil {
		return err
	}
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(codec), parquet.WithAllocator(mem))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema(), pqarrow.WithAllocator(mem))
	fw, err := pqarrow.NewFileWriter(rec.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet loads a Parquet file into a dataset.
func ReadParquet(ctx context.Context, r parquet.ReaderAtSeeker) (*frame.Dataset, error) {
	pf, err := file.NewParquetReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	mem := memory.NewGoAllocator()
	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}
	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer tbl.Release()
	return FromTable(tbl)
}

// WriteIPC writes ds as an Arrow IPC file with a single record batch.
func WriteIPC(w io.Writer, ds *frame.Dataset) error {
	mem := memory.NewGoAllocator()
	rec, err := ToRecord(mem, ds)
	if err != nil {
		return err
	}
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("failed to create Arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to write Arrow record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close Arrow writer: %w", err)
	}
	return nil
}

// ReadIPC loads an Arrow IPC file; record batches are concatenated.
func ReadIPC(r ipc.ReadAtSeeker) (*frame.Dataset, error) {
	mem := memory.NewGoAllocator()
	fr, err := ipc.NewFileReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("failed to open Arrow file: %w", err)
	}
	defer fr.Close()

	recs := make([]arrow.Record, 0, fr.NumRecords())
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", i, err)
		}
		rec.Retain()
		recs = append(recs, rec)
	}
	tbl := array.NewTableFromRecords(fr.Schema(), recs)
	defer tbl.Release()
	return FromTable(tbl)
}

// WriteFile writes ds to path in the format implied by its extension.
func WriteFile(path string, ds *frame.Dataset, opt ParquetOptions) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	switch format {
	case FormatParquet:
		err = WriteParquet(&buf, ds, opt)
	case FormatIPC:
		err = WriteIPC(&buf, ds)
	}
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, buf.Bytes())
}

// ReadFile loads a Parquet or Arrow IPC file.
func ReadFile(ctx context.Context, path string) (*frame.Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if format == FormatIPC {
		return ReadIPC(f)
	}
	return ReadParquet(ctx, f)
}
