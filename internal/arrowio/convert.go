// Package arrowio converts datasets to and from Apache Arrow and writes the
// narrowed result as Parquet or Arrow IPC files.
package arrowio

import (
	"errors"
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/KaramelBytes/dtypediet/internal/frame"
)

var (
	// ErrUnsupportedType is returned for Arrow types with no matching kind.
	ErrUnsupportedType = errors.New("unsupported arrow type")
	// ErrNulls is returned for nulls in columns that cannot hold NaN.
	ErrNulls = errors.New("null values are not supported")
)

// DataType returns the Arrow type used to store col.
func DataType(col *frame.Column) arrow.DataType {
	switch col.Kind() {
	case frame.Int64:
		return arrow.PrimitiveTypes.Int64
	case frame.Int32:
		return arrow.PrimitiveTypes.Int32
	case frame.Int16:
		return arrow.PrimitiveTypes.Int16
	case frame.Int8:
		return arrow.PrimitiveTypes.Int8
	case frame.Float64:
		return arrow.PrimitiveTypes.Float64
	case frame.Float32:
		return arrow.PrimitiveTypes.Float32
	case frame.Float16:
		return arrow.FixedWidthTypes.Float16
	case frame.Category:
		return &arrow.DictionaryType{IndexType: indexType(col.CodeWidth()), ValueType: DataType(col.Dictionary())}
	}
	return arrow.BinaryTypes.String
}

func indexType(width int) arrow.DataType {
	switch width {
	case 1:
		return arrow.PrimitiveTypes.Int8
	case 2:
		return arrow.PrimitiveTypes.Int16
	}
	return arrow.PrimitiveTypes.Int32
}

// Schema returns the Arrow schema of ds.
func Schema(ds *frame.Dataset) *arrow.Schema {
	fields := make([]arrow.Field, 0, ds.NumColumns())
	for _, c := range ds.Columns() {
		fields = append(fields, arrow.Field{Name: c.Name(), Type: DataType(c)})
	}
	return arrow.NewSchema(fields, nil)
}

// ToRecord builds a single record batch holding every column of ds.
// The caller releases the record.
func ToRecord(mem memory.Allocator, ds *frame.Dataset) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	cols := make([]arrow.Array, 0, ds.NumColumns())
	defer func() {
		for _, a := range cols {
			a.Release()
		}
	}()
	for _, c := range ds.Columns() {
		arr, err := ToArray(mem, c)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name(), err)
		}
		cols = append(cols, arr)
	}
	return array.NewRecord(Schema(ds), cols, int64(ds.Rows())), nil
}

// ToArray builds the Arrow array for one column.
func ToArray(mem memory.Allocator, col *frame.Column) (arrow.Array, error) {
	n := col.Len()
	switch col.Kind() {
	case frame.Int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(col.Value(i).Int)
		}
		return b.NewArray(), nil
	case frame.Int32:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(int32(col.Value(i).Int))
		}
		return b.NewArray(), nil
	case frame.Int16:
		b := array.NewInt16Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(int16(col.Value(i).Int))
		}
		return b.NewArray(), nil
	case frame.Int8:
		b := array.NewInt8Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(int8(col.Value(i).Int))
		}
		return b.NewArray(), nil
	case frame.Float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(col.Value(i).Float)
		}
		return b.NewArray(), nil
	case frame.Float32:
		b := array.NewFloat32Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(float32(col.Value(i).Float))
		}
		return b.NewArray(), nil
	case frame.Float16:
		b := array.NewFloat16Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(float16.New(float32(col.Value(i).Float)))
		}
		return b.NewArray(), nil
	case frame.Object:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(col.Value(i).Str)
		}
		return b.NewArray(), nil
	case frame.Category:
		return dictionaryArray(mem, col)
	}
	return nil, fmt.Errorf("%w: kind %s", ErrUnsupportedType, col.Kind())
}

func dictionaryArray(mem memory.Allocator, col *frame.Column) (arrow.Array, error) {
	dict, err := ToArray(mem, col.Dictionary())
	if err != nil {
		return nil, err
	}
	defer dict.Release()

	var indices arrow.Array
	n := col.Len()
	switch col.CodeWidth() {
	case 1:
		b := array.NewInt8Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(int8(col.Code(i)))
		}
		indices = b.NewArray()
	case 2:
		b := array.NewInt16Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(int16(col.Code(i)))
		}
		indices = b.NewArray()
	default:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(int32(col.Code(i)))
		}
		indices = b.NewArray()
	}
	defer indices.Release()
	return array.NewDictionaryArray(DataType(col), indices, dict), nil
}

// KindOf maps an Arrow type to a column kind.
func KindOf(dt arrow.DataType) (frame.Kind, error) {
	switch dt.ID() {
	case arrow.INT64:
		return frame.Int64, nil
	case arrow.INT32:
		return frame.Int32, nil
	case arrow.INT16:
		return frame.Int16, nil
	case arrow.INT8:
		return frame.Int8, nil
	case arrow.FLOAT64:
		return frame.Float64, nil
	case arrow.FLOAT32:
		return frame.Float32, nil
	case arrow.FLOAT16:
		return frame.Float16, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return frame.Object, nil
	case arrow.DICTIONARY:
		return frame.Category, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, dt)
}

// FromRecord converts a record batch into a dataset.
func FromRecord(rec arrow.Record) (*frame.Dataset, error) {
	ds, err := frame.NewDataset()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(rec.NumCols()); i++ {
		col, err := FromChunks(rec.ColumnName(i), rec.Schema().Field(i).Type, []arrow.Array{rec.Column(i)})
		if err != nil {
			return nil, err
		}
		if err := ds.Add(col); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// FromTable converts a table into a dataset, concatenating chunks.
func FromTable(tbl arrow.Table) (*frame.Dataset, error) {
	ds, err := frame.NewDataset()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(tbl.NumCols()); i++ {
		c := tbl.Column(i)
		col, err := FromChunks(c.Name(), c.DataType(), c.Data().Chunks())
		if err != nil {
			return nil, err
		}
		if err := ds.Add(col); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// FromChunks converts the chunks of one Arrow column. Nulls are accepted
// only in float columns, where they become NaN.
func FromChunks(name string, dt arrow.DataType, chunks []arrow.Array) (*frame.Column, error) {
	kind, err := KindOf(dt)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", name, err)
	}
	var vals []frame.Value
	for _, arr := range chunks {
		for i := 0; i < arr.Len(); i++ {
			v, err := valueAt(arr, i)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", name, len(vals), err)
			}
			vals = append(vals, v)
		}
	}
	return frame.FromValues(name, kind, vals)
}

func valueAt(arr arrow.Array, i int) (frame.Value, error) {
	if arr.IsNull(i) {
		switch arr.DataType().ID() {
		case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
			return frame.FloatValue(math.NaN()), nil
		}
		return frame.Value{}, ErrNulls
	}
	switch a := arr.(type) {
	case *array.Int64:
		return frame.IntValue(a.Value(i)), nil
	case *array.Int32:
		return frame.IntValue(int64(a.Value(i))), nil
	case *array.Int16:
		return frame.IntValue(int64(a.Value(i))), nil
	case *array.Int8:
		return frame.IntValue(int64(a.Value(i))), nil
	case *array.Float64:
		return frame.FloatValue(a.Value(i)), nil
	case *array.Float32:
		return frame.FloatValue(float64(a.Value(i))), nil
	case *array.Float16:
		return frame.FloatValue(float64(a.Value(i).Float32())), nil
	case *array.String:
		return frame.StringValue(a.Value(i)), nil
	case *array.LargeString:
		return frame.StringValue(a.Value(i)), nil
	case *array.Dictionary:
		return valueAt(a.Dictionary(), a.GetValueIndex(i))
	}
	return frame.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, arr.DataType())
}
