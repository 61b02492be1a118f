package dataset

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ppiankov/coltype/internal/model"
)

func (l *Loader) loadParquet(ctx context.Context, f *os.File, source string) (*model.Dataset, error) {
	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(l.mem), pqarrow.ArrowReadProperties{}, l.mem)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", source, err)
	}
	return l.fromTable(tbl, source, FormatParquet)
}

func (l *Loader) loadArrow(ctx context.Context, f *os.File, source string) (*model.Dataset, error) {
	rdr, err := ipc.NewFileReader(f, ipc.WithAllocator(l.mem))
	if err != nil {
		return nil, fmt.Errorf("open arrow file %s: %w", source, err)
	}
	defer func() { _ = rdr.Close() }()

	recs := make([]arrow.Record, 0, rdr.NumRecords())
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()

	for i := 0; i < rdr.NumRecords(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := rdr.Record(i)
		if err != nil {
			return nil, fmt.Errorf("read record batch %d: %w", i, err)
		}
		rec.Retain()
		recs = append(recs, rec)
	}

	tbl := array.NewTableFromRecords(rdr.Schema(), recs)
	return l.fromTable(tbl, source, FormatArrow)
}

// TableToDataset converts an Arrow table into native Go column values.
// Column names are whitespace-trimmed and made unique.
func TableToDataset(tbl arrow.Table) (*model.Dataset, error) {
	rows := int(tbl.NumRows())
	names := make([]string, tbl.NumCols())
	for i := range names {
		names[i] = tbl.Column(i).Name()
	}
	names = NormalizeNames(names)

	ds := &model.Dataset{
		Rows:    rows,
		Columns: make([]model.Column, len(names)),
	}

	for i := range names {
		col := tbl.Column(i)
		// Integer columns with gaps are held as floats, as dataframes do
		intAsFloat := arrow.IsInteger(col.DataType().ID()) && col.NullN() > 0

		values := make([]any, 0, rows)
		for _, chunk := range col.Data().Chunks() {
			values = appendValues(values, chunk, intAsFloat)
		}
		if len(values) != rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", names[i], len(values), rows)
		}
		ds.Columns[i] = model.Column{Name: names[i], Values: values}
	}
	return ds, nil
}

type signed interface {
	~int8 | ~int16 | ~int32 | ~int64
}

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

type valueArray[T any] interface {
	Len() int
	IsNull(i int) bool
	Value(i int) T
}

func appendSigned[T signed](dst []any, arr valueArray[T], asFloat bool) []any {
	for i := 0; i < arr.Len(); i++ {
		switch {
		case arr.IsNull(i):
			dst = append(dst, math.NaN())
		case asFloat:
			dst = append(dst, float64(arr.Value(i)))
		default:
			dst = append(dst, int64(arr.Value(i)))
		}
	}
	return dst
}

func appendUnsigned[T unsigned](dst []any, arr valueArray[T], asFloat bool) []any {
	for i := 0; i < arr.Len(); i++ {
		switch {
		case arr.IsNull(i):
			dst = append(dst, math.NaN())
		case asFloat:
			dst = append(dst, float64(arr.Value(i)))
		default:
			dst = append(dst, uint64(arr.Value(i)))
		}
	}
	return dst
}

func appendFloats[T float32 | float64](dst []any, arr valueArray[T]) []any {
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			dst = append(dst, math.NaN())
			continue
		}
		dst = append(dst, float64(arr.Value(i)))
	}
	return dst
}

func appendValues(dst []any, arr arrow.Array, intAsFloat bool) []any {
	switch a := arr.(type) {
	case *array.Int8:
		return appendSigned[int8](dst, a, intAsFloat)
	case *array.Int16:
		return appendSigned[int16](dst, a, intAsFloat)
	case *array.Int32:
		return appendSigned[int32](dst, a, intAsFloat)
	case *array.Int64:
		return appendSigned[int64](dst, a, intAsFloat)
	case *array.Uint8:
		return appendUnsigned[uint8](dst, a, intAsFloat)
	case *array.Uint16:
		return appendUnsigned[uint16](dst, a, intAsFloat)
	case *array.Uint32:
		return appendUnsigned[uint32](dst, a, intAsFloat)
	case *array.Uint64:
		return appendUnsigned[uint64](dst, a, intAsFloat)
	case *array.Float32:
		return appendFloats[float32](dst, a)
	case *array.Float64:
		return appendFloats[float64](dst, a)
	case *array.Boolean:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				dst = append(dst, nil)
				continue
			}
			dst = append(dst, a.Value(i))
		}
		return dst
	case *array.String:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				dst = append(dst, nil)
				continue
			}
			dst = append(dst, a.Value(i))
		}
		return dst
	case *array.LargeString:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				dst = append(dst, nil)
				continue
			}
			dst = append(dst, a.Value(i))
		}
		return dst
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).TimeUnit()
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				dst = append(dst, nil)
				continue
			}
			dst = append(dst, a.Value(i).ToTime(unit))
		}
		return dst
	case *array.Date32:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				dst = append(dst, nil)
				continue
			}
			dst = append(dst, a.Value(i).ToTime())
		}
		return dst
	case *array.Date64:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				dst = append(dst, nil)
				continue
			}
			dst = append(dst, a.Value(i).ToTime())
		}
		return dst
	default:
		floating := arrow.IsFloating(arr.DataType().ID())
		for i := 0; i < arr.Len(); i++ {
			switch {
			case floating && arr.IsNull(i):
				dst = append(dst, math.NaN())
			case arr.IsNull(i):
				dst = append(dst, nil)
			case floating:
				v, err := strconv.ParseFloat(arr.ValueStr(i), 64)
				if err != nil {
					v = math.NaN()
				}
				dst = append(dst, v)
			default:
				dst = append(dst, arr.ValueStr(i))
			}
		}
		return dst
	}
}

// NormalizeNames trims whitespace around column names and suffixes
// repeated names with .1, .2, ... so every name is a unique key.
func NormalizeNames(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		unique := name
		for n := 1; used[unique]; n++ {
			unique = name + "." + strconv.Itoa(n)
		}
		used[unique] = true
		out[i] = unique
	}
	return out
}
