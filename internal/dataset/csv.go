package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/ppiankov/coltype/internal/model"
)

// nullTokens are cells read as missing, following common dataframe readers
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"#N/A": {},
	"NaN":  {},
	"nan":  {},
	"NULL": {},
	"null": {},
	"None": {},
}

// IsNullToken reports whether a CSV cell is read as missing
func IsNullToken(cell string) bool {
	_, ok := nullTokens[strings.TrimSpace(cell)]
	return ok
}

func (l *Loader) loadCSV(ctx context.Context, r io.Reader, source, delim string) (*model.Dataset, error) {
	header, cells, err := readCSV(ctx, r, []rune(delim)[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	names := NormalizeNames(header)
	fields := make([]arrow.Field, len(names))
	chunks := make([][]arrow.Array, len(names))
	defer func() {
		for _, c := range chunks {
			for _, arr := range c {
				arr.Release()
			}
		}
	}()

	for i, name := range names {
		arr := l.buildColumn(cells[i])
		fields[i] = arrow.Field{Name: name, Type: arr.DataType(), Nullable: true}
		chunks[i] = []arrow.Array{arr}
	}

	tbl := array.NewTableFromSlice(arrow.NewSchema(fields, nil), chunks)
	return l.fromTable(tbl, source, FormatCSV)
}

// readCSV returns the header and the cells of every column
func readCSV(ctx context.Context, r io.Reader, delim rune) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("empty input: no header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	cells := make([][]string, len(header))
	for row := 0; ; row++ {
		if row%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		for i, cell := range rec {
			cells[i] = append(cells[i], cell)
		}
	}
	return header, cells, nil
}

// columnKind is the storage type a CSV column is promoted to
type columnKind int

const (
	kindText columnKind = iota
	kindInt
	kindFloat
)

// promote picks int64 when every present cell is an integer, float64 when
// every present cell is numeric (missing cells become NaN), text otherwise
func promote(cells []string) columnKind {
	allInt, allFloat := true, true
	present, missing := 0, false

	for _, cell := range cells {
		if IsNullToken(cell) {
			missing = true
			continue
		}
		present++
		t := strings.TrimSpace(cell)
		if allInt {
			if _, err := strconv.ParseInt(t, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(t, 64); err != nil {
				allFloat = false
			}
		}
		if !allInt && !allFloat {
			return kindText
		}
	}

	switch {
	case present == 0:
		return kindFloat
	case allInt && !missing:
		return kindInt
	default:
		return kindFloat
	}
}

func (l *Loader) buildColumn(cells []string) arrow.Array {
	switch promote(cells) {
	case kindInt:
		b := array.NewInt64Builder(l.mem)
		defer b.Release()
		b.Reserve(len(cells))
		for _, cell := range cells {
			v, _ := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
			b.Append(v)
		}
		return b.NewArray()
	case kindFloat:
		b := array.NewFloat64Builder(l.mem)
		defer b.Release()
		b.Reserve(len(cells))
		for _, cell := range cells {
			if IsNullToken(cell) {
				b.AppendNull()
				continue
			}
			v, _ := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			b.Append(v)
		}
		return b.NewArray()
	default:
		b := array.NewStringBuilder(l.mem)
		defer b.Release()
		b.Reserve(len(cells))
		for _, cell := range cells {
			if IsNullToken(cell) {
				b.AppendNull()
				continue
			}
			b.Append(cell)
		}
		return b.NewArray()
	}
}
