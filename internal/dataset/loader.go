// Package dataset loads tabular files into the columnar view used by the inference engine.
package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ppiankov/coltype/internal/model"
)

// Supported formats
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatArrow   = "arrow"
)

// Loader reads datasets from files
type Loader struct {
	cfg    model.LoaderConfig
	mem    memory.Allocator
	logger *slog.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithAllocator sets the Arrow allocator used while decoding
func WithAllocator(mem memory.Allocator) Option {
	return func(l *Loader) {
		l.mem = mem
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a new loader
func NewLoader(cfg model.LoaderConfig, opts ...Option) *Loader {
	l := &Loader{
		cfg:    cfg,
		mem:    memory.DefaultAllocator,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.cfg.Delimiter == "" {
		l.cfg.Delimiter = ","
	}
	return l
}

// DetectFormat returns the format for a path based on its extension
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	case ".arrow", ".feather", ".ipc":
		return FormatArrow, nil
	default:
		return "", fmt.Errorf("cannot detect format of %q, use --format", path)
	}
}

// Load reads the dataset at path. A path of "-" reads CSV from stdin.
func (l *Loader) Load(ctx context.Context, path string) (*model.Dataset, error) {
	if path == "-" {
		return l.LoadCSV(ctx, os.Stdin, "stdin")
	}

	format := l.cfg.Format
	if format == "" {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	l.logger.Debug("loading dataset", "path", path, "format", format)

	switch format {
	case FormatCSV:
		delim := l.cfg.Delimiter
		if l.cfg.Format == "" && strings.EqualFold(filepath.Ext(path), ".tsv") {
			delim = "\t"
		}
		return l.loadCSV(ctx, f, path, delim)
	case FormatParquet:
		return l.loadParquet(ctx, f, path)
	case FormatArrow:
		return l.loadArrow(ctx, f, path)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// LoadCSV reads CSV data from r
func (l *Loader) LoadCSV(ctx context.Context, r io.Reader, source string) (*model.Dataset, error) {
	return l.loadCSV(ctx, r, source, l.cfg.Delimiter)
}

// fromTable converts a decoded table and releases it
func (l *Loader) fromTable(tbl arrow.Table, source, format string) (*model.Dataset, error) {
	defer tbl.Release()

	ds, err := TableToDataset(tbl)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", source, err)
	}
	ds.Source = source
	ds.Format = format

	l.logger.Debug("dataset loaded", "source", source, "format", format, "rows", ds.Rows, "columns", ds.Names())
	return ds, nil
}
