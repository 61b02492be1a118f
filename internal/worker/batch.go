package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/coltype/internal/model"
)

// Profiler defines the interface for profiling a dataset file
type Profiler interface {
	ProfileFile(ctx context.Context, path string) (*model.Profile, error)
}

// FileResult represents the result of profiling one file
type FileResult struct {
	Path    string
	Profile *model.Profile
	Error   error
}

// GetError returns the error from the file result
func (r *FileResult) GetError() error {
	return r.Error
}

// BatchProcessor profiles multiple files concurrently
type BatchProcessor struct {
	profiler    Profiler
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(profiler Profiler, concurrency int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchProcessor{
		profiler:    profiler,
		concurrency: concurrency,
	}
}

// ProcessPaths profiles every path and returns one result per path, in input order.
// A failing file does not stop the others.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*FileResult {
	results := make([]*FileResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			res := &FileResult{Path: path}
			if err := gctx.Err(); err != nil {
				res.Error = err
			} else {
				res.Profile, res.Error = b.profiler.ProfileFile(gctx, path)
			}
			results[i] = res
			return nil // per-file failures are reported, not fatal
		})
	}

	_ = g.Wait()
	return results
}

// ProcessFile profiles the given paths followed by those listed in listPath.
// Repeated paths are profiled once.
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string, paths ...string) ([]*FileResult, error) {
	listed, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	all := DedupePaths(append(append([]string(nil), paths...), listed...))
	return b.ProcessPaths(ctx, all), nil
}

// ReadPathsFromFile reads dataset paths from a file (one per line)
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	lines, err := readLines(bufio.NewScanner(file))
	if err != nil {
		return nil, err
	}
	return DedupePaths(lines), nil
}

func readLines(scanner *bufio.Scanner) ([]string, error) {
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return lines, nil
}

// DedupePaths drops repeated paths, keeping first occurrences in order
func DedupePaths(paths []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
