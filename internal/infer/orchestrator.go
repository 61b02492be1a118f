package infer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/ppiankov/coltype/internal/model"
	"github.com/ppiankov/coltype/internal/worker"
)

// Orchestrator resolves every column of a dataset, in-process or on a worker pool
type Orchestrator struct {
	resolver *Resolver
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator for the given parameters
func NewOrchestrator(cfg model.InferenceConfig, logger *slog.Logger) (*Orchestrator, error) {
	resolver, err := NewResolver(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{resolver: resolver, logger: logger}, nil
}

// ResolveDataset resolves every column of a loaded dataset
func (o *Orchestrator) ResolveDataset(ctx context.Context, ds *model.Dataset) (model.Result, error) {
	return o.ResolveAll(ctx, ds.Rows, ds.Columns)
}

// ResolveAll resolves columns and returns their labels in column order.
// Datasets with more rows than the parallel threshold fan out one job per column.
// Any failing column fails the whole call; no partial result is returned.
func (o *Orchestrator) ResolveAll(ctx context.Context, rows int, columns []model.Column) (model.Result, error) {
	cfg := o.resolver.Config()
	start := time.Now()

	var (
		results []*worker.ColumnResult
		err     error
	)
	if rows > cfg.ParallelRowThreshold {
		results, err = o.resolveParallel(ctx, columns, o.workers(len(columns)))
	} else {
		o.logger.Debug("resolving columns sequentially", "rows", rows, "columns", len(columns))
		results = o.resolveSequential(ctx, columns)
	}
	if err != nil {
		return model.Result{}, err
	}

	entries := make([]model.ColumnType, len(columns))
	for i, res := range results {
		if res == nil {
			return model.Result{}, &ColumnError{Column: columns[i].Name, Index: i, Err: fmt.Errorf("no result")}
		}
		if res.Error != nil {
			o.logger.Warn("column resolution failed", "column", res.Name, "position", i, "error", res.Error)
			return model.Result{}, &ColumnError{Column: res.Name, Index: i, Err: res.Error}
		}
		decision := res.Decision
		entries[i] = model.ColumnType{Name: res.Name, Label: decision.Label, Decision: &decision}
	}

	o.logger.Info("columns resolved", "columns", len(columns), "rows", rows, "elapsed", time.Since(start))
	return model.NewResult(entries), nil
}

func (o *Orchestrator) resolveSequential(ctx context.Context, columns []model.Column) []*worker.ColumnResult {
	results := make([]*worker.ColumnResult, len(columns))
	for i, col := range columns {
		job := &worker.ColumnJob{Position: i, Column: col, Resolver: o.resolver}
		results[i] = job.Execute(ctx).(*worker.ColumnResult)
		if results[i].Error != nil {
			break
		}
	}
	return results
}

func (o *Orchestrator) resolveParallel(ctx context.Context, columns []model.Column, workers int) ([]*worker.ColumnResult, error) {
	pool := worker.NewPoolContext(ctx, workers)
	o.logger.Debug("resolving columns in parallel", "columns", len(columns), "workers", pool.Workers())
	pool.Start()
	defer pool.Shutdown()

	for i, col := range columns {
		if !pool.Submit(&worker.ColumnJob{Position: i, Column: col, Resolver: o.resolver}) {
			return nil, fmt.Errorf("submit column %q: %w", col.Name, context.Cause(ctx))
		}
	}

	// Re-associate by position, not completion order
	results := make([]*worker.ColumnResult, len(columns))
	for _, r := range pool.Wait() {
		res := r.(*worker.ColumnResult)
		results[res.Position] = res
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve columns: %w", err)
	}
	return results, nil
}

func (o *Orchestrator) workers(columns int) int {
	n := o.resolver.Config().Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > columns {
		n = columns
	}
	return n
}
