package infer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/coltype/internal/classify"
	"github.com/ppiankov/coltype/internal/model"
)

func sampleColumns() []model.Column {
	return []model.Column{
		{Name: "a", Values: []any{int64(1), int64(2), int64(3), int64(4)}},
		{Name: "b", Values: []any{"Yes", "No", "Yes", "No"}},
		{Name: "c", Values: []any{"2021-01-01", "2021-02-15", "2021-03-30", "2021-04-01"}},
		{Name: "d", Values: []any{1.5, 2.5, 3.5, 4.5}},
		{Name: "e", Values: []any{"apple", "pear", "plum", "kiwi"}},
		{Name: "f", Values: []any{"2021-01-01", "2021-02-15", "2021-03-30", "not-a-date"}},
	}
}

func newOrchestrator(t *testing.T, mutate func(*model.InferenceConfig)) *Orchestrator {
	t.Helper()
	cfg := model.DefaultInferenceConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	o, err := NewOrchestrator(cfg, nil)
	require.NoError(t, err)
	return o
}

func TestResolveAll_Sequential(t *testing.T) {
	o := newOrchestrator(t, nil)

	result, err := o.ResolveAll(context.Background(), 4, sampleColumns())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, result.Names())
	want := map[string]model.Label{
		"a": model.LabelInt,
		"b": model.LabelBool,
		"c": model.LabelDate,
		"d": model.LabelFloat,
		"e": model.LabelString,
		"f": model.LabelNotFound,
	}
	for name, label := range want {
		got, ok := result.Get(name)
		require.True(t, ok, "missing column %s", name)
		assert.Equal(t, label, got, "column %s", name)
	}
}

func TestResolveAll_ParallelMatchesSequential(t *testing.T) {
	seq := newOrchestrator(t, nil)
	par := newOrchestrator(t, func(c *model.InferenceConfig) {
		c.ParallelRowThreshold = 0
		c.Workers = 3
	})

	cols := sampleColumns()
	seqResult, err := seq.ResolveAll(context.Background(), 4, cols)
	require.NoError(t, err)
	parResult, err := par.ResolveAll(context.Background(), 4, cols)
	require.NoError(t, err)

	assert.Equal(t, seqResult.Names(), parResult.Names())
	for _, name := range seqResult.Names() {
		a, _ := seqResult.Get(name)
		b, _ := parResult.Get(name)
		assert.Equal(t, a, b, "column %s", name)
	}
}

func TestResolveAll_OrderPreserved(t *testing.T) {
	for _, threshold := range []int{0, 1000} {
		t.Run(fmt.Sprintf("parallel_rows_%d", threshold), func(t *testing.T) {
			o := newOrchestrator(t, func(c *model.InferenceConfig) {
				c.ParallelRowThreshold = threshold
				c.Workers = 8
			})

			cols := []model.Column{
				{Name: "a", Values: []any{"apple"}},
				{Name: "b", Values: []any{1}},
				{Name: "c", Values: []any{2.0}},
			}
			result, err := o.ResolveAll(context.Background(), 1, cols)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c"}, result.Names())
		})
	}
}

func TestResolveAll_SeededLargeColumnsAgreeAcrossPaths(t *testing.T) {
	var cols []model.Column
	for i := 0; i < 6; i++ {
		col := textColumn(4500, 500)
		col.Name = fmt.Sprintf("col%d", i)
		cols = append(cols, col)
	}

	seed := func(parallel bool) func(*model.InferenceConfig) {
		return func(c *model.InferenceConfig) {
			c.Seed = 7
			if parallel {
				c.ParallelRowThreshold = 0
			} else {
				c.ParallelRowThreshold = 1 << 30
			}
		}
	}

	seqResult, err := newOrchestrator(t, seed(false)).ResolveAll(context.Background(), 5000, cols)
	require.NoError(t, err)
	parResult, err := newOrchestrator(t, seed(true)).ResolveAll(context.Background(), 5000, cols)
	require.NoError(t, err)

	seqEntries := seqResult.Entries()
	parEntries := parResult.Entries()
	require.Len(t, parEntries, len(seqEntries))
	for i := range seqEntries {
		assert.Equal(t, *seqEntries[i].Decision, *parEntries[i].Decision, "column %s", seqEntries[i].Name)
	}
}

func TestResolveAll_ColumnFailure(t *testing.T) {
	for _, threshold := range []int{0, 1000} {
		t.Run(fmt.Sprintf("parallel_rows_%d", threshold), func(t *testing.T) {
			o := newOrchestrator(t, func(c *model.InferenceConfig) { c.ParallelRowThreshold = threshold })

			cols := sampleColumns()
			cols[3] = model.Column{Name: "broken", Values: []any{"apple", map[string]int{}, "pear", "plum"}}

			result, err := o.ResolveAll(context.Background(), 4, cols)
			require.Error(t, err)
			assert.Zero(t, result.Len())

			var colErr *ColumnError
			require.True(t, errors.As(err, &colErr))
			assert.Equal(t, "broken", colErr.Column)
			assert.Equal(t, 3, colErr.Index)
			assert.True(t, errors.Is(err, classify.ErrUnsupportedValue))
			assert.Contains(t, err.Error(), `"broken"`)
		})
	}
}

func TestResolveAll_FirstFailureInColumnOrder(t *testing.T) {
	o := newOrchestrator(t, func(c *model.InferenceConfig) { c.ParallelRowThreshold = 0 })

	cols := sampleColumns()
	cols[1] = model.Column{Name: "first", Values: []any{[]int{1}}}
	cols[4] = model.Column{Name: "second", Values: []any{[]int{2}}}

	_, err := o.ResolveAll(context.Background(), 4, cols)
	var colErr *ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "first", colErr.Column)
}

func TestResolveAll_Cancelled(t *testing.T) {
	o := newOrchestrator(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.ResolveAll(ctx, 4, sampleColumns())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestResolveAll_NoColumns(t *testing.T) {
	for _, threshold := range []int{0, 1000} {
		o := newOrchestrator(t, func(c *model.InferenceConfig) { c.ParallelRowThreshold = threshold })

		result, err := o.ResolveAll(context.Background(), 10, nil)
		require.NoError(t, err)
		assert.Zero(t, result.Len())
	}
}

func TestResolveDataset(t *testing.T) {
	o := newOrchestrator(t, nil)

	ds := &model.Dataset{Source: "mem", Rows: 4, Columns: sampleColumns()}
	result, err := o.ResolveDataset(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, ds.Names(), result.Names())

	for _, e := range result.Entries() {
		require.NotNil(t, e.Decision)
		assert.Equal(t, e.Label, e.Decision.Label)
	}
}

func TestNewOrchestrator_InvalidConfig(t *testing.T) {
	cfg := model.DefaultInferenceConfig()
	cfg.Threshold = 2
	_, err := NewOrchestrator(cfg, nil)
	assert.True(t, errors.Is(err, model.ErrInvalidConfig))
}

func TestColumnError(t *testing.T) {
	inner := errors.New("boom")
	err := &ColumnError{Column: "price", Index: 2, Err: inner}

	assert.Equal(t, `resolve column "price" (position 2): boom`, err.Error())
	assert.True(t, errors.Is(err, inner))
}
