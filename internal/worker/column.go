package worker

import (
	"context"
	"fmt"

	"github.com/ppiankov/coltype/internal/model"
)

// ColumnResolver defines the interface for resolving one column
type ColumnResolver interface {
	ExplainAt(position int, col model.Column) (model.Decision, error)
}

// ColumnJob resolves the column found at Position in its dataset
type ColumnJob struct {
	Position int
	Column   model.Column
	Resolver ColumnResolver
}

// Execute resolves the column. A panic inside the resolver is returned as an error.
func (j *ColumnJob) Execute(ctx context.Context) (res Result) {
	result := &ColumnResult{
		Position: j.Position,
		Name:     j.Column.Name,
	}

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("panic: %v", r)
			res = result
		}
	}()

	decision, err := j.Resolver.ExplainAt(j.Position, j.Column)
	if err != nil {
		result.Error = err
		return result
	}
	result.Decision = decision
	return result
}

// ColumnResult represents the result of a column job
type ColumnResult struct {
	Position int
	Name     string
	Decision model.Decision
	Error    error
}

// GetError returns the error from the column result
func (r *ColumnResult) GetError() error {
	return r.Error
}
