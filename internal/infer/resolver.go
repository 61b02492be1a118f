// Package infer resolves dataset columns to semantic type labels.
package infer

import (
	"fmt"
	"math/rand/v2"
	"reflect"

	"github.com/ppiankov/coltype/internal/classify"
	"github.com/ppiankov/coltype/internal/model"
)

// Resolver resolves a single column to a type label
type Resolver struct {
	cfg model.InferenceConfig
}

// NewResolver creates a resolver, rejecting invalid parameters up front
func NewResolver(cfg model.InferenceConfig) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{cfg: cfg}, nil
}

// Config returns the parameters the resolver runs with
func (r *Resolver) Config() model.InferenceConfig {
	return r.cfg
}

// Resolve returns the label for a column
func (r *Resolver) Resolve(col model.Column) (model.Label, error) {
	d, err := r.Explain(col)
	if err != nil {
		return "", err
	}
	return d.Label, nil
}

// Explain resolves a column and reports which rule decided it
func (r *Resolver) Explain(col model.Column) (model.Decision, error) {
	return r.ExplainAt(0, col)
}

// ExplainAt resolves the column found at position in its dataset.
// The position only seeds the sampler when a fixed seed is configured.
func (r *Resolver) ExplainAt(position int, col model.Column) (model.Decision, error) {
	if col.Len() == 0 {
		return model.Decision{Label: model.LabelNotFound, Rule: model.RuleEmpty}, nil
	}

	scan, err := scanColumn(col.Values)
	if err != nil {
		return model.Decision{}, err
	}

	if scan.isBoolean() {
		return model.Decision{Label: model.LabelBool, Rule: model.RuleBoolean}, nil
	}
	if scan.allInt {
		return model.Decision{Label: model.LabelInt, Rule: model.RuleNativeInt}, nil
	}
	if scan.allFloat {
		return model.Decision{Label: model.LabelFloat, Rule: model.RuleNativeFloat}, nil
	}

	return r.sampled(col, newRand(r.cfg.Seed, position))
}

func (r *Resolver) sampled(col model.Column, rng *rand.Rand) (model.Decision, error) {
	sample := SampleIndices(col.Len(), r.cfg.SampleSize, rng)

	var tally model.Tally
	for _, i := range sample {
		cat, err := classify.Classify(col.Values[i])
		if err != nil {
			return model.Decision{}, fmt.Errorf("row %d: %w", i, err)
		}
		if cat == classify.DateParseable {
			tally.Date++
		} else {
			tally.String++
		}
	}

	d := model.Decision{
		Label:      model.LabelNotFound,
		Rule:       model.RuleSampled,
		SampleSize: len(sample),
		Tally:      tally,
	}

	// Equals len(sample): each sampled value lands in one category
	n := float64(tally.Total())
	switch {
	case float64(tally.Date)/n >= r.cfg.Threshold:
		d.Label = model.LabelDate
	case float64(tally.String)/n >= r.cfg.Threshold:
		d.Label = model.LabelString
	}
	return d, nil
}

// columnScan holds what one full pass over a column learned
type columnScan struct {
	allInt   bool
	allFloat bool
	distinct []any // First three distinct values at most
}

func scanColumn(values []any) (columnScan, error) {
	scan := columnScan{allInt: true, allFloat: true}
	seen := make(map[any]struct{}, 3)

	for i, v := range values {
		if !classify.Supported(v) {
			return columnScan{}, fmt.Errorf("row %d: %w: %T", i, classify.ErrUnsupportedValue, v)
		}
		if scan.allInt && !classify.IsNativeInt(v) {
			scan.allInt = false
		}
		if scan.allFloat && !classify.IsNativeFloat(v) {
			scan.allFloat = false
		}
		if len(seen) <= 2 {
			key := distinctKey(v)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				scan.distinct = append(scan.distinct, v)
			}
		}
	}
	return scan, nil
}

// isBoolean reports exactly two distinct values that are both boolean literals
func (s columnScan) isBoolean() bool {
	if len(s.distinct) != 2 {
		return false
	}
	for _, v := range s.distinct {
		text, err := classify.Text(v)
		if err != nil || !classify.IsBoolLiteral(text) {
			return false
		}
	}
	return true
}

// distinctKey returns a map key identifying a value
func distinctKey(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	}
	// Interface fields can hide slices or maps inside a comparable type
	if reflect.ValueOf(v).Comparable() {
		return v
	}
	text, _ := classify.Text(v)
	return text
}
