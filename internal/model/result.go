package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Rule names the resolution step that decided a column's label
type Rule string

const (
	RuleEmpty       Rule = "empty"        // Zero-length column
	RuleBoolean     Rule = "boolean"      // Two distinct boolean literals
	RuleNativeInt   Rule = "native_int"   // All values natively typed integers
	RuleNativeFloat Rule = "native_float" // All values natively typed floats
	RuleSampled     Rule = "sampled"      // Date/string ratio over a sample
)

// Decision is the explained outcome of resolving one column
type Decision struct {
	Label      Label `json:"label" yaml:"label"`
	Rule       Rule  `json:"rule" yaml:"rule"`
	SampleSize int   `json:"sample_size,omitempty" yaml:"sample_size,omitempty"`
	Tally      Tally `json:"tally" yaml:"tally"`
}

// ColumnType pairs a column name with its resolved label
type ColumnType struct {
	Name     string    `json:"name" yaml:"name"`
	Label    Label     `json:"label" yaml:"label"`
	Decision *Decision `json:"decision,omitempty" yaml:"decision,omitempty"`
}

// Result maps column names to labels, in input column order.
// It is built once by the orchestrator and not mutated afterwards.
type Result struct {
	entries []ColumnType
	index   map[string]int
}

// NewResult builds a result from entries already in column order
func NewResult(entries []ColumnType) Result {
	r := Result{
		entries: make([]ColumnType, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	copy(r.entries, entries)
	for i, e := range r.entries {
		r.index[e.Name] = i
	}
	return r
}

// Len returns the number of columns in the result
func (r Result) Len() int {
	return len(r.entries)
}

// Get returns the label for a column name
func (r Result) Get(name string) (Label, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.entries[i].Label, true
}

// Names returns the column names in order
func (r Result) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the ordered entries
func (r Result) Entries() []ColumnType {
	out := make([]ColumnType, len(r.entries))
	copy(out, r.entries)
	return out
}

// MarshalJSON renders the result as a JSON object whose keys follow column order
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, fmt.Errorf("marshal column name: %w", err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(string(e.Label))
		if err != nil {
			return nil, fmt.Errorf("marshal label: %w", err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the result as an ordered YAML mapping
func (r Result) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range r.entries {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(e.Label)},
		)
	}
	return node, nil
}

// Profile is the outcome of profiling one dataset
type Profile struct {
	Source string `json:"source" yaml:"source"`
	Format string `json:"format" yaml:"format"`
	Rows   int    `json:"rows" yaml:"rows"`
	Types  Result `json:"types" yaml:"types"`
}
