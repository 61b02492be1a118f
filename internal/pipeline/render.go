package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/coltype/internal/model"
	"github.com/ppiankov/coltype/internal/worker"
)

// Output formats
const (
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputTable = "table"
)

// Renderer writes profiles in the configured output format
type Renderer struct {
	format  string
	explain bool
}

// NewRenderer creates a new renderer
func NewRenderer(format string, explain bool) *Renderer {
	if format == "" {
		format = OutputJSON
	}
	return &Renderer{format: format, explain: explain}
}

type profileView struct {
	Source  string             `json:"source" yaml:"source"`
	Format  string             `json:"format" yaml:"format"`
	Rows    int                `json:"rows" yaml:"rows"`
	Types   model.Result       `json:"types" yaml:"types"`
	Columns []model.ColumnType `json:"columns,omitempty" yaml:"columns,omitempty"`
}

type fileView struct {
	Path    string       `json:"path" yaml:"path"`
	Error   string       `json:"error,omitempty" yaml:"error,omitempty"`
	Profile *profileView `json:"profile,omitempty" yaml:"profile,omitempty"`
}

func (r *Renderer) view(profile *model.Profile) *profileView {
	v := &profileView{
		Source: profile.Source,
		Format: profile.Format,
		Rows:   profile.Rows,
		Types:  profile.Types,
	}
	if r.explain {
		v.Columns = profile.Types.Entries()
	}
	return v
}

// Render writes a single profile
func (r *Renderer) Render(w io.Writer, profile *model.Profile) error {
	switch r.format {
	case OutputJSON:
		return writeJSON(w, r.view(profile))
	case OutputYAML:
		return writeYAML(w, r.view(profile))
	case OutputTable:
		return r.writeTable(w, profile)
	default:
		return fmt.Errorf("unknown output format %q", r.format)
	}
}

// RenderBatch writes the outcome of a batch run, failures included, in input order
func (r *Renderer) RenderBatch(w io.Writer, results []*worker.FileResult) error {
	switch r.format {
	case OutputJSON, OutputYAML:
		views := make([]fileView, 0, len(results))
		for _, res := range results {
			fv := fileView{Path: res.Path}
			if res.Error != nil {
				fv.Error = res.Error.Error()
			} else {
				fv.Profile = r.view(res.Profile)
			}
			views = append(views, fv)
		}
		if r.format == OutputYAML {
			return writeYAML(w, views)
		}
		return writeJSON(w, views)
	case OutputTable:
		for i, res := range results {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if res.Error != nil {
				if _, err := fmt.Fprintf(w, "== %s ==\nerror: %v\n", res.Path, res.Error); err != nil {
					return err
				}
				continue
			}
			if err := r.writeTable(w, res.Profile); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", r.format)
	}
}

func (r *Renderer) writeTable(w io.Writer, profile *model.Profile) error {
	if _, err := fmt.Fprintf(w, "== %s (%s, %d rows) ==\n", profile.Source, profile.Format, profile.Rows); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if r.explain {
		_, _ = fmt.Fprintln(tw, "COLUMN\tTYPE\tRULE\tSAMPLE\tDATE\tSTRING")
	} else {
		_, _ = fmt.Fprintln(tw, "COLUMN\tTYPE")
	}

	for _, e := range profile.Types.Entries() {
		if !r.explain {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.Label)
			continue
		}
		d := model.Decision{Label: e.Label}
		if e.Decision != nil {
			d = *e.Decision
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			e.Name, e.Label, d.Rule, d.SampleSize, d.Tally.Date, d.Tally.String)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	return enc.Close()
}
