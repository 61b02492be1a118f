package model

// Column is one named attribute's ordered values across all rows.
//
// Values hold native Go values: integers, floats, bools, time.Time, text
// (string, []byte, fmt.Stringer) or nil for a missing cell.
type Column struct {
	Name   string
	Values []any
}

// Len returns the number of values in the column
func (c Column) Len() int {
	return len(c.Values)
}

// Dataset is the in-memory columnar view handed to the inference engine
type Dataset struct {
	Source  string   // Where the data was loaded from
	Format  string   // csv, parquet, arrow
	Rows    int      // Row count shared by every column
	Columns []Column // Columns in source order
}

// Names returns the column names in order
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}
