package model

// Label is the semantic type inferred for a column
type Label string

const (
	LabelBool     Label = "bool"      // Two distinct boolean literals
	LabelInt      Label = "int"       // Every value is a native integer
	LabelFloat    Label = "float"     // Every value is a native float
	LabelDate     Label = "date"      // Date-parseable share cleared the threshold
	LabelString   Label = "string"    // Non-date share cleared the threshold
	LabelNotFound Label = "not found" // No label cleared the threshold
)

func (l Label) String() string {
	return string(l)
}

// Tally counts classified values per label for one resolution pass.
// Every category is always present, a zero count is meaningful.
type Tally struct {
	Bool   int `json:"bool" yaml:"bool"`
	Int    int `json:"int" yaml:"int"`
	Float  int `json:"float" yaml:"float"`
	Date   int `json:"date" yaml:"date"`
	String int `json:"string" yaml:"string"`
}

// Total returns the number of values counted
func (t Tally) Total() int {
	return t.Bool + t.Int + t.Float + t.Date + t.String
}
