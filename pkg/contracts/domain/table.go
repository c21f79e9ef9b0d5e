package domain

import "encoding/json"

// Pivot names the dimension an aggregate table is keyed by.
type Pivot string

const (
	PivotMetric   Pivot = "metric"
	PivotSemester Pivot = "semester"
	PivotAxis     Pivot = "axis"
)

// Point is one row of an aggregate table: the pivot label plus one value per series.
// A nil value means "no data" and must not be rendered as zero.
type Point struct {
	Pivot  Pivot
	Label  string
	Values map[string]*float64
}

// Value returns the series value, nil when absent.
func (p Point) Value(series string) *float64 {
	return p.Values[series]
}

// MarshalJSON flattens the point into {"<pivot>": label, "<series>": value}.
func (p Point) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Values)+1)
	for k, v := range p.Values {
		out[k] = v
	}
	out[string(p.Pivot)] = p.Label
	return json.Marshal(out)
}

// Table is an aggregate result handed to the charting layer.
type Table struct {
	Pivot  Pivot    `json:"pivot"`
	Series []string `json:"series"`
	Rows   []Point  `json:"rows"`
}

// NewTable returns an empty table for the pivot and series.
func NewTable(pivot Pivot, series []string) Table {
	return Table{Pivot: pivot, Series: series, Rows: []Point{}}
}

// Append adds a row with the given label and values.
func (t *Table) Append(label string, values map[string]*float64) {
	t.Rows = append(t.Rows, Point{Pivot: t.Pivot, Label: label, Values: values})
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}
