package domain

import (
	"encoding/json"
	"sort"
)

// Canonical field names shared by the header alias table and the record JSON form.
const (
	FieldStudentID    = "studentId"
	FieldName         = "name"
	FieldDept         = "dept"
	FieldSemester     = "semester"
	FieldGPA          = "gpa"
	FieldUnknownMajor = "__unknown_major__"
)

// Row is one spreadsheet row as delivered by a file parser. Keys are whatever the
// source header said; values are string, float64, int, bool or nil.
type Row map[string]any

// Keys returns the row keys in sorted order.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Record is a row reshaped onto the canonical field vocabulary.
type Record struct {
	StudentID    string
	Name         string
	Dept         string
	Semester     string
	GPA          *float64
	Metrics      map[string]*float64
	UnknownMajor bool
	Extra        map[string]any
}

// Metric returns the coerced value of a PO_n / TPO_n column, nil when absent.
func (r Record) Metric(name string) *float64 {
	if r.Metrics == nil {
		return nil
	}
	return r.Metrics[name]
}

// Keys returns every key the record carries in its flat form.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r.Metrics)+len(r.Extra))
	for k := range r.Metrics {
		keys = append(keys, k)
	}
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON writes the flat canonical mapping consumed by dashboards.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Metrics)+len(r.Extra)+6)
	for k, v := range r.Extra {
		out[k] = v
	}
	for k, v := range r.Metrics {
		out[k] = v
	}
	out[FieldStudentID] = r.StudentID
	if r.Name != "" {
		out[FieldName] = r.Name
	}
	out[FieldDept] = r.Dept
	out[FieldSemester] = r.Semester
	if r.GPA != nil {
		out[FieldGPA] = *r.GPA
	}
	if r.UnknownMajor {
		out[FieldUnknownMajor] = true
	}
	return json.Marshal(out)
}

// Float returns a pointer to v. Handy for building nullable metric values.
func Float(v float64) *float64 {
	return &v
}
