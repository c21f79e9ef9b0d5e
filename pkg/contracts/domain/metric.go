package domain

import "fmt"

// MetricFamily distinguishes the two indexed competency-score families.
type MetricFamily string

const (
	FamilyPO  MetricFamily = "PO"
	FamilyTPO MetricFamily = "TPO"
)

// MetricColumn describes one canonical indicator column such as PO_3.
type MetricColumn struct {
	Family MetricFamily `json:"family"`
	Index  int          `json:"index"`
}

// Name returns the canonical column key, e.g. "TPO_4".
func (c MetricColumn) Name() string {
	return fmt.Sprintf("%s_%d", c.Family, c.Index)
}

// Label returns the display label without separator, e.g. "TPO4".
func (c MetricColumn) Label() string {
	return fmt.Sprintf("%s%d", c.Family, c.Index)
}

// ColumnNames maps columns to their canonical keys.
func ColumnNames(cols []MetricColumn) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name()
	}
	return names
}
