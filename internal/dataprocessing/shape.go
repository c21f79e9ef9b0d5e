package dataprocessing

import (
	"strings"

	"tpodash/pkg/contracts/domain"
)

// Shape is the layout of a row batch.
type Shape int

const (
	// ShapeWide has one row per student with one column per metric.
	ShapeWide Shape = iota
	// ShapeLong has one row per (student, metric, value) triple.
	ShapeLong
)

func (s Shape) String() string {
	if s == ShapeLong {
		return "long"
	}
	return "wide"
}

const (
	metricHeader = "METRIC"
	valueHeader  = "VALUE"
)

// DetectShape inspects the key set of the first row only. A batch is assumed to be
// uniform; mixed batches are parsed with the shape of their first row.
func DetectShape(rows []domain.Row) Shape {
	if len(rows) == 0 {
		return ShapeWide
	}
	_, hasMetric := findNormalizedKey(rows[0], metricHeader)
	_, hasValue := findNormalizedKey(rows[0], valueHeader)
	if hasMetric && hasValue {
		return ShapeLong
	}
	return ShapeWide
}

func findNormalizedKey(row domain.Row, want string) (string, bool) {
	for _, k := range row.Keys() {
		if NormalizeKey(k) == want {
			return k, true
		}
	}
	return "", false
}

// NormalizeRows returns canonically keyed rows, pivoting long input to wide.
// Values are not coerced except for metric values produced by the pivot.
func NormalizeRows(rows []domain.Row) []domain.Row {
	if DetectShape(rows) == ShapeLong {
		return pivotLong(rows)
	}
	out := make([]domain.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapRowHeaders(row))
	}
	return out
}

// mapRowHeaders renames every key through MapHeader. Keys are visited in sorted
// order; when two raw keys land on the same canonical key a later one only
// replaces a blank earlier value.
func mapRowHeaders(row domain.Row) domain.Row {
	mapped := make(domain.Row, len(row))
	for _, k := range row.Keys() {
		canon := MapHeader(k)
		if prev, exists := mapped[canon]; exists && !isBlank(prev) {
			continue
		}
		mapped[canon] = row[k]
	}
	return mapped
}

func pivotLong(rows []domain.Row) []domain.Row {
	var metaKeys []string
	for _, k := range rows[0].Keys() {
		n := NormalizeKey(k)
		if n == metricHeader || n == valueHeader {
			continue
		}
		metaKeys = append(metaKeys, k)
	}

	order := make([]string, 0)
	byKey := make(map[string]domain.Row)

	for _, r := range rows {
		parts := make([]string, len(metaKeys))
		for i, mk := range metaKeys {
			parts[i] = MapHeader(mk) + "::" + Stringify(r[mk])
		}
		key := strings.Join(parts, "|")

		cur, ok := byKey[key]
		if !ok {
			cur = make(domain.Row, len(metaKeys))
			for _, mk := range metaKeys {
				cur[MapHeader(mk)] = r[mk]
			}
			byKey[key] = cur
			order = append(order, key)
		}

		metricKey, _ := findNormalizedKey(r, metricHeader)
		valueKey, _ := findNormalizedKey(r, valueHeader)
		if col, ok := parseMetricName(r[metricKey]); ok {
			if v := ToNumber(r[valueKey]); v != nil {
				cur[col.Name()] = *v
			} else {
				cur[col.Name()] = nil
			}
		}
	}

	out := make([]domain.Row, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}
