package dataprocessing

import (
	"sort"

	"tpodash/pkg/contracts/domain"
)

// ExtractMetrics scans the key union of records and returns the PO and TPO
// columns that occur, deduplicated and ordered by numeric index (PO_2 before PO_10).
func ExtractMetrics(records []domain.Record) (po, tpo []domain.MetricColumn) {
	seen := make(map[string]bool)
	for _, r := range records {
		for _, k := range r.Keys() {
			col, ok := ParseMetric(k)
			if !ok || seen[col.Name()] {
				continue
			}
			seen[col.Name()] = true
			if col.Family == domain.FamilyTPO {
				tpo = append(tpo, col)
			} else {
				po = append(po, col)
			}
		}
	}
	sortColumns(po)
	sortColumns(tpo)
	return po, tpo
}

// ExtractMetricsFromKeys applies the same rules to a bare key list.
func ExtractMetricsFromKeys(keys []string) (po, tpo []domain.MetricColumn) {
	rec := domain.Record{Extra: make(map[string]any, len(keys))}
	for _, k := range keys {
		rec.Extra[k] = nil
	}
	return ExtractMetrics([]domain.Record{rec})
}

func sortColumns(cols []domain.MetricColumn) {
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Index < cols[j].Index })
}
