package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"

	"tpodash/pkg/contracts/domain"
)

var (
	poPattern      = regexp.MustCompile(`(?i)^PO\s*0*(\d+)$`)
	tpoPattern     = regexp.MustCompile(`(?i)^TPO\s*0*(\d+)$`)
	metricPunct    = strings.NewReplacer(".", " ", "_", " ", "-", " ")
	nonDigit       = regexp.MustCompile(`\D`)
	metricNameTrim = regexp.MustCompile(`[\s_\-]+`)
	compactPO      = regexp.MustCompile(`^PO\d+$`)
	compactTPO     = regexp.MustCompile(`^TPO\d+$`)
)

// IsPO reports whether k names a PO indicator column (PO1, po_02, "PO 3").
func IsPO(k string) bool {
	return poPattern.MatchString(metricPunct.Replace(k))
}

// IsTPO reports whether k names a TPO indicator column. Checked as its own
// pattern so "TPO3" is never read as PO with a stray T.
func IsTPO(k string) bool {
	return tpoPattern.MatchString(metricPunct.Replace(k))
}

// MetricIndex strips every non-digit and parses the rest, so "PO_03" is 3.
// It fails when no digits remain or the number does not fit an int.
func MetricIndex(k string) (int, bool) {
	n, err := strconv.Atoi(nonDigit.ReplaceAllString(k, ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

func metricColumn(family domain.MetricFamily, k string) (domain.MetricColumn, bool) {
	n, ok := MetricIndex(k)
	if !ok {
		return domain.MetricColumn{}, false
	}
	return domain.MetricColumn{Family: family, Index: n}, true
}

// ParseMetric recognizes a PO or TPO header and returns its column descriptor.
func ParseMetric(k string) (domain.MetricColumn, bool) {
	switch {
	case IsTPO(k):
		return metricColumn(domain.FamilyTPO, k)
	case IsPO(k):
		return metricColumn(domain.FamilyPO, k)
	}
	return domain.MetricColumn{}, false
}

// parseMetricName reads the metric cell of a long-shaped row ("po-1", "TPO 12").
func parseMetricName(v any) (domain.MetricColumn, bool) {
	m := metricNameTrim.ReplaceAllString(strings.ToUpper(Stringify(v)), "")
	switch {
	case compactTPO.MatchString(m):
		return metricColumn(domain.FamilyTPO, m)
	case compactPO.MatchString(m):
		return metricColumn(domain.FamilyPO, m)
	}
	return domain.MetricColumn{}, false
}
