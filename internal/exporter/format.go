package exporter

import (
	"fmt"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatNullable renders nil as an empty cell so "no data" never reads as 0.
func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// FormatScore renders a mean for terminal output, "-" for no data.
func FormatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v)
}
