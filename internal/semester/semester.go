// Package semester orders free-form semester labels such as "2023-1" or
// "2022_2" chronologically.
package semester

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var separators = regexp.MustCompile(`[-_. ]`)

// Parse splits a label into (year, term). Missing or non-numeric tokens are 0,
// so unparseable labels sort first.
func Parse(label string) (year, term float64) {
	tokens := separators.Split(label, -1)
	if len(tokens) > 0 {
		year = number(tokens[0])
	}
	if len(tokens) > 1 {
		term = number(tokens[1])
	}
	return year, term
}

func number(tok string) float64 {
	if tok == "" {
		return 0
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}

// Compare returns a negative number when a precedes b, positive when it follows
// and 0 when both parse to the same (year, term).
func Compare(a, b string) int {
	ya, ta := Parse(a)
	yb, tb := Parse(b)
	switch {
	case ya < yb:
		return -1
	case ya > yb:
		return 1
	case ta < tb:
		return -1
	case ta > tb:
		return 1
	}
	return 0
}

// Sort orders labels in place; equal labels keep their relative order.
func Sort(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool { return Compare(labels[i], labels[j]) < 0 })
}

// Unique returns the distinct non-blank labels in chronological order.
func Unique(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0)
	for _, l := range labels {
		if strings.TrimSpace(l) == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	Sort(out)
	return out
}

// Latest returns the chronologically last label, "" for an empty list.
func Latest(labels []string) string {
	sorted := Unique(labels)
	if len(sorted) == 0 {
		return ""
	}
	return sorted[len(sorted)-1]
}
