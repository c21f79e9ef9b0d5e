// Package department maps free-text department and major labels onto the small
// fixed set of canonical department names used for grouping.
//
// Labels arrive in Korean and English, abbreviated or spelled out, and with
// inconsistent spacing. Aggregation groups by exact label equality, so every
// variant must collapse onto one canonical label or onto the unresolved
// sentinel "".
package department

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Canonical department labels.
const (
	ComputerEngineering = "컴퓨터공학전공"
	MediaDesign         = "미디어디자인공학전공"
	ElectricalPower     = "전력응용시스템공학"

	// Unresolved is the sentinel for labels no rule recognizes.
	Unresolved = ""
)

// Source records where a resolved label came from.
type Source string

const (
	SourceColumn   Source = "column"
	SourceFilename Source = "filename"
	SourceNone     Source = "none"
)

// Rule pairs a canonical label with the patterns that recognize it in a label
// cell and in an uploaded file name.
type Rule struct {
	Label    string
	Text     *regexp.Regexp
	Filename *regexp.Regexp
}

// Rules are evaluated in order; the first match wins.
var Rules = []Rule{
	{
		Label:    ComputerEngineering,
		Text:     regexp.MustCompile(`(^|[_\s.-])ce([_\s.-]|$)|computer|컴퓨터|전산`),
		Filename: regexp.MustCompile(`(^|[_-])ce([_-]|\.|$)|computer|컴퓨터|전산`),
	},
	{
		Label:    MediaDesign,
		Text:     regexp.MustCompile(`mediadesign|md_|design|미디어`),
		Filename: regexp.MustCompile(`mediadesign|md_|design|디자인`),
	},
	{
		Label:    ElectricalPower,
		Text:     regexp.MustCompile(`(^|[_\s.-])ee([_\s.-]|$)|energy|electrical|power|전력응용시스템|전력|에너지|전기`),
		Filename: regexp.MustCompile(`(^|[_-])ee([_-]|\.|$)|energy|electrical|power|전력응용시스템|전력|에너지|전기`),
	},
}

// SingleMajorMarker flags rows that say "single major" instead of naming one.
var SingleMajorMarker = regexp.MustCompile(`단일\s*전공`)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	middleDots    = strings.NewReplacer("∙", "·", "•", "·")
)

// Labels returns the canonical labels in rule priority order.
func Labels() []string {
	out := make([]string, len(Rules))
	for i, r := range Rules {
		out[i] = r.Label
	}
	return out
}

// Normalize prepares a raw label for rule matching: trim, NFC, collapse
// whitespace, unify middle dots, lowercase.
func Normalize(raw string) string {
	s := norm.NFC.String(strings.TrimSpace(raw))
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = middleDots.Replace(s)
	return strings.ToLower(s)
}

// Canonicalize maps a raw department string to a canonical label, or "" when no
// rule matches or the value is a single-major marker.
func Canonicalize(raw string) string {
	s := Normalize(raw)
	if s == "" || SingleMajorMarker.MatchString(s) {
		return Unresolved
	}
	for _, r := range Rules {
		if r.Text.MatchString(s) {
			return r.Label
		}
	}
	return Unresolved
}

// InferFromFilename guesses the department from an uploaded file name such as
// "2023_CE_results.xlsx".
func InferFromFilename(name string) string {
	n := strings.ToLower(norm.NFC.String(name))
	if n == "" {
		return Unresolved
	}
	for _, r := range Rules {
		if r.Filename.MatchString(n) {
			return r.Label
		}
	}
	return Unresolved
}

// Resolution is the outcome of resolving one record's department.
type Resolution struct {
	Label      string
	Source     Source
	Unresolved bool
}

// Resolve canonicalizes the raw label and falls back to the file name.
func Resolve(raw, filename string) Resolution {
	if label := Canonicalize(raw); label != Unresolved {
		return Resolution{Label: label, Source: SourceColumn}
	}
	if label := InferFromFilename(filename); label != Unresolved {
		return Resolution{Label: label, Source: SourceFilename}
	}
	return Resolution{Label: Unresolved, Source: SourceNone, Unresolved: true}
}

// IsCanonical reports whether label is one of the canonical department labels.
func IsCanonical(label string) bool {
	for _, r := range Rules {
		if r.Label == label {
			return true
		}
	}
	return false
}
