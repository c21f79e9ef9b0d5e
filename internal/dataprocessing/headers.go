package dataprocessing

import (
	"regexp"
	"strings"

	"tpodash/pkg/contracts/domain"
)

// FieldAliases lists the header spellings that resolve to one canonical field.
type FieldAliases struct {
	Field   string
	Aliases []string
}

// HeaderAliases is evaluated in order; the first field whose alias equals the
// normalized header wins. Matching is exact, never substring.
var HeaderAliases = []FieldAliases{
	{Field: domain.FieldStudentID, Aliases: []string{"학번", "STUDENT ID", "STUDENT_ID", "SID", "ID", "STUDENTID"}},
	{Field: domain.FieldName, Aliases: []string{"이름", "성명", "NAME"}},
	{Field: domain.FieldDept, Aliases: []string{"학과", "전공", "전공명", "학부전공", "학부/전공", "학부", "DEPARTMENT", "MAJOR", "DEPT"}},
	{Field: domain.FieldSemester, Aliases: []string{"학기", "SEMESTER", "TERM", "스냅샷", "SNAPSHOT"}},
	{Field: domain.FieldGPA, Aliases: []string{"GPA", "평점", "평균평점", "학기평점", "전체평점", "누적평점"}},
}

var keySeparators = regexp.MustCompile(`[\s_\-/]+`)

// NormalizeKey trims, collapses whitespace/underscore/hyphen/slash runs into a
// single space and uppercases.
func NormalizeKey(key string) string {
	return strings.ToUpper(keySeparators.ReplaceAllString(strings.TrimSpace(key), " "))
}

// aliasIndex maps normalized aliases to fields, preserving table order on collisions.
var aliasIndex = buildAliasIndex(HeaderAliases)

func buildAliasIndex(table []FieldAliases) map[string]string {
	idx := make(map[string]string)
	for _, fa := range table {
		for _, a := range fa.Aliases {
			n := NormalizeKey(a)
			if _, taken := idx[n]; !taken {
				idx[n] = fa.Field
			}
		}
	}
	return idx
}

// LookupAlias returns the canonical field for a raw header when the alias table
// knows it.
func LookupAlias(key string) (string, bool) {
	field, ok := aliasIndex[NormalizeKey(key)]
	return field, ok
}

// MapHeader maps a raw column key to its canonical name. Unknown keys come back
// unchanged.
func MapHeader(key string) string {
	if field, ok := LookupAlias(key); ok {
		return field
	}
	if col, ok := ParseMetric(NormalizeKey(key)); ok {
		return col.Name()
	}
	return key
}

// FindField returns the first key (in the given order) whose header resolves to
// field through the alias table.
func FindField(keys []string, field string) (string, bool) {
	for _, k := range keys {
		if f, ok := LookupAlias(k); ok && f == field {
			return k, true
		}
	}
	return "", false
}
