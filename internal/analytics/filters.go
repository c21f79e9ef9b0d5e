package analytics

import (
	"regexp"
	"strings"

	"tpodash/internal/department"
	"tpodash/pkg/contracts/domain"
)

var yearPrefix = regexp.MustCompile(`^\d{4}$`)

// Departments returns the distinct resolved departments in order of first
// appearance. The unresolved sentinel and single-major markers are never a
// department.
func Departments(records []domain.Record) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range records {
		d := strings.TrimSpace(r.Dept)
		if d == "" || department.SingleMajorMarker.MatchString(d) || seen[r.Dept] {
			continue
		}
		seen[r.Dept] = true
		out = append(out, r.Dept)
	}
	return out
}

// DefaultDepartments picks the initial department selection: the first three.
func DefaultDepartments(all []string) []string {
	if len(all) > 3 {
		return append([]string(nil), all[:3]...)
	}
	return append([]string(nil), all...)
}

// Students returns the distinct non-blank student ids in order of first appearance.
func Students(records []domain.Record) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range records {
		if strings.TrimSpace(r.StudentID) == "" || seen[r.StudentID] {
			continue
		}
		seen[r.StudentID] = true
		out = append(out, r.StudentID)
	}
	return out
}

// YearOptions returns the distinct four-digit id prefixes (entry years).
func YearOptions(students []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, sid := range students {
		y := idYear(sid)
		if y == "" || seen[y] {
			continue
		}
		seen[y] = true
		out = append(out, y)
	}
	return out
}

func idYear(sid string) string {
	r := []rune(sid)
	if len(r) < 4 {
		return ""
	}
	y := string(r[:4])
	if !yearPrefix.MatchString(y) {
		return ""
	}
	return y
}

// StudentFilter narrows the student list. Empty sets do not filter.
type StudentFilter struct {
	Depts   []string
	Buckets []Bucket
	Years   []string
}

// FilterStudents applies the department, GPA bucket and entry year filters in
// that order and keeps the order of ids.
func FilterStudents(records []domain.Record, ids []string, gpa GPAIndex, f StudentFilter) []string {
	out := append([]string(nil), ids...)

	if len(f.Depts) > 0 {
		allowed := toSet(f.Depts)
		inDept := make(map[string]bool)
		for _, r := range records {
			if allowed[r.Dept] {
				inDept[r.StudentID] = true
			}
		}
		out = keep(out, func(sid string) bool { return inDept[sid] })
	}

	if len(f.Buckets) > 0 {
		allowed := make(map[Bucket]bool, len(f.Buckets))
		for _, b := range f.Buckets {
			allowed[b] = true
		}
		out = keep(out, func(sid string) bool { return allowed[gpa.Bucket(sid)] })
	}

	if len(f.Years) > 0 {
		allowed := toSet(f.Years)
		out = keep(out, func(sid string) bool { return allowed[idYear(sid)] })
	}
	return out
}

// SearchStudents keeps the ids containing query; a blank query keeps all.
func SearchStudents(ids []string, query string) []string {
	q := strings.TrimSpace(query)
	if q == "" {
		return ids
	}
	return keep(ids, func(sid string) bool { return strings.Contains(sid, q) })
}

func keep(ids []string, pred func(string) bool) []string {
	out := make([]string, 0, len(ids))
	for _, sid := range ids {
		if pred(sid) {
			out = append(out, sid)
		}
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
