package analytics

import (
	"strings"

	"tpodash/internal/dataprocessing"
	"tpodash/pkg/contracts/domain"
)

// Bucket classifies a student's mean GPA.
type Bucket string

const (
	BucketUnresolved Bucket = "unresolved"
	BucketLow        Bucket = "low"
	BucketMid        Bucket = "mid"
	BucketHigh       Bucket = "high"
)

// Buckets lists the selectable buckets in display order.
var Buckets = []Bucket{BucketLow, BucketMid, BucketHigh}

var bucketLabels = map[Bucket]string{
	BucketUnresolved: "미확인",
	BucketLow:        "2점대 이하",
	BucketMid:        "3점대",
	BucketHigh:       "4점대+",
}

// Label returns the dashboard display label.
func (b Bucket) Label() string {
	return bucketLabels[b]
}

// ParseBucket accepts either the bucket key or its display label.
func ParseBucket(s string) (Bucket, bool) {
	s = strings.TrimSpace(s)
	for b, label := range bucketLabels {
		if string(b) == s || label == s {
			return b, true
		}
	}
	return "", false
}

// BucketFor places a GPA into [0,3), [3,4) or [4,∞); nil is unresolved.
func BucketFor(gpa *float64) Bucket {
	switch {
	case gpa == nil:
		return BucketUnresolved
	case *gpa < 3:
		return BucketLow
	case *gpa < 4:
		return BucketMid
	default:
		return BucketHigh
	}
}

// GPAIndex maps student ids to their mean GPA, nil when none of their grade
// rows carried a usable value.
type GPAIndex map[string]*float64

// Lookup returns the mean GPA and whether the student appears in grade data.
func (g GPAIndex) Lookup(studentID string) (*float64, bool) {
	v, ok := g[studentID]
	return v, ok
}

// Bucket classifies a student; students without grade rows are unresolved.
func (g GPAIndex) Bucket(studentID string) Bucket {
	return BucketFor(g[studentID])
}

// BuildGPAIndex groups grade rows by student id and averages their GPA values.
// The id and GPA columns are located once, on the first row, through the header
// alias table.
func BuildGPAIndex(gradeRows []domain.Row) GPAIndex {
	idx := make(GPAIndex)
	if len(gradeRows) == 0 {
		return idx
	}

	keys := gradeRows[0].Keys()
	gpaKey, hasGPA := dataprocessing.FindField(keys, domain.FieldGPA)
	idKey, ok := dataprocessing.FindField(keys, domain.FieldStudentID)
	if !ok {
		idKey = domain.FieldStudentID
	}

	values := make(map[string][]*float64)
	var order []string
	for _, r := range gradeRows {
		sid := strings.TrimSpace(dataprocessing.Stringify(r[idKey]))
		if sid == "" {
			sid = strings.TrimSpace(dataprocessing.Stringify(r["학번"]))
		}
		if sid == "" {
			continue
		}
		if _, seen := values[sid]; !seen {
			values[sid] = nil
			order = append(order, sid)
		}
		if !hasGPA {
			continue
		}
		if g := dataprocessing.ToNumber(r[gpaKey]); g != nil {
			values[sid] = append(values[sid], g)
		}
	}
	for _, sid := range order {
		idx[sid] = Mean(values[sid])
	}
	return idx
}
