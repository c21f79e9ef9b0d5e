package dataprocessing

import (
	"strings"

	"tpodash/internal/department"
	"tpodash/pkg/contracts/domain"
)

// Raw keys consulted when the header normalizer left the canonical field empty.
var (
	studentIDFallbacks = []string{domain.FieldStudentID, "학번", "STUDENT ID", "ID"}
	semesterFallbacks  = []string{domain.FieldSemester, "학기", "SEMESTER", "SNAPSHOT", "TERM"}
	deptFallbacks      = []string{domain.FieldDept, "학과", "전공", "전공명", "DEPARTMENT", "MAJOR", "학부"}
)

// ProcessResult is the canonical record set built from one source file.
type ProcessResult struct {
	Records    []domain.Record
	Shape      Shape
	Unresolved int
	// FromFilename counts rows whose department came from the file name.
	FromFilename int
}

// RecordProcessor turns parsed rows into canonical records: header mapping,
// long-to-wide pivot, department resolution and numeric coercion.
type RecordProcessor struct {
	resolve func(raw, filename string) department.Resolution
}

// NewRecordProcessor creates a processor using the department rule table.
func NewRecordProcessor() *RecordProcessor {
	return &RecordProcessor{resolve: department.Resolve}
}

// Process normalizes rows that came from the file called filename. The file name
// is the department hint for rows whose label cannot be resolved.
func (p *RecordProcessor) Process(rows []domain.Row, filename string) ProcessResult {
	result := ProcessResult{Shape: DetectShape(rows), Records: make([]domain.Record, 0, len(rows))}
	for _, row := range NormalizeRows(rows) {
		rec, source := p.buildRecord(row, filename)
		switch source {
		case department.SourceNone:
			result.Unresolved++
		case department.SourceFilename:
			result.FromFilename++
		}
		result.Records = append(result.Records, rec)
	}
	return result
}

func (p *RecordProcessor) buildRecord(row domain.Row, filename string) (domain.Record, department.Source) {
	rec := domain.Record{
		StudentID: strings.TrimSpace(Stringify(firstPresent(row, studentIDFallbacks))),
		Name:      strings.TrimSpace(Stringify(row[domain.FieldName])),
		Semester:  strings.TrimSpace(Stringify(firstPresent(row, semesterFallbacks))),
		GPA:       ToNumber(row[domain.FieldGPA]),
		Metrics:   make(map[string]*float64),
	}

	res := p.resolve(Stringify(firstPresent(row, deptFallbacks)), filename)
	rec.Dept = res.Label
	rec.UnknownMajor = res.Unresolved

	consumed := map[string]bool{
		domain.FieldStudentID: true,
		domain.FieldName:      true,
		domain.FieldSemester:  true,
		domain.FieldGPA:       true,
		domain.FieldDept:      true,
	}
	for k, v := range row {
		if consumed[k] {
			continue
		}
		if col, ok := ParseMetric(k); ok {
			rec.Metrics[col.Name()] = ToNumber(v)
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]any)
		}
		rec.Extra[k] = v
	}
	return rec, res.Source
}

// firstPresent returns the first non-blank value among keys.
func firstPresent(row domain.Row, keys []string) any {
	for _, k := range keys {
		if v, ok := row[k]; ok && !isBlank(v) {
			return v
		}
	}
	return nil
}
