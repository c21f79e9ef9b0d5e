package services

import (
	"io"

	"tpodash/internal/analytics"
	"tpodash/internal/chart"
	"tpodash/pkg/contracts/domain"
)

// Upload is one file handed to the service. Open is called once, from a worker
// goroutine, and the reader is closed after parsing.
type Upload struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileList is the per-kind file listing shown in the upload panels.
type FileList struct {
	Results []domain.SourceFile `json:"results"`
	Grades  []domain.SourceFile `json:"grades"`
}

// DepartmentQuery selects the department view. Empty Depts means the default
// selection.
type DepartmentQuery struct {
	Semester string
	Depts    []string
}

// DepartmentView is the department comparison payload.
type DepartmentView struct {
	Departments []string       `json:"departments"`
	Selected    []string       `json:"selected"`
	Semesters   []string       `json:"semesters"`
	Semester    string         `json:"semester"`
	Colors      []chart.Series `json:"colors"`
	Charts      []chart.Chart  `json:"charts"`
}

// StudentQuery selects the student view. Filters apply in the order department,
// GPA bucket, entry year, then id search.
type StudentQuery struct {
	Depts    []string
	Buckets  []analytics.Bucket
	Years    []string
	Search   string
	Students []string
	Semester string
}

// StudentOption is one entry of the student picker.
type StudentOption struct {
	ID     string           `json:"id"`
	GPA    *float64         `json:"gpa"`
	Bucket analytics.Bucket `json:"bucket"`
}

// StudentView is the student comparison payload.
type StudentView struct {
	Students       []StudentOption `json:"students"`
	YearOptions    []string        `json:"year_options"`
	Selected       []string        `json:"selected"`
	ActiveSemester string          `json:"active_semester"`
	GradesLoaded   bool            `json:"grades_loaded"`
	Colors         []chart.Series  `json:"colors"`
	Charts         []chart.Chart   `json:"charts"`
}

// ExportQuery carries the selections an exported table is computed with.
type ExportQuery struct {
	Semester string
	Depts    []string
	Students []string
}

// Exportable table names.
const (
	TableDepartmentsTPO   = "departments-tpo"
	TableDepartmentsPO    = "departments-po"
	TableRadarTPO         = "radar-tpo"
	TableRadarPO          = "radar-po"
	TableGrowthTPO        = "growth-tpo"
	TableGrowthPO         = "growth-po"
	TableStudentsTPO      = "students-tpo"
	TableStudentsPO       = "students-po"
	TableStudentGrowthTPO = "student-growth-tpo"
	TableStudentGrowthPO  = "student-growth-po"
)

// ExportTables lists every name accepted by ExportTable.
var ExportTables = []string{
	TableDepartmentsTPO, TableDepartmentsPO,
	TableRadarTPO, TableRadarPO,
	TableGrowthTPO, TableGrowthPO,
	TableStudentsTPO, TableStudentsPO,
	TableStudentGrowthTPO, TableStudentGrowthPO,
}
