package domain

import "time"

// FileKind separates competency result files from grade files.
type FileKind string

const (
	FileKindResult FileKind = "result"
	FileKindGrade  FileKind = "grade"
)

// SourceFile is one ingested spreadsheet held in the session dataset.
// FromFilename counts rows whose department was taken from the file name.
type SourceFile struct {
	ID           string    `json:"id" validate:"required,uuid"`
	Name         string    `json:"name" validate:"required"`
	Kind         FileKind  `json:"kind" validate:"required,oneof=result grade"`
	RowCount     int       `json:"row_count"`
	Unresolved   int       `json:"unresolved_departments"`
	FromFilename int       `json:"filename_departments"`
	UploadedAt   time.Time `json:"uploaded_at"`

	Records []Record `json:"-"`
	Rows    []Row    `json:"-"`
}

// Overview summarizes the dataset for the dashboard header.
type Overview struct {
	ResultRows     int      `json:"result_rows"`
	GradeRows      int      `json:"grade_rows"`
	POColumns      int      `json:"po_columns"`
	TPOColumns     int      `json:"tpo_columns"`
	Departments    []string `json:"departments"`
	Semesters      []string `json:"semesters"`
	Students       int      `json:"students"`
	YearOptions    []string `json:"year_options"`
	UnresolvedRows int      `json:"unresolved_rows"`
	LatestSemester string   `json:"latest_semester,omitempty"`
	Version        uint64   `json:"dataset_version"`
}

// DatasetEvent is pushed to websocket clients whenever the file set changes.
type DatasetEvent struct {
	Type      string    `json:"type"`
	FileID    string    `json:"file_id,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
	Kind      FileKind  `json:"kind,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Dataset event types.
const (
	EventFileAdded   = "dataset:file_added"
	EventFileRemoved = "dataset:file_removed"
	EventReloaded    = "dataset:reloaded"
)
