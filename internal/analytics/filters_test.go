package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tpodash/internal/department"
	"tpodash/pkg/contracts/domain"
)

func TestDepartments(t *testing.T) {
	records := []domain.Record{
		{Dept: department.MediaDesign},
		{Dept: department.Unresolved},
		{Dept: "단일전공"},
		{Dept: department.ComputerEngineering},
		{Dept: department.MediaDesign},
	}
	assert.Equal(t, []string{department.MediaDesign, department.ComputerEngineering}, Departments(records))
	assert.Empty(t, Departments(nil))
}

func TestDefaultDepartments(t *testing.T) {
	all := []string{"a", "b", "c", "d"}
	got := DefaultDepartments(all)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	got[0] = "z"
	assert.Equal(t, "a", all[0])

	assert.Equal(t, []string{"a"}, DefaultDepartments([]string{"a"}))
}

func TestStudentsAndYears(t *testing.T) {
	ids := Students(sampleRecords())
	assert.Equal(t, []string{"20210001", "20210002", "20220003", "20230004"}, ids)
	assert.Equal(t, []string{"2021", "2022", "2023"}, YearOptions(ids))
	assert.Empty(t, YearOptions([]string{"abc", "12", "x2021"}))
}

func TestFilterStudents(t *testing.T) {
	records := sampleRecords()
	ids := Students(records)
	gpa := GPAIndex{
		"20210001": domain.Float(3.45),
		"20210002": domain.Float(2.95),
		"20220003": domain.Float(4.30),
	}

	assert.Equal(t, ids, FilterStudents(records, ids, gpa, StudentFilter{}))

	got := FilterStudents(records, ids, gpa, StudentFilter{Depts: []string{department.ComputerEngineering}})
	assert.Equal(t, []string{"20210001", "20210002"}, got)

	got = FilterStudents(records, ids, gpa, StudentFilter{Buckets: []Bucket{BucketHigh, BucketUnresolved}})
	assert.Equal(t, []string{"20220003", "20230004"}, got)

	got = FilterStudents(records, ids, gpa, StudentFilter{
		Depts:   []string{department.ComputerEngineering},
		Buckets: []Bucket{BucketMid},
		Years:   []string{"2021"},
	})
	assert.Equal(t, []string{"20210001"}, got)

	got = FilterStudents(records, ids, gpa, StudentFilter{Years: []string{"2024"}})
	assert.Empty(t, got)
}

func TestSearchStudents(t *testing.T) {
	ids := []string{"20210001", "20210002", "20220003"}
	assert.Equal(t, ids, SearchStudents(ids, "  "))
	assert.Equal(t, []string{"20220003"}, SearchStudents(ids, "2022"))
	assert.Equal(t, []string{"20210002"}, SearchStudents(ids, "002"))
	assert.Empty(t, SearchStudents(ids, "xyz"))
}
