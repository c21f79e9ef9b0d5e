package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ResultsCSV is a wide result export with Korean headers for two departments
// and two semesters.
const ResultsCSV = "학번,이름,학과,학기,PO1,PO2,TPO1,TPO2\n" +
	"20210001,Kim,컴퓨터공학전공,2023-1,70,80,60,90\n" +
	"20210002,Lee,컴퓨터공학,2023-1,80,,70,\n" +
	"20220003,Park,미디어디자인공학과,2023-1,90,60,,50\n" +
	"20210001,Kim,컴퓨터공학전공,2023-2,75,85,65,95\n"

// LongResultsCSV is the long-shape equivalent of part of ResultsCSV.
const LongResultsCSV = "student_id,semester,major,metric,value\n" +
	"20210001,2023-1,CE,PO1,70\n" +
	"20210001,2023-1,CE,TPO1,60\n" +
	"20220003,2023-1,미디어디자인,PO1,90\n"

// GradesCSV maps the ResultsCSV students to GPAs.
const GradesCSV = "학번,평점\n" +
	"20210001,3.45\n" +
	"20210002,2.95\n" +
	"20220003,4.30\n"

// WriteFile writes content to name under dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// WriteXLSX writes rows to the first sheet of a new workbook at dir/name.
func WriteXLSX(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("invalid cell: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("failed to write row %d: %v", i, err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}
