package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tpodash/internal/department"
	"tpodash/internal/services"
	"tpodash/internal/shared/testutil"
	"tpodash/pkg/contracts/domain"
)

func TestListFlag(t *testing.T) {
	var l listFlag
	require.NoError(t, l.Set("CE, MD"))
	require.NoError(t, l.Set("EE"))
	assert.Equal(t, listFlag{"CE", "MD", "EE"}, l)
	assert.Equal(t, "CE,MD,EE", l.String())
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer

	_, err := parseFlags(nil, &stderr)
	assert.Error(t, err)

	opts, err := parseFlags([]string{"-dept", "CE", "-student", "20210001", "-semester", "2023-1", "a.csv", "b.csv"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.csv"}, opts.results)
	assert.Equal(t, listFlag{department.ComputerEngineering}, opts.depts)
	assert.Equal(t, "2023-1", opts.semester)

	opts, err = parseFlags([]string{"-dept", department.MediaDesign + ",ee", "a.csv"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, listFlag{department.MediaDesign, department.ElectricalPower}, opts.depts)

	_, err = parseFlags([]string{"-dept", "history", "a.csv"}, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown department "history"`)
	assert.Contains(t, err.Error(), department.ComputerEngineering)
}

func TestWarnUnresolved(t *testing.T) {
	var buf bytes.Buffer
	warnUnresolved(&buf, services.FileList{Results: []domain.SourceFile{
		{Name: "a.csv", Unresolved: 2},
		{Name: "2023_CE.csv", FromFilename: 3},
		{Name: "clean.csv"},
	}})
	out := buf.String()
	assert.Contains(t, out, "a.csv has 2 rows with an unrecognized department")
	assert.Contains(t, out, "2023_CE.csv: 3 rows take their department from the file name")
	assert.NotContains(t, out, "clean.csv")
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	results := testutil.WriteFile(t, dir, "results.csv", testutil.ResultsCSV)
	grades := testutil.WriteFile(t, dir, "grades.csv", testutil.GradesCSV)
	exportDir := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-grades", grades,
		"-dept", department.ComputerEngineering,
		"-student", "20210001",
		"-export", exportDir,
		results,
	}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Overview")
	assert.Contains(t, out, "departments-tpo")
	assert.Contains(t, out, "TPO1")
	assert.Contains(t, out, "student-growth-tpo")

	_, err := os.Stat(filepath.Join(exportDir, "departments-tpo.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(exportDir, "students-tpo.csv"))
	assert.NoError(t, err)
}

func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))

	stderr.Reset()
	missing := filepath.Join(t.TempDir(), "missing.csv")
	assert.Equal(t, 1, run(context.Background(), []string{missing}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "load failed")
}

func TestRun_Directory(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "2023_results.csv", testutil.ResultsCSV)
	testutil.WriteFile(t, dir, "grades.csv", testutil.GradesCSV)
	testutil.WriteFile(t, dir, "README.txt", "ignored")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dir", dir}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Grade rows")
	assert.Contains(t, out, department.MediaDesign)

	opts, err := parseFlags([]string{"-dir", dir}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, dir, opts.dir)
}

func TestRun_DirectoryBeyondUploadLimit(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 25; i++ {
		testutil.WriteFile(t, dir, fmt.Sprintf("results_%02d.csv", i), testutil.ResultsCSV)
	}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dir", dir}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.NotContains(t, stderr.String(), "too many files")
	assert.Contains(t, stdout.String(), "departments-tpo")
}

func TestRun_ConfigErrorFallsBack(t *testing.T) {
	t.Setenv("TPODASH_SERVER_PORT", "70000")
	results := testutil.WriteFile(t, t.TempDir(), "results.csv", testutil.ResultsCSV)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{results}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), "Failed to load config, using defaults")
	assert.Contains(t, stdout.String(), "Overview")
}
