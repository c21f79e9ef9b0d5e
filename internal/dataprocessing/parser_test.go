package dataprocessing

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tpodash/internal/shared/testutil"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"results.csv", FormatCSV, false},
		{"RESULTS.XLSX", FormatXLSX, false},
		{"old.xls", FormatXLSX, false},
		{"rows.json", FormatJSON, false},
		{"notes.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_CSV(t *testing.T) {
	content := "\ufeff학번,학과,PO1\n\n20210001,CE,90\n20210002,MD\n,,\n"
	rows, err := Parse("r.csv", strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "20210001", rows[0]["학번"])
	assert.Equal(t, "90", rows[0]["PO1"])
	// Short rows are padded with ""
	assert.Equal(t, "", rows[1]["PO1"])
}

func TestParse_JSON(t *testing.T) {
	rows, err := Parse("r.json", strings.NewReader(`[{"학번":"20210001","PO1":90},{"학번":"20210002","PO1":null}]`))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 90.0, rows[0]["PO1"])
	assert.Nil(t, rows[1]["PO1"])

	_, err = Parse("r.json", strings.NewReader(`{"not":"an array"}`))
	assert.Error(t, err)
}

func TestParse_Unsupported(t *testing.T) {
	_, err := Parse("notes.txt", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseFile_XLSX(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteXLSX(t, dir, "2023_CE.xlsx", [][]any{
		{"학번", "학과", "학기", "PO1", "TPO1"},
		{"20210001", "컴퓨터공학", "2023-1", 70, 60},
		{"20210002", "컴퓨터공학", "2023-1", 80},
	})

	rows, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "70", rows[0]["PO1"])
	assert.Equal(t, "", rows[1]["TPO1"])

	result := NewRecordProcessor().Process(rows, filepath.Base(path))
	require.Len(t, result.Records, 2)
	require.NotNil(t, result.Records[0].Metric("TPO_1"))
	assert.Equal(t, 60.0, *result.Records[0].Metric("TPO_1"))
	assert.Nil(t, result.Records[1].Metric("TPO_1"))
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "abs.csv")
	path := testutil.WriteFile(t, dir, "m/manifest.json", `{
		"results": [{"name": "2023-1", "path": "data/r1.csv"}, {"path": "`+filepath.ToSlash(abs)+`"}],
		"grades": [{"path": "g.csv"}]
	}`)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Results, 2)
	assert.Equal(t, "2023-1", m.Results[0].Name)
	assert.Equal(t, filepath.Join(dir, "m", "data", "r1.csv"), m.Results[0].Path)
	assert.Equal(t, "abs.csv", m.Results[1].Name)
	require.Len(t, m.Grades, 1)
	assert.Equal(t, filepath.Join(dir, "m", "g.csv"), m.Grades[0].Path)

	_, err = LoadManifest(filepath.Join(dir, "none.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWithin(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "relative inside", path: "2023/r1.csv", want: filepath.Join(root, "2023", "r1.csv")},
		{name: "absolute inside", path: filepath.Join(root, "r1.csv"), want: filepath.Join(root, "r1.csv")},
		{name: "dotted name inside", path: "..r1.csv", want: filepath.Join(root, "..r1.csv")},
		{name: "parent escape", path: "../r1.csv", wantErr: true},
		{name: "nested escape", path: "a/../../r1.csv", wantErr: true},
		{name: "absolute elsewhere", path: filepath.Join(other, "private.csv"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Within(root, tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutsideRoot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManifest_Confine(t *testing.T) {
	root := t.TempDir()
	private := filepath.Join(t.TempDir(), "private.csv")

	inside := testutil.WriteFile(t, root, "manifest.json", `{"results": [{"path": "r1.csv"}], "grades": [{"path": "g/g.csv"}]}`)
	m, err := LoadManifest(inside)
	require.NoError(t, err)
	require.NoError(t, m.Confine(root))
	assert.Equal(t, filepath.Join(root, "r1.csv"), m.Results[0].Path)
	assert.Equal(t, filepath.Join(root, "g", "g.csv"), m.Grades[0].Path)

	escaping := testutil.WriteFile(t, root, "escape.json", `{"results": [{"path": "`+filepath.ToSlash(private)+`"}]}`)
	m, err = LoadManifest(escaping)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Confine(root), ErrOutsideRoot)

	grades := testutil.WriteFile(t, root, "grades.json", `{"grades": [{"path": "../../g.csv"}]}`)
	m, err = LoadManifest(grades)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Confine(root), ErrOutsideRoot)
}
