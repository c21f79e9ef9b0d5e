package files

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"tpodash/internal/dataprocessing"
	"tpodash/pkg/contracts/domain"
)

// gradeName matches the file names of GPA exports.
var gradeName = regexp.MustCompile(`(?i)grade|gpa|성적|평점`)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	Format  dataprocessing.Format
	Kind    domain.FileKind
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative directories are
// resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindSourceFiles lists the supported spreadsheet exports in dir, sorted by name.
func (d *Discovery) FindSourceFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || skipName(entry.Name()) {
			continue
		}
		format, err := dataprocessing.DetectFormat(entry.Name())
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Format:  format,
			Kind:    Classify(entry.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// FindFilesByPattern finds supported files in dir matching a glob pattern
func (d *Discovery) FindFilesByPattern(dir, pattern string) ([]FileInfo, error) {
	all, err := d.FindSourceFiles(dir)
	if err != nil {
		return nil, err
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, f := range all {
		if ok, _ := filepath.Match(pattern, f.Name); ok {
			files = append(files, f)
		}
	}
	return files, nil
}

// Classify guesses the file kind from its name: grade exports mention grades or
// GPA, everything else is a result export.
func Classify(name string) domain.FileKind {
	if gradeName.MatchString(filepath.Base(name)) {
		return domain.FileKindGrade
	}
	return domain.FileKindResult
}

// Partition splits discovered files into result and grade paths, keeping order.
func Partition(files []FileInfo) (results, grades []string) {
	for _, f := range files {
		if f.Kind == domain.FileKindGrade {
			grades = append(grades, f.Path)
		} else {
			results = append(results, f.Path)
		}
	}
	return results, grades
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}

// skipName drops hidden files and Office lock files (~$report.xlsx).
func skipName(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$")
}
