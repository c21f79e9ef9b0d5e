package dataprocessing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for paths that escape the data directory.
var ErrOutsideRoot = errors.New("path outside data directory")

// ManifestEntry names one file of a manifest. Relative paths resolve against the
// manifest's directory.
type ManifestEntry struct {
	Name string `json:"name" validate:"required"`
	Path string `json:"path" validate:"required"`
}

// Manifest lists the result and grade files to load together.
type Manifest struct {
	Results []ManifestEntry `json:"results" validate:"dive"`
	Grades  []ManifestEntry `json:"grades" validate:"dive"`
}

// LoadManifest reads a manifest file and resolves its relative paths.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	base := filepath.Dir(path)
	resolve := func(entries []ManifestEntry) {
		for i := range entries {
			if !filepath.IsAbs(entries[i].Path) {
				entries[i].Path = filepath.Join(base, entries[i].Path)
			}
			if entries[i].Name == "" {
				entries[i].Name = filepath.Base(entries[i].Path)
			}
		}
	}
	resolve(m.Results)
	resolve(m.Grades)
	return &m, nil
}

// Within resolves path against root and fails with ErrOutsideRoot when the
// result is not inside root. Relative paths are taken relative to root.
func Within(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(absRoot, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(absRoot, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return path, nil
}

// Confine checks that every entry of m lies inside root.
func (m *Manifest) Confine(root string) error {
	for _, entries := range [][]ManifestEntry{m.Results, m.Grades} {
		for i := range entries {
			p, err := Within(root, entries[i].Path)
			if err != nil {
				return err
			}
			entries[i].Path = p
		}
	}
	return nil
}
