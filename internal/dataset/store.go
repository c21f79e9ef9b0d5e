// Package dataset holds the ingested result and grade files for the session.
package dataset

import (
	"errors"
	"fmt"
	"sync"

	"tpodash/pkg/contracts/domain"
)

// ErrFileNotFound is returned when a file id is unknown.
var ErrFileNotFound = errors.New("file not found")

// Snapshot is a consistent, read-only view of the dataset. Aggregation runs on
// snapshots without holding the store lock.
type Snapshot struct {
	Files   []domain.SourceFile
	Results []domain.Record
	Grades  []domain.Row
	Version uint64
}

// MemoryStore is an in-memory file set. Files keep their upload order.
type MemoryStore struct {
	mu      sync.RWMutex
	files   []domain.SourceFile
	version uint64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add appends files and bumps the version.
func (s *MemoryStore) Add(files ...domain.SourceFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, files...)
	s.version++
}

// Replace swaps the whole file set, used when loading a manifest.
func (s *MemoryStore) Replace(files []domain.SourceFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append([]domain.SourceFile(nil), files...)
	s.version++
}

// Remove deletes the file with id.
func (s *MemoryStore) Remove(id string) (domain.SourceFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.files {
		if f.ID == id {
			s.files = append(s.files[:i:i], s.files[i+1:]...)
			s.version++
			return f, nil
		}
	}
	return domain.SourceFile{}, fmt.Errorf("%w: %s", ErrFileNotFound, id)
}

// List returns file descriptors of the given kind, all kinds when kind is "".
func (s *MemoryStore) List(kind domain.FileKind) []domain.SourceFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SourceFile, 0, len(s.files))
	for _, f := range s.files {
		if kind == "" || f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Snapshot flattens the result records and grade rows in upload order.
func (s *MemoryStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Files:   append([]domain.SourceFile(nil), s.files...),
		Version: s.version,
	}
	for _, f := range s.files {
		switch f.Kind {
		case domain.FileKindResult:
			snap.Results = append(snap.Results, f.Records...)
		case domain.FileKindGrade:
			snap.Grades = append(snap.Grades, f.Rows...)
		}
	}
	return snap
}
