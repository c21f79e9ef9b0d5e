package files

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tpodash/internal/dataprocessing"
)

// ErrNotSourceFile is returned for directories, hidden files and Office lock files.
var ErrNotSourceFile = errors.New("not a source file")

// FileValidator checks batch inputs and output directories before a run starts,
// so a bad path fails fast instead of halfway through loading.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a validator; a nil logger uses slog.Default.
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger.With(slog.String("component", "file_validator"))}
}

func (v *FileValidator) reject(path, reason string, err error) error {
	v.logger.Warn("Input rejected",
		slog.String("path", path),
		slog.String("reason", reason),
		slog.String("error", err.Error()))
	return fmt.Errorf("%s: %s: %w", path, reason, err)
}

// ValidateFile checks that path is a readable result or grade export.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return v.reject(path, "cannot stat", err)
	}
	if info.IsDir() || skipName(filepath.Base(path)) {
		return v.reject(path, "skipped", ErrNotSourceFile)
	}
	if _, err := dataprocessing.DetectFormat(path); err != nil {
		return v.reject(path, "unsupported", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return v.reject(path, "not readable", err)
	}
	f.Close()

	v.logger.Debug("Input validated",
		slog.String("path", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateFiles validates every path and stops at the first failure.
func (v *FileValidator) ValidateFiles(paths []string) error {
	for _, p := range paths {
		if err := v.ValidateFile(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOutputDirectory creates dir when missing and proves it is writable
// with a temporary file.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return v.reject(dir, "cannot create output directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		return v.reject(dir, "output directory not writable", err)
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)

	v.logger.Info("Output directory validated", slog.String("directory", dir))
	return nil
}
