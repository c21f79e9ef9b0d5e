package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tpodash/pkg/contracts/domain"
)

// ErrUnsupportedFormat is returned for files that are not CSV, XLSX or JSON.
var ErrUnsupportedFormat = errors.New("unsupported file format: use CSV, XLSX or JSON")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Format is a supported spreadsheet export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// DetectFormat picks the parser from the file extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "xlsm", "xls":
		return FormatXLSX, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(name))
}

// ParseFile reads a spreadsheet export from disk into raw rows.
func ParseFile(path string) ([]domain.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return Parse(filepath.Base(path), f)
}

// Parse reads the export called name from r. The first row is the header; every
// later row becomes a Row keyed by header text, missing cells as "".
func Parse(name string, r io.Reader) ([]domain.Row, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	var rows []domain.Row
	switch format {
	case FormatCSV:
		rows, err = parseCSV(r)
	case FormatXLSX:
		rows, err = parseXLSX(r)
	case FormatJSON:
		rows, err = parseJSON(r)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	slog.Debug("Parsed spreadsheet",
		slog.String("file", name),
		slog.String("format", string(format)),
		slog.Int("rows", len(rows)))
	return rows, nil
}

func parseCSV(r io.Reader) ([]domain.Row, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return tableToRows(records), nil
}

func parseXLSX(r io.Reader) ([]domain.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []domain.Row{}, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return tableToRows(records), nil
}

func parseJSON(r io.Reader) ([]domain.Row, error) {
	var objects []map[string]any
	if err := json.NewDecoder(r).Decode(&objects); err != nil {
		return nil, fmt.Errorf("failed to decode json rows: %w", err)
	}
	rows := make([]domain.Row, 0, len(objects))
	for _, o := range objects {
		rows = append(rows, domain.Row(o))
	}
	return rows, nil
}

// tableToRows keys each data row by the header row. Blank header cells and fully
// blank rows are skipped.
func tableToRows(records [][]string) []domain.Row {
	if len(records) == 0 {
		return []domain.Row{}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]domain.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		row := make(domain.Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func blankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
