package exporter

import (
	"io"

	"tpodash/pkg/contracts/domain"
)

// TableExporter writes aggregate tables as CSV
type TableExporter struct {
	writer *CSVWriter
}

// NewTableExporter creates a table exporter on top of a CSV writer
func NewTableExporter(writer *CSVWriter) *TableExporter {
	return &TableExporter{writer: writer}
}

// TableRecords flattens a table: the pivot column first, then one column per
// series. Missing values are empty cells.
func TableRecords(table domain.Table) (headers []string, records [][]string) {
	headers = append([]string{string(table.Pivot)}, table.Series...)
	records = make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := make([]string, 0, len(headers))
		rec = append(rec, row.Label)
		for _, s := range table.Series {
			rec = append(rec, formatNullable(row.Value(s)))
		}
		records = append(records, rec)
	}
	return headers, records
}

// Export writes table to filePath under the writer's base directory
func (e *TableExporter) Export(filePath string, table domain.Table) error {
	headers, records := TableRecords(table)
	return e.writer.WriteSimpleCSV(filePath, headers, records)
}

// Stream writes table as CSV to out
func (e *TableExporter) Stream(out io.Writer, table domain.Table) error {
	headers, records := TableRecords(table)
	return WriteTo(out, WriteOptions{Headers: headers, Records: records, BOMPrefix: true})
}
