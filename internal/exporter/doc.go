// Package exporter provides CSV export of dashboard aggregate tables.
//
// This package contains two components:
//
// CSVWriter: core CSV writing with headers, streaming and a UTF-8 BOM so Excel
// opens Korean labels correctly.
//
// TableExporter: flattens aggregate tables into CSV (pivot column first, one
// column per series, empty cells for "no data").
//
// Example usage:
//
//	writer := exporter.NewCSVWriter("exports")
//	err := exporter.NewTableExporter(writer).Export("dept_tpo.csv", table)
package exporter
