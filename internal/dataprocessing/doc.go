// Package dataprocessing turns competency and grade spreadsheet exports into
// canonical records.
//
// # Architecture
//
// The package is organized into four steps:
//
// 1. Parser: reads CSV, XLSX and JSON exports into raw rows
// 2. Header normalizer: maps multi-language headers onto the canonical fields
// 3. Shape normalizer: pivots long (metric/value) batches into the wide shape
// 4. Record processor: resolves departments and coerces metric values
//
// # Usage
//
//	rows, err := dataprocessing.ParseFile("2023_CE_results.xlsx")
//	if err != nil {
//	    return err
//	}
//	result := dataprocessing.NewRecordProcessor().Process(rows, "2023_CE_results.xlsx")
//	po, tpo := dataprocessing.ExtractMetrics(result.Records)
//
// # Data Flow
//
//	File → Parser → Rows → NormalizeRows → RecordProcessor → Records → ExtractMetrics
//
// # Error Handling
//
// Only the parser returns errors (unreadable or unsupported files). Everything
// after it degrades instead of failing: unknown headers pass through, unknown
// departments become "", unparseable numbers become nil.
//
// # Preconditions
//
// A batch is assumed to have one shape. DetectShape looks at the first row only.
package dataprocessing
