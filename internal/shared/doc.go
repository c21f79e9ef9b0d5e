// Package shared holds helpers used across the dashboard packages.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - A buffered slog handler for asserting on log output
//   - Result and grade file fixtures in CSV, XLSX and JSON form
//
// It must not contain business logic.
package shared
