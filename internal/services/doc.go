// Package services holds the dashboard's business logic between the HTTP
// handlers and the engine packages.
//
// DashboardService owns ingestion (parsing, canonicalization and storage of
// result and grade files) and builds the department and student views from a
// dataset snapshot on every call. Each view gets its own chart palette so colors
// are stable within a response.
//
// Services return the sentinel errors in errors.go wrapped with context;
// handlers map them to problem responses with errors.Is.
package services
