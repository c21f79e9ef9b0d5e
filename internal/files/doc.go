// Package files finds and checks the spreadsheet exports a batch run loads from
// disk.
//
// Discovery lists the supported source files of a directory (CSV, XLSX and JSON),
// skipping directories, hidden files and Office lock files, and classifies each
// file as a result or a grade export from its name. FileValidator checks single
// input paths and prepares output directories before anything is written.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/data/tpo")
//	found, err := discovery.FindSourceFiles("2023")
//	results, grades := files.Partition(found)
package files
