package services

import "errors"

// Dashboard service errors
var (
	// File errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrParseFailed       = errors.New("failed to parse file")
	ErrFileNotFound      = errors.New("file not found")
	ErrTooManyFiles      = errors.New("too many files")

	// Aggregation errors
	ErrNoResultData = errors.New("no result data loaded")
	ErrUnknownTable = errors.New("unknown table")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
