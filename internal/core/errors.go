package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaMismatch is returned when the grouping key column is absent.
	ErrSchemaMismatch = errors.New("missing grouping key column")

	// ErrUnsupportedFormat is returned for uploads that are neither xlsx nor csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned when the upload has no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrUnknownSchema is returned when a request names an unregistered schema.
	ErrUnknownSchema = errors.New("unknown schema")

	// ErrTemplate is returned when the output template cannot be opened.
	ErrTemplate = errors.New("report template unavailable")
)

// SchemaMismatchError names the missing key column and the columns that
// were present.
type SchemaMismatchError struct {
	Column    string
	Available []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s %q (found: %s)", ErrSchemaMismatch, e.Column, strings.Join(e.Available, ", "))
}

func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}
