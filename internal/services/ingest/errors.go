package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionNotFound: no upload session exists for the given id.
	ErrSessionNotFound = errors.New("upload session not found")

	// ErrNotMapped: validate/import was called before map-columns.
	ErrNotMapped = errors.New("column mapping not set")

	// ErrEmptyFile: the CSV has no data rows (header only, or empty).
	ErrEmptyFile = errors.New("csv file is empty or has no data rows")

	// ErrAlreadyImported: sessions are single-shot importable; a second
	// import on an imported session is rejected to avoid duplicate rows.
	ErrAlreadyImported = errors.New("session already imported")

	// ErrInsufficientData: synthetic generation needs at least one SKU and
	// one active PIN code.
	ErrInsufficientData = errors.New("need at least one SKU and one active PIN code")
)

// IncompleteMappingError reports which required logical columns are missing
// from a session's column mapping.
type IncompleteMappingError struct {
	Missing []string
}

func (e *IncompleteMappingError) Error() string {
	return fmt.Sprintf("column mapping incomplete: missing %s", strings.Join(e.Missing, ", "))
}
