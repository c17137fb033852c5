package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// File is a tokenized CSV: a lower-cased header row plus raw data rows.
// Header matching is case-insensitive throughout the pipeline.
type File struct {
	Headers []string
	Rows    [][]string
}

// ParseCSV tokenizes raw file content. Quoted fields and embedded commas
// are handled by encoding/csv; rows may have fewer fields than the header.
// A file with no data rows is rejected with ErrEmptyFile.
func ParseCSV(content []byte) (*File, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records := make([][]string, 0, 1024)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv parsing failed: %w", err)
		}
		if isBlankRow(record) {
			continue
		}
		records = append(records, record)
	}

	if len(records) < 2 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "\ufeff"))
	}

	return &File{Headers: headers, Rows: records[1:]}, nil
}

func isBlankRow(record []string) bool {
	return strings.Join(record, "") == ""
}

// headerIndex returns the position of a header name, matched
// case-insensitively, or -1.
func (f *File) headerIndex(name string) int {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return -1
	}
	for i, h := range f.Headers {
		if h == needle {
			return i
		}
	}
	return -1
}
