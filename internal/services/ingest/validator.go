package ingest

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var pinCodePattern = regexp.MustCompile(`^\d{6}$`)

const (
	// maxReportedErrors caps the error list in a validation report; the
	// counters still cover every row.
	maxReportedErrors = 10

	// invalidRowTolerance is the fraction of invalid rows below which an
	// import may still proceed.
	invalidRowTolerance = 0.01
)

// RowError describes one rejected cell. Row is 1-based over data rows.
type RowError struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Issue  string `json:"issue"`
}

// ValidationReport summarizes a dry-run pass over a mapped file.
type ValidationReport struct {
	SessionID      string     `json:"session_id"`
	TotalRows      int        `json:"total_rows"`
	ValidRows      int        `json:"valid_rows"`
	InvalidRows    int        `json:"invalid_rows"`
	Errors         []RowError `json:"errors"`
	KnownSKUs      []string   `json:"known_skus"`
	UnknownSKUs    []string   `json:"unknown_skus"`
	KnownPins      []string   `json:"known_pins"`
	UnknownPins    []string   `json:"unknown_pins"`
	HasMissingPins bool       `json:"has_missing_pins"`
	CanProceed     bool       `json:"can_proceed"`
	BlockedReason  string     `json:"blocked_reason,omitempty"`
}

// validateFile classifies every data row against the mapping and the
// catalog snapshots. Rows referencing unknown SKUs are invalid and block
// the import; well-formed PIN codes absent from the catalog are a soft
// warning only, since the importer auto-provisions them.
func validateFile(file *File, mapping ColumnMapping, skuIDs, pinCodes map[string]struct{}) *ValidationReport {
	cols := mapping.resolve(file)
	report := &ValidationReport{
		TotalRows: len(file.Rows),
		Errors:    []RowError{},
	}

	knownSKUs := map[string]struct{}{}
	unknownSKUs := map[string]struct{}{}
	knownPins := map[string]struct{}{}
	unknownPins := map[string]struct{}{}

	for i, row := range file.Rows {
		rowNum := i + 1
		rowValid := true

		addError := func(column, value, issue string) {
			rowValid = false
			if len(report.Errors) < maxReportedErrors {
				report.Errors = append(report.Errors, RowError{
					Row:    rowNum,
					Column: column,
					Value:  value,
					Issue:  issue,
				})
			}
		}

		dateValue := fieldAt(row, cols.date)
		if _, ok := ParseDate(dateValue); !ok {
			addError(mapping.DateCol, dateValue, "unparseable date")
		}

		skuValue := fieldAt(row, cols.sku)
		if skuValue == "" {
			addError(mapping.SKUIDCol, skuValue, "missing SKU id")
		} else if _, ok := skuIDs[skuValue]; ok {
			knownSKUs[skuValue] = struct{}{}
		} else {
			unknownSKUs[skuValue] = struct{}{}
			addError(mapping.SKUIDCol, skuValue, "SKU not in catalog")
		}

		pinValue := fieldAt(row, cols.pin)
		if !pinCodePattern.MatchString(pinValue) {
			addError(mapping.PinCodeCol, pinValue, "PIN code must be 6 digits")
		} else if _, ok := pinCodes[pinValue]; ok {
			knownPins[pinValue] = struct{}{}
		} else {
			// Importable: missing PINs are auto-provisioned at import time.
			unknownPins[pinValue] = struct{}{}
		}

		unitsValue := fieldAt(row, cols.units)
		if units, err := strconv.Atoi(unitsValue); err != nil || units < 0 {
			addError(mapping.UnitsSoldCol, unitsValue, "units sold must be a non-negative integer")
		}

		if rowValid {
			report.ValidRows++
		} else {
			report.InvalidRows++
		}
	}

	report.KnownSKUs = sortedKeys(knownSKUs)
	report.UnknownSKUs = sortedKeys(unknownSKUs)
	report.KnownPins = sortedKeys(knownPins)
	report.UnknownPins = sortedKeys(unknownPins)
	report.HasMissingPins = len(report.UnknownPins) > 0

	report.CanProceed, report.BlockedReason = proceedDecision(report)
	return report
}

func proceedDecision(report *ValidationReport) (bool, string) {
	if len(report.UnknownSKUs) > 0 {
		return false, fmt.Sprintf("SKUs not in catalog: %s", strings.Join(report.UnknownSKUs, ", "))
	}
	if report.InvalidRows == 0 {
		return true, ""
	}
	if float64(report.InvalidRows)/float64(report.TotalRows) < invalidRowTolerance {
		return true, ""
	}
	return false, "too many invalid rows"
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
