package ingest

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"demand-forecasting-backend/internal/models"

	"github.com/google/uuid"
)

// importBatchSize is how many staged sales rows are flushed per insert.
const importBatchSize = 500

// ImportSkipReasons breaks skipped rows down by cause.
type ImportSkipReasons struct {
	MissingSKUs int `json:"missing_skus"`
	MissingPins int `json:"missing_pins"`
	InvalidData int `json:"invalid_data"`
}

// ImportReport is the outcome of a completed import. ImportedCount plus
// SkippedCount always equals the file's data row count.
type ImportReport struct {
	SessionID       string            `json:"session_id"`
	ImportedCount   int               `json:"imported_count"`
	SkippedCount    int               `json:"skipped_count"`
	PinsAutoCreated int               `json:"pins_auto_created"`
	Reasons         ImportSkipReasons `json:"skip_reasons"`
	MissingSKUsList []string          `json:"missing_skus,omitempty"`
	MissingPinsList []string          `json:"missing_pins,omitempty"`
}

// runImport writes a mapped file into sales_records. Pass one provisions
// catalog entries for every well-formed PIN code the snapshot lacks, then
// pass two stages rows and flushes them in batches. Rows with unknown
// SKUs, malformed PINs, bad dates, units, or prices are skipped and
// counted, never written.
func runImport(ctx context.Context, file *File, mapping ColumnMapping, sessionID string,
	skuIDs, pinCodes map[string]struct{}, pins PinSource, sales SalesWriter) (*ImportReport, error) {

	cols := mapping.resolve(file)
	report := &ImportReport{SessionID: sessionID}

	created, err := provisionPins(ctx, file, cols, pinCodes, pins)
	if err != nil {
		return nil, err
	}
	report.PinsAutoCreated = created

	missingSKUs := map[string]struct{}{}
	missingPins := map[string]struct{}{}
	batch := make([]models.SalesRecord, 0, importBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sales.InsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("inserting sales batch: %w", err)
		}
		report.ImportedCount += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, row := range file.Rows {
		date, ok := ParseDate(fieldAt(row, cols.date))
		if !ok {
			report.SkippedCount++
			report.Reasons.InvalidData++
			continue
		}

		skuID := fieldAt(row, cols.sku)
		if _, known := skuIDs[skuID]; !known {
			report.SkippedCount++
			report.Reasons.MissingSKUs++
			if skuID != "" {
				missingSKUs[skuID] = struct{}{}
			}
			continue
		}

		pin := fieldAt(row, cols.pin)
		if _, known := pinCodes[pin]; !known {
			report.SkippedCount++
			report.Reasons.MissingPins++
			if pin != "" {
				missingPins[pin] = struct{}{}
			}
			continue
		}

		units, err := strconv.Atoi(fieldAt(row, cols.units))
		if err != nil || units < 0 {
			report.SkippedCount++
			report.Reasons.InvalidData++
			continue
		}

		pricePaise, ok := parsePricePaise(row, cols)
		if !ok {
			report.SkippedCount++
			report.Reasons.InvalidData++
			continue
		}

		batch = append(batch, models.SalesRecord{
			ID:             uuid.New(),
			Date:           date,
			SKUID:          skuID,
			PinCode:        pin,
			UnitsSold:      units,
			UnitPricePaise: pricePaise,
			SessionID:      sessionID,
		})
		if len(batch) >= importBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	report.MissingSKUsList = sortedKeys(missingSKUs)
	report.MissingPinsList = sortedKeys(missingPins)
	return report, nil
}

// provisionPins inserts a placeholder catalog row for every distinct
// well-formed PIN code the snapshot does not know, and adds it to the
// snapshot so the staging pass treats it as known.
func provisionPins(ctx context.Context, file *File, cols resolvedColumns,
	pinCodes map[string]struct{}, pins PinSource) (int, error) {

	created := 0
	for _, row := range file.Rows {
		pin := fieldAt(row, cols.pin)
		if !pinCodePattern.MatchString(pin) {
			continue
		}
		if _, known := pinCodes[pin]; known {
			continue
		}
		err := pins.InsertIfAbsent(ctx, &models.PinCode{
			PinCode:    pin,
			AreaName:   "Area " + pin,
			Region:     "Other",
			StoreCount: 0,
			Status:     models.PinCodeStatusActive,
		})
		if err != nil {
			return created, fmt.Errorf("auto-provisioning pin %s: %w", pin, err)
		}
		pinCodes[pin] = struct{}{}
		created++
	}
	return created, nil
}

// parsePricePaise converts a decimal rupee price to integer paise. An
// unmapped column or empty cell yields a nil price; a value that does not
// parse, or is negative, rejects the row.
func parsePricePaise(row []string, cols resolvedColumns) (*int, bool) {
	if !cols.hasPrice() {
		return nil, true
	}
	raw := fieldAt(row, cols.price)
	if raw == "" {
		return nil, true
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		return nil, false
	}
	paise := int(math.Round(price * 100))
	return &paise, true
}
