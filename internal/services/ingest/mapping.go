package ingest

import (
	"encoding/json"
	"strings"
)

// ColumnMapping is the user-declared correspondence between the logical
// sales fields and physical CSV header names. The four *_col fields are
// required; unit_price_col is optional.
type ColumnMapping struct {
	DateCol      string `json:"date_col"`
	SKUIDCol     string `json:"sku_id_col"`
	PinCodeCol   string `json:"pin_code_col"`
	UnitsSoldCol string `json:"units_sold_col"`
	UnitPriceCol string `json:"unit_price_col,omitempty"`
}

// MissingFields lists required logical fields without a mapped header.
func (m ColumnMapping) MissingFields() []string {
	missing := []string{}
	if strings.TrimSpace(m.DateCol) == "" {
		missing = append(missing, "date_col")
	}
	if strings.TrimSpace(m.SKUIDCol) == "" {
		missing = append(missing, "sku_id_col")
	}
	if strings.TrimSpace(m.PinCodeCol) == "" {
		missing = append(missing, "pin_code_col")
	}
	if strings.TrimSpace(m.UnitsSoldCol) == "" {
		missing = append(missing, "units_sold_col")
	}
	return missing
}

func parseMapping(raw []byte) (ColumnMapping, error) {
	var m ColumnMapping
	if len(raw) == 0 {
		return m, ErrNotMapped
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, err
	}
	if missing := m.MissingFields(); len(missing) > 0 {
		return m, &IncompleteMappingError{Missing: missing}
	}
	return m, nil
}

// resolvedColumns holds the physical column index of each logical field,
// -1 when the mapped header is absent from the file.
type resolvedColumns struct {
	date  int
	sku   int
	pin   int
	units int
	price int
}

func (m ColumnMapping) resolve(file *File) resolvedColumns {
	cols := resolvedColumns{
		date:  file.headerIndex(m.DateCol),
		sku:   file.headerIndex(m.SKUIDCol),
		pin:   file.headerIndex(m.PinCodeCol),
		units: file.headerIndex(m.UnitsSoldCol),
		price: -1,
	}
	if m.UnitPriceCol != "" {
		cols.price = file.headerIndex(m.UnitPriceCol)
	}
	return cols
}

// hasPrice reports whether a unit-price column is mapped and present.
func (c resolvedColumns) hasPrice() bool {
	return c.price >= 0
}

func fieldAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
