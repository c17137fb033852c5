package models

import (
	"time"

	"github.com/google/uuid"
)

// SalesRecord is the persisted unit of truth after an import run.
// Rows are created in batches by the import executor and never mutated.
type SalesRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Date           time.Time `gorm:"column:date;index" json:"date"`
	SKUID          string    `gorm:"column:sku_id;index" json:"sku_id"`
	PinCode        string    `gorm:"index" json:"pin_code"`
	UnitsSold      int       `json:"units_sold"`
	UnitPricePaise *int      `json:"unit_price_paise"`
	SessionID      string    `gorm:"index" json:"session_id"`
	CreatedAt      time.Time `json:"created_at"`
}
