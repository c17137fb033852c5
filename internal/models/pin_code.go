package models

const (
	PinCodeStatusActive   = "active"
	PinCodeStatusInactive = "inactive"
)

// PinCode is a 6-digit Indian postal code used as the geographic
// granularity for demand and inventory.
type PinCode struct {
	PinCode    string `gorm:"primaryKey;column:pin_code" json:"pin_code"`
	AreaName   string `json:"area_name"`
	Region     string `gorm:"index" json:"region"`
	StoreCount int    `json:"store_count"`
	Status     string `gorm:"default:active" json:"status"`
}
