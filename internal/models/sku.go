package models

import "time"

const (
	SKUStatusActive    = "active"
	SKUStatusInactive  = "inactive"
	SKUStatusNoHistory = "no_history"
)

// SKUCategories lists the accepted category values.
var SKUCategories = []string{"beverages", "snacks", "dairy", "personal_care", "household", "other"}

type SKU struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Name          string    `json:"name"`
	Category      string    `gorm:"index" json:"category"`
	UnitCostPaise int       `json:"unit_cost_paise"`
	LeadTimeDays  int       `json:"lead_time_days"`
	Status        string    `gorm:"default:no_history" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
