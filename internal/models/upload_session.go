package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session lifecycle. Status only moves forward:
// uploaded -> mapped -> validated/validated_clean -> imported.
// Synthetic sessions jump straight from creation to imported.
const (
	SessionStatusUploaded       = "uploaded"
	SessionStatusMapped         = "mapped"
	SessionStatusValidated      = "validated"
	SessionStatusValidatedClean = "validated_clean"
	SessionStatusImported       = "imported"
)

// SyntheticSessionPrefix marks sessions created by the synthetic-data
// generator rather than a file upload.
const SyntheticSessionPrefix = "synthetic-"

// UploadSession tracks one CSV import attempt from upload through completion.
// RowCount holds the row total of the most recent completed validate or
// import pass. DetectedColumns and ColumnMapping are stored as JSON;
// ColumnMapping stays null until the map-columns step.
type UploadSession struct {
	SessionID        string         `gorm:"primaryKey" json:"session_id"`
	StorageKey       *string        `json:"storage_key"`
	OriginalFilename string         `json:"original_filename"`
	RowCount         int            `json:"row_count"`
	DetectedColumns  datatypes.JSON `json:"detected_columns"`
	ColumnMapping    datatypes.JSON `json:"column_mapping"`
	Status           string         `gorm:"index" json:"status"`
	IsSynthetic      bool           `json:"is_synthetic"`
	ErrorMessage     *string        `json:"error_message"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
