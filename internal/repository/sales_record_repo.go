package repository

import (
	"context"

	"demand-forecasting-backend/internal/models"

	"gorm.io/gorm"
)

type SalesRecordRepository struct {
	db *gorm.DB
}

func NewSalesRecordRepository(db *gorm.DB) *SalesRecordRepository {
	return &SalesRecordRepository{db: db}
}

// InsertBatch writes one batch of accepted sales rows in a single
// multi-row insert, preserving row order within the batch.
func (r *SalesRecordRepository) InsertBatch(ctx context.Context, records []models.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

// CountBySession reports how many sales rows a session has persisted.
func (r *SalesRecordRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SalesRecord{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}
