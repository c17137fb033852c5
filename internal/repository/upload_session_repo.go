package repository

import (
	"context"
	"errors"

	"demand-forecasting-backend/internal/models"

	"gorm.io/gorm"
)

type UploadSessionRepository struct {
	db *gorm.DB
}

func NewUploadSessionRepository(db *gorm.DB) *UploadSessionRepository {
	return &UploadSessionRepository{db: db}
}

// Get returns (nil, nil) when no session exists for the id.
func (r *UploadSessionRepository) Get(ctx context.Context, sessionID string) (*models.UploadSession, error) {
	var session models.UploadSession
	err := r.db.WithContext(ctx).First(&session, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *UploadSessionRepository) Create(ctx context.Context, session *models.UploadSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// Update applies the given column set to one session row.
func (r *UploadSessionRepository) Update(ctx context.Context, sessionID string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.UploadSession{}).
		Where("session_id = ?", sessionID).
		Updates(fields).Error
}

func (r *UploadSessionRepository) List(ctx context.Context) ([]models.UploadSession, error) {
	var sessions []models.UploadSession
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&sessions).Error
	return sessions, err
}
