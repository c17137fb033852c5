package repository

import (
	"context"

	"demand-forecasting-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PinCodeRepository struct {
	db *gorm.DB
}

func NewPinCodeRepository(db *gorm.DB) *PinCodeRepository {
	return &PinCodeRepository{db: db}
}

// ListCodes returns the set of all known PIN codes.
func (r *PinCodeRepository) ListCodes(ctx context.Context) (map[string]struct{}, error) {
	var codes []string
	if err := r.db.WithContext(ctx).Model(&models.PinCode{}).Pluck("pin_code", &codes).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set, nil
}

func (r *PinCodeRepository) List(ctx context.Context) ([]models.PinCode, error) {
	var pins []models.PinCode
	err := r.db.WithContext(ctx).Order("pin_code DESC").Find(&pins).Error
	return pins, err
}

func (r *PinCodeRepository) ListActive(ctx context.Context) ([]models.PinCode, error) {
	var pins []models.PinCode
	err := r.db.WithContext(ctx).Where("status = ?", models.PinCodeStatusActive).Find(&pins).Error
	return pins, err
}

func (r *PinCodeRepository) Create(ctx context.Context, pin *models.PinCode) error {
	return r.db.WithContext(ctx).Create(pin).Error
}

// InsertIfAbsent creates a placeholder PIN-code record, silently ignoring a
// primary-key conflict so concurrent provisioning of the same code is safe.
func (r *PinCodeRepository) InsertIfAbsent(ctx context.Context, pin *models.PinCode) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(pin).Error
}
