package repository

import (
	"context"

	"demand-forecasting-backend/internal/models"

	"gorm.io/gorm"
)

type SKURepository struct {
	db *gorm.DB
}

func NewSKURepository(db *gorm.DB) *SKURepository {
	return &SKURepository{db: db}
}

// ListIDs returns the set of all known SKU identifiers. The pipeline reads
// this once per validate/import pass as a point-in-time snapshot.
func (r *SKURepository) ListIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.SKU{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *SKURepository) List(ctx context.Context) ([]models.SKU, error) {
	var skus []models.SKU
	err := r.db.WithContext(ctx).Order("id ASC").Find(&skus).Error
	return skus, err
}

func (r *SKURepository) Create(ctx context.Context, sku *models.SKU) error {
	return r.db.WithContext(ctx).Create(sku).Error
}

// LastID returns the lexicographically greatest SKU id, or "" when the
// catalog is empty. Used for sequential id generation.
func (r *SKURepository) LastID(ctx context.Context) (string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.SKU{}).
		Order("id DESC").Limit(1).Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return "", err
	}
	return ids[0], nil
}
