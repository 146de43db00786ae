package repository

import (
	"context"
	"fmt"

	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromotionRepository handles promotion database operations
type PromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository creates a new promotion repository
func NewPromotionRepository(db *gorm.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

// GetByBrand retrieves the promotions of a brand within a tenant
func (r *PromotionRepository) GetByBrand(ctx context.Context, tenantID, brandID uuid.UUID, params models.ListParams) ([]models.Promotion, error) {
	var promotions []models.Promotion
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND brand_id = ?", tenantID, brandID).
		Order("starts_at DESC")

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	query = paginate(query, params)

	if err := query.Find(&promotions).Error; err != nil {
		return nil, fmt.Errorf("failed to get promotions: %w", err)
	}
	return promotions, nil
}
