package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrBrandNotFound is returned when a brand does not exist in the tenant
var ErrBrandNotFound = errors.New("brand not found")

// BrandRepository handles brand database operations
type BrandRepository struct {
	db *gorm.DB
}

// NewBrandRepository creates a new brand repository
func NewBrandRepository(db *gorm.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// GetByID retrieves a brand, constrained to the given tenant
func (r *BrandRepository) GetByID(ctx context.Context, tenantID, brandID uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", brandID, tenantID).
		First(&brand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBrandNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return &brand, nil
}

// GetByTenantID retrieves the active brands of a tenant
func (r *BrandRepository) GetByTenantID(ctx context.Context, tenantID uuid.UUID) ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("name ASC").
		Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to get brands: %w", err)
	}
	return brands, nil
}
