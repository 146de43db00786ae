package repository

import (
	"context"
	"fmt"

	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitRepository handles field visit database operations
type VisitRepository struct {
	db *gorm.DB
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// GetByAssignee retrieves the visits assigned to a profile
func (r *VisitRepository) GetByAssignee(ctx context.Context, tenantID, profileID uuid.UUID, params models.ListParams) ([]models.Visit, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND assigned_to_id = ?", tenantID, profileID)
	return r.find(query, params)
}

// GetByDistributor retrieves the visits of a distributor
func (r *VisitRepository) GetByDistributor(ctx context.Context, tenantID, distributorID uuid.UUID, params models.ListParams) ([]models.Visit, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND distributor_id = ?", tenantID, distributorID)
	return r.find(query, params)
}

func (r *VisitRepository) find(query *gorm.DB, params models.ListParams) ([]models.Visit, error) {
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	query = paginate(query.Order("scheduled_at DESC"), params)

	var visits []models.Visit
	if err := query.Find(&visits).Error; err != nil {
		return nil, fmt.Errorf("failed to get visits: %w", err)
	}
	return visits, nil
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func pageSize(params models.ListParams) int {
	switch {
	case params.Limit <= 0:
		return defaultPageSize
	case params.Limit > maxPageSize:
		return maxPageSize
	}
	return params.Limit
}

func paginate(query *gorm.DB, params models.ListParams) *gorm.DB {
	query = query.Limit(pageSize(params))
	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}
	return query
}
