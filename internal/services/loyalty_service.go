package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/companeros-en-ruta/api/internal/auth"
	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/companeros-en-ruta/api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoBrandScope is returned when a brand-scoped read has no brand
	ErrNoBrandScope = errors.New("no brand assigned to role")
	// ErrNoDistributorScope is returned when a distributor-scoped read has no distributor
	ErrNoDistributorScope = errors.New("no distributor assigned to role")
)

// BrandStore is implemented by *repository.BrandRepository
type BrandStore interface {
	GetByID(ctx context.Context, tenantID, brandID uuid.UUID) (*models.Brand, error)
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) ([]models.Brand, error)
}

// PromotionStore is implemented by *repository.PromotionRepository
type PromotionStore interface {
	GetByBrand(ctx context.Context, tenantID, brandID uuid.UUID, params models.ListParams) ([]models.Promotion, error)
}

// VisitStore is implemented by *repository.VisitRepository
type VisitStore interface {
	GetByAssignee(ctx context.Context, tenantID, profileID uuid.UUID, params models.ListParams) ([]models.Visit, error)
	GetByDistributor(ctx context.Context, tenantID, distributorID uuid.UUID, params models.ListParams) ([]models.Visit, error)
}

// AuditStore is implemented by *repository.AuditRepository
type AuditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, params models.ListParams) ([]models.AuditLog, error)
}

// AccessInfo describes the caller for audit entries
type AccessInfo struct {
	IPAddress string
	UserAgent string
}

// LoyaltyService serves role-scoped reads. Every query is scoped by the ids
// of the authorization context; ids supplied by the client are checked
// against it first.
type LoyaltyService struct {
	brands     BrandStore
	promotions PromotionStore
	visits     VisitStore
	audit      AuditStore
}

// NewLoyaltyService creates a new loyalty service
func NewLoyaltyService(brands BrandStore, promotions PromotionStore, visits VisitStore, audit AuditStore) *LoyaltyService {
	return &LoyaltyService{
		brands:     brands,
		promotions: promotions,
		visits:     visits,
		audit:      audit,
	}
}

// ListTenantBrands lists the brands of the caller's tenant
func (s *LoyaltyService) ListTenantBrands(ctx context.Context, ac *auth.Context, info AccessInfo) ([]models.Brand, error) {
	brands, err := s.brands.GetByTenantID(ctx, ac.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	s.record(ctx, ac, info, "brands.list", "brand", "")
	return brands, nil
}

// ListBrandPromotionsForAdmin lists promotions of a brand picked by an admin.
// The brand must belong to the admin's tenant.
func (s *LoyaltyService) ListBrandPromotionsForAdmin(ctx context.Context, ac *auth.Context, brandID uuid.UUID, params models.ListParams, info AccessInfo) ([]models.Promotion, error) {
	brand, err := s.brands.GetByID(ctx, ac.TenantID, brandID)
	if err != nil {
		return nil, err
	}

	promotions, err := s.promotions.GetByBrand(ctx, ac.TenantID, brand.ID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	s.record(ctx, ac, info, "promotions.list", "brand", brand.ID.String())
	return promotions, nil
}

// ListOwnBrandPromotions lists promotions of the brand bound to the caller's role
func (s *LoyaltyService) ListOwnBrandPromotions(ctx context.Context, ac *auth.Context, params models.ListParams) ([]models.Promotion, error) {
	if ac.BrandID == nil {
		return nil, ErrNoBrandScope
	}
	promotions, err := s.promotions.GetByBrand(ctx, ac.TenantID, *ac.BrandID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	return promotions, nil
}

// ListAssignedVisits lists visits assigned to the caller's profile
func (s *LoyaltyService) ListAssignedVisits(ctx context.Context, ac *auth.Context, params models.ListParams) ([]models.Visit, error) {
	visits, err := s.visits.GetByAssignee(ctx, ac.TenantID, ac.UserProfileID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

// ListDistributorVisits lists visits of the distributor bound to the caller's role
func (s *LoyaltyService) ListDistributorVisits(ctx context.Context, ac *auth.Context, params models.ListParams) ([]models.Visit, error) {
	if ac.DistributorID == nil {
		return nil, ErrNoDistributorScope
	}
	visits, err := s.visits.GetByDistributor(ctx, ac.TenantID, *ac.DistributorID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

// ListAuditLogs lists the audit trail of the caller's tenant
func (s *LoyaltyService) ListAuditLogs(ctx context.Context, ac *auth.Context, params models.ListParams) ([]models.AuditLog, error) {
	logs, err := s.audit.ListByTenant(ctx, ac.TenantID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

// record writes an audit entry for admin reads. Failures are logged and do
// not fail the request.
func (s *LoyaltyService) record(ctx context.Context, ac *auth.Context, info AccessInfo, action, resourceType, resourceID string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		TenantID:      ac.TenantID,
		UserProfileID: ac.UserProfileID,
		Role:          ac.Role.Role,
		Action:        action,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		IPAddress:     info.IPAddress,
		UserAgent:     info.UserAgent,
		Status:        "success",
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to write audit log")
	}
}

// IsNotFound reports whether err means the requested resource is outside
// the caller's scope
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrBrandNotFound)
}
