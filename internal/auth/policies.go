package auth

import "github.com/companeros-en-ruta/api/internal/models"

// ScopeBrand copies the assignment's brand, if any
func ScopeBrand(a models.UserRole, ac *Context) bool {
	ac.BrandID = a.BrandID
	return true
}

// RequireBrand admits only assignments bound to a brand
func RequireBrand(a models.UserRole, ac *Context) bool {
	if a.BrandID == nil {
		return false
	}
	ac.BrandID = a.BrandID
	return true
}

// ScopeFieldTeam copies both brand and distributor
func ScopeFieldTeam(a models.UserRole, ac *Context) bool {
	ac.BrandID = a.BrandID
	ac.DistributorID = a.DistributorID
	return true
}

var (
	AdminPolicy = Policy{Role: models.RoleAdmin}

	BrandPolicy = Policy{Role: models.RoleBrand, Scope: RequireBrand}

	PromotorPolicy = Policy{Role: models.RolePromotor, Scope: ScopeFieldTeam}

	AsesorPolicy = Policy{Role: models.RoleAsesorDeVentas, Scope: ScopeFieldTeam}

	SupervisorPolicy = Policy{
		Role:         models.RoleSupervisor,
		Alternatives: []models.Role{models.RoleAdmin},
		Scope:        ScopeBrand,
	}

	ClientPolicy = Policy{Role: models.RoleClient, Scope: ScopeBrand}
)
