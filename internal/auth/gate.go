package auth

import (
	"fmt"

	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/google/uuid"
)

// Context is the request-scoped result of a successful resolution. Handlers
// scope every query with these ids and nothing supplied by the client.
type Context struct {
	AuthUserID    uuid.UUID       `json:"authUserId"`
	UserProfileID uuid.UUID       `json:"userProfileId"`
	TenantID      uuid.UUID       `json:"tenantId"`
	BrandID       *uuid.UUID      `json:"brandId,omitempty"`
	DistributorID *uuid.UUID      `json:"distributorId,omitempty"`
	Role          models.UserRole `json:"role"`
	Roles         []models.Role   `json:"roles"`
}

// HasRole reports whether the profile holds role among its active assignments
func (c *Context) HasRole(role models.Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ScopeFunc copies role-specific ids from the matching assignment into the
// context. Returning false rejects the assignment.
type ScopeFunc func(assignment models.UserRole, ac *Context) bool

// Policy is what a route requires of its caller
type Policy struct {
	Role         models.Role
	Alternatives []models.Role
	Scope        ScopeFunc
}

// Gate decides admission for an already loaded profile. Assignments holding
// the required role are tried before alternatives; within each group the
// first admitting assignment wins. tenantID, when set, must equal the
// assignment's effective tenant.
func Gate(profile *models.UserProfile, policy Policy, tenantID *uuid.UUID) (*Context, error) {
	if profile == nil {
		return nil, newError(KindProfileNotFound, "User profile not found", nil)
	}

	if ac := admit(profile, policy, []models.Role{policy.Role}, tenantID); ac != nil {
		return ac, nil
	}
	if len(policy.Alternatives) > 0 {
		if ac := admit(profile, policy, policy.Alternatives, tenantID); ac != nil {
			return ac, nil
		}
	}

	return nil, newError(KindForbidden, fmt.Sprintf("Forbidden: %s role required", policy.Role), nil)
}

func admit(profile *models.UserProfile, policy Policy, accepted []models.Role, tenantID *uuid.UUID) *Context {
	for _, assignment := range profile.Roles {
		if !assignment.IsActive() || !assignment.Role.Valid() || !containsRole(accepted, assignment.Role) {
			continue
		}

		// A tenant on the assignment overrides the profile's own tenant.
		effective := profile.TenantID
		if assignment.TenantID != nil && *assignment.TenantID != uuid.Nil {
			effective = *assignment.TenantID
		}
		if effective == uuid.Nil {
			continue
		}
		if tenantID != nil && *tenantID != effective {
			continue
		}

		ac := &Context{
			AuthUserID:    profile.UserID,
			UserProfileID: profile.ID,
			TenantID:      effective,
			Role:          assignment,
			Roles:         activeRoles(profile.Roles),
		}
		if policy.Scope != nil && !policy.Scope(assignment, ac) {
			continue
		}
		return ac
	}
	return nil
}

func containsRole(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func activeRoles(assignments []models.UserRole) []models.Role {
	seen := make(map[models.Role]struct{}, len(assignments))
	roles := make([]models.Role, 0, len(assignments))
	for _, a := range assignments {
		if !a.IsActive() || !a.Role.Valid() {
			continue
		}
		if _, ok := seen[a.Role]; ok {
			continue
		}
		seen[a.Role] = struct{}{}
		roles = append(roles, a.Role)
	}
	return roles
}
