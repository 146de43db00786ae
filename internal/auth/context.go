package auth

import (
	"context"

	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/google/uuid"
)

type authContextKey struct{}
type tenantContextKey struct{}

// WithContext attaches the resolved authorization context to ctx
func WithContext(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, authContextKey{}, ac)
}

// FromContext returns the authorization context stored by the role middleware
func FromContext(ctx context.Context) (*Context, bool) {
	if ctx == nil {
		return nil, false
	}
	ac, ok := ctx.Value(authContextKey{}).(*Context)
	if !ok || ac == nil {
		return nil, false
	}
	return ac, true
}

// ContextWithTenantID records the tenant the caller asked to act in
func ContextWithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tenantID)
}

// TenantIDFromContext returns the requested tenant, if any
func TenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	id, ok := ctx.Value(tenantContextKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

type sessionContextKey struct{}

// ContextWithSession stores the locally verified session claims
func ContextWithSession(ctx context.Context, claims *models.SessionClaims) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, claims)
}

// SessionFromContext returns the session claims verified by the edge layer
func SessionFromContext(ctx context.Context) (*models.SessionClaims, bool) {
	if ctx == nil {
		return nil, false
	}
	claims, ok := ctx.Value(sessionContextKey{}).(*models.SessionClaims)
	return claims, ok && claims != nil
}
