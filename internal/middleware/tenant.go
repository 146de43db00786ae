package middleware

import (
	"net/http"
	"strings"

	"github.com/companeros-en-ruta/api/internal/auth"
	"github.com/companeros-en-ruta/api/pkg/respond"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TenantHeader lets a caller holding roles in several tenants pick one
const TenantHeader = "X-Tenant-ID"

// TenantID parses the optional tenant selector. The value is only a request
// to act in that tenant; admission is still decided by the caller's roles.
func TenantID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantIDStr := strings.TrimSpace(r.Header.Get(TenantHeader))
		if tenantIDStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		tenantID, err := uuid.Parse(tenantIDStr)
		if err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantIDStr).Msg("Invalid tenant ID")
			respond.Error(w, http.StatusBadRequest, "Invalid X-Tenant-ID format")
			return
		}

		ctx := auth.ContextWithTenantID(r.Context(), tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
