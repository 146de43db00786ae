package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/companeros-en-ruta/api/internal/auth"
	"github.com/companeros-en-ruta/api/internal/middleware"
	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/companeros-en-ruta/api/internal/services"
	"github.com/companeros-en-ruta/api/pkg/respond"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type LoyaltyHandler struct {
	service *services.LoyaltyService
}

func NewLoyaltyHandler(service *services.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{service: service}
}

// ListBrands lists the brands of the admin's tenant
func (h *LoyaltyHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	brands, err := h.service.ListTenantBrands(r.Context(), ac, accessInfo(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list brands")
		respond.Error(w, http.StatusInternalServerError, "Failed to list brands")
		return
	}
	respond.JSON(w, http.StatusOK, brands)
}

// ListBrandPromotions lists promotions of a brand chosen by an admin
func (h *LoyaltyHandler) ListBrandPromotions(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	brandIDStr := chi.URLParam(r, "brandID")
	brandID, err := uuid.Parse(brandIDStr)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid brand ID")
		return
	}

	params, err := listParams(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	promotions, err := h.service.ListBrandPromotionsForAdmin(r.Context(), ac, brandID, params, accessInfo(r))
	if err != nil {
		if services.IsNotFound(err) {
			respond.Error(w, http.StatusNotFound, "Brand not found")
			return
		}
		log.Error().Err(err).Str("brand_id", brandIDStr).Msg("Failed to list promotions")
		respond.Error(w, http.StatusInternalServerError, "Failed to list promotions")
		return
	}
	respond.JSON(w, http.StatusOK, promotions)
}

// ListOwnPromotions lists promotions of the brand manager's brand
func (h *LoyaltyHandler) ListOwnPromotions(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	params, err := listParams(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	promotions, err := h.service.ListOwnBrandPromotions(r.Context(), ac, params)
	if err != nil {
		h.scopedError(w, err, "Failed to list promotions")
		return
	}
	respond.JSON(w, http.StatusOK, promotions)
}

// ListAssignedVisits lists the promotor's own visits
func (h *LoyaltyHandler) ListAssignedVisits(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	params, err := listParams(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	visits, err := h.service.ListAssignedVisits(r.Context(), ac, params)
	if err != nil {
		h.scopedError(w, err, "Failed to list visits")
		return
	}
	respond.JSON(w, http.StatusOK, visits)
}

// ListDistributorVisits lists visits of the sales advisor's distributor
func (h *LoyaltyHandler) ListDistributorVisits(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	params, err := listParams(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	visits, err := h.service.ListDistributorVisits(r.Context(), ac, params)
	if err != nil {
		h.scopedError(w, err, "Failed to list visits")
		return
	}
	respond.JSON(w, http.StatusOK, visits)
}

// ListAuditLogs lists the audit trail of the admin's tenant
func (h *LoyaltyHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	params, err := listParams(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	logs, err := h.service.ListAuditLogs(r.Context(), ac, params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list audit logs")
		respond.Error(w, http.StatusInternalServerError, "Failed to list audit logs")
		return
	}
	respond.JSON(w, http.StatusOK, logs)
}

func (h *LoyaltyHandler) scopedError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, services.ErrNoBrandScope), errors.Is(err, services.ErrNoDistributorScope):
		respond.Error(w, http.StatusForbidden, "Forbidden: "+err.Error())
	default:
		log.Error().Err(err).Msg(message)
		respond.Error(w, http.StatusInternalServerError, message)
	}
}

func listParams(r *http.Request) (models.ListParams, error) {
	q := r.URL.Query()
	params := models.ListParams{Status: q.Get("status")}

	if limit := q.Get("limit"); limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil || v < 0 {
			return params, errors.New("invalid limit")
		}
		params.Limit = v
	}
	if offset := q.Get("offset"); offset != "" {
		v, err := strconv.Atoi(offset)
		if err != nil || v < 0 {
			return params, errors.New("invalid offset")
		}
		params.Offset = v
	}
	return params, nil
}

func accessInfo(r *http.Request) services.AccessInfo {
	return services.AccessInfo{
		IPAddress: middleware.HostOnly(r.RemoteAddr),
		UserAgent: r.UserAgent(),
	}
}
