package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/auth"
	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/service"
)

type PartnerHandler struct {
	partnerService *service.PartnerService
	logger         *zap.Logger
}

func NewPartnerHandler(partnerService *service.PartnerService, logger *zap.Logger) *PartnerHandler {
	return &PartnerHandler{
		partnerService: partnerService,
		logger:         logger,
	}
}

// List godoc
// @Summary List partners
// @Tags Partners
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param activeOnly query bool false "Only active partners"
// @Success 200 {object} domain.PaginatedResponse[domain.Partner]
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/partners [get]
func (h *PartnerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	activeOnly := r.URL.Query().Get("activeOnly") == "true"

	partners, total, err := h.partnerService.List(r.Context(), page, pageSize, activeOnly)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list partners")
		return
	}

	respondJSON(w, http.StatusOK, paginated(partners, total, page, pageSize))
}

// GetByID godoc
// @Summary Get a partner
// @Tags Partners
// @Produce json
// @Param id path int true "Partner ID"
// @Success 200 {object} domain.Partner
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/partners/{id} [get]
func (h *PartnerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid partner ID")
		return
	}

	partner, err := h.partnerService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get partner")
		return
	}

	respondJSON(w, http.StatusOK, partner)
}

// SetActive godoc
// @Summary Activate or deactivate a partner
// @Tags Partners
// @Produce json
// @Param id path int true "Partner ID"
// @Param active query bool true "New active state"
// @Success 200 {object} domain.Partner
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/partners/{id}/active [put]
func (h *PartnerHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid partner ID")
		return
	}

	active := r.URL.Query().Get("active") == "true"

	partner, err := h.partnerService.SetActive(r.Context(), id, active)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update partner")
		return
	}

	respondJSON(w, http.StatusOK, partner)
}

// Me godoc
// @Summary Get the authenticated partner's profile
// @Tags Partners
// @Produce json
// @Success 200 {object} domain.Partner
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /partner/profile [get]
func (h *PartnerHandler) Me(w http.ResponseWriter, r *http.Request) {
	partner, err := h.partnerService.GetByID(r.Context(), auth.PartnerID(r.Context()))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get profile")
		return
	}

	respondJSON(w, http.StatusOK, partner)
}

// UpdateProfile godoc
// @Summary Update the authenticated partner's profile
// @Description Update company details, bank account and coverage prefectures
// @Tags Partners
// @Accept json
// @Produce json
// @Param request body domain.UpdatePartnerProfileRequest true "Fields to update"
// @Success 200 {object} domain.Partner
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /partner/profile [put]
func (h *PartnerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdatePartnerProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	partner, err := h.partnerService.UpdateProfile(r.Context(), auth.PartnerID(r.Context()), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update profile")
		return
	}

	respondJSON(w, http.StatusOK, partner)
}
