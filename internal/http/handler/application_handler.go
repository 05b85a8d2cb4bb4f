package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/service"
)

type ApplicationHandler struct {
	partnerService *service.PartnerService
	logger         *zap.Logger
}

func NewApplicationHandler(partnerService *service.PartnerService, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		partnerService: partnerService,
		logger:         logger,
	}
}

// Submit godoc
// @Summary Apply to become a partner
// @Description Public application form for painting companies joining the platform
// @Tags Applications
// @Accept json
// @Produce json
// @Param request body domain.CreatePartnerApplicationRequest true "Application data"
// @Success 201 {object} domain.PartnerApplication
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Email already registered or pending"
// @Router /applications [post]
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePartnerApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	application, err := h.partnerService.SubmitApplication(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to submit application")
		return
	}

	respondJSON(w, http.StatusCreated, application)
}

// List godoc
// @Summary List partner applications
// @Tags Applications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(PENDING, APPROVED, REJECTED)
// @Success 200 {object} domain.PaginatedResponse[domain.PartnerApplication]
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/applications [get]
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := domain.ApplicationStatus(r.URL.Query().Get("status"))

	applications, total, err := h.partnerService.ListApplications(r.Context(), page, pageSize, status)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list applications")
		return
	}

	respondJSON(w, http.StatusOK, paginated(applications, total, page, pageSize))
}

// Review godoc
// @Summary Review a partner application
// @Description Approve or reject a pending application. Approval creates the partner account with its coverage area.
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param request body domain.ReviewApplicationRequest true "Review decision"
// @Success 200 {object} domain.PartnerApplication
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Application already reviewed"
// @Security BearerAuth
// @Router /admin/applications/{id}/review [post]
func (h *ApplicationHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var req domain.ReviewApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	application, err := h.partnerService.ReviewApplication(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to review application")
		return
	}

	respondJSON(w, http.StatusOK, application)
}
