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

type DiagnosisHandler struct {
	diagnosisService *service.DiagnosisService
	quotationService *service.QuotationService
	logger           *zap.Logger
}

func NewDiagnosisHandler(diagnosisService *service.DiagnosisService, quotationService *service.QuotationService, logger *zap.Logger) *DiagnosisHandler {
	return &DiagnosisHandler{
		diagnosisService: diagnosisService,
		quotationService: quotationService,
		logger:           logger,
	}
}

// Create godoc
// @Summary Register a diagnosis request
// @Description Create a new diagnosis request with its customer. A sequential diagnosis number is allocated.
// @Tags Diagnoses
// @Accept json
// @Produce json
// @Param request body domain.CreateDiagnosisRequest true "Diagnosis data"
// @Success 201 {object} domain.DiagnosisRequest
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/diagnoses [post]
func (h *DiagnosisHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDiagnosisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	diagnosis, err := h.diagnosisService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create diagnosis")
		return
	}

	respondJSON(w, http.StatusCreated, diagnosis)
}

// List godoc
// @Summary List diagnosis requests
// @Description Get paginated diagnosis requests with optional status and prefecture filters
// @Tags Diagnoses
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(DESIGNATED, RECRUITING, COMPARING, DECIDED, CANCELLED)
// @Param prefecture query string false "Filter by prefecture"
// @Success 200 {object} domain.PaginatedResponse[domain.DiagnosisRequest]
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/diagnoses [get]
func (h *DiagnosisHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := domain.DiagnosisStatus(r.URL.Query().Get("status"))
	prefecture := r.URL.Query().Get("prefecture")

	diagnoses, total, err := h.diagnosisService.List(r.Context(), page, pageSize, status, prefecture)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list diagnoses")
		return
	}

	respondJSON(w, http.StatusOK, paginated(diagnoses, total, page, pageSize))
}

// GetByID godoc
// @Summary Get a diagnosis request
// @Description Get a diagnosis with its customer and quotations
// @Tags Diagnoses
// @Produce json
// @Param id path int true "Diagnosis ID"
// @Success 200 {object} domain.DiagnosisRequest
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/diagnoses/{id} [get]
func (h *DiagnosisHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid diagnosis ID")
		return
	}

	diagnosis, err := h.diagnosisService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get diagnosis")
		return
	}

	respondJSON(w, http.StatusOK, diagnosis)
}

// Update godoc
// @Summary Update a diagnosis request
// @Description Update admin-editable diagnosis fields. Closed diagnoses cannot be edited and DECIDED cannot be set directly.
// @Tags Diagnoses
// @Accept json
// @Produce json
// @Param id path int true "Diagnosis ID"
// @Param request body domain.UpdateDiagnosisRequest true "Fields to update"
// @Success 200 {object} domain.DiagnosisRequest
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/diagnoses/{id} [put]
func (h *DiagnosisHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid diagnosis ID")
		return
	}

	var req domain.UpdateDiagnosisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	diagnosis, err := h.diagnosisService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update diagnosis")
		return
	}

	respondJSON(w, http.StatusOK, diagnosis)
}

// Cancel godoc
// @Summary Cancel a diagnosis request
// @Description Move a diagnosis to CANCELLED. Already closed diagnoses are rejected.
// @Tags Diagnoses
// @Produce json
// @Param id path int true "Diagnosis ID"
// @Success 200 {object} domain.DiagnosisRequest
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/diagnoses/{id}/cancel [post]
func (h *DiagnosisHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid diagnosis ID")
		return
	}

	diagnosis, err := h.diagnosisService.Cancel(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to cancel diagnosis")
		return
	}

	respondJSON(w, http.StatusOK, diagnosis)
}

// Decide godoc
// @Summary Decide the winning quotation
// @Description Select one quotation as the winner, close the diagnosis and create the order. Atomic.
// @Tags Diagnoses
// @Accept json
// @Produce json
// @Param id path int true "Diagnosis ID"
// @Param request body domain.DecideRequest true "Winning quotation"
// @Success 200 {object} domain.Order
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Diagnosis already closed"
// @Security BearerAuth
// @Router /admin/diagnoses/{id}/decide [post]
func (h *DiagnosisHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid diagnosis ID")
		return
	}

	var req domain.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.diagnosisService.Decide(r.Context(), id, req.QuotationID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to decide diagnosis")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// ListQuotations godoc
// @Summary List quotations for a diagnosis
// @Tags Diagnoses
// @Produce json
// @Param id path int true "Diagnosis ID"
// @Success 200 {array} domain.Quotation
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/diagnoses/{id}/quotations [get]
func (h *DiagnosisHandler) ListQuotations(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid diagnosis ID")
		return
	}

	quotations, err := h.quotationService.ListByDiagnosis(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list quotations")
		return
	}

	respondJSON(w, http.StatusOK, quotations)
}

// ListEligible godoc
// @Summary List diagnoses open to the authenticated partner
// @Description Open diagnoses in the partner's coverage area, plus diagnoses designated to the partner
// @Tags Diagnoses
// @Produce json
// @Success 200 {array} domain.EligibleDiagnosisDTO
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /partner/diagnoses/eligible [get]
func (h *DiagnosisHandler) ListEligible(w http.ResponseWriter, r *http.Request) {
	partnerID := auth.PartnerID(r.Context())

	eligible, err := h.diagnosisService.ListEligible(r.Context(), partnerID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list eligible diagnoses")
		return
	}

	respondJSON(w, http.StatusOK, eligible)
}
