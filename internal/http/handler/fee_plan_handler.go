package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/service"
)

type FeePlanHandler struct {
	feePlanService *service.FeePlanService
	logger         *zap.Logger
}

func NewFeePlanHandler(feePlanService *service.FeePlanService, logger *zap.Logger) *FeePlanHandler {
	return &FeePlanHandler{
		feePlanService: feePlanService,
		logger:         logger,
	}
}

// Create godoc
// @Summary Create a fee plan
// @Description Create a fee plan. Marking it default clears the flag from all other plans.
// @Tags FeePlans
// @Accept json
// @Produce json
// @Param request body domain.CreateFeePlanRequest true "Fee plan data"
// @Success 201 {object} domain.FeePlan
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/fee-plans [post]
func (h *FeePlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFeePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	plan, err := h.feePlanService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create fee plan")
		return
	}

	respondJSON(w, http.StatusCreated, plan)
}

// List godoc
// @Summary List fee plans
// @Tags FeePlans
// @Produce json
// @Success 200 {array} domain.FeePlan
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/fee-plans [get]
func (h *FeePlanHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.feePlanService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list fee plans")
		return
	}

	respondJSON(w, http.StatusOK, plans)
}

// GetByID godoc
// @Summary Get a fee plan
// @Tags FeePlans
// @Produce json
// @Param id path int true "Fee plan ID"
// @Success 200 {object} domain.FeePlan
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/fee-plans/{id} [get]
func (h *FeePlanHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid fee plan ID")
		return
	}

	plan, err := h.feePlanService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get fee plan")
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

// Update godoc
// @Summary Update a fee plan
// @Tags FeePlans
// @Accept json
// @Produce json
// @Param id path int true "Fee plan ID"
// @Param request body domain.UpdateFeePlanRequest true "Fields to update"
// @Success 200 {object} domain.FeePlan
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/fee-plans/{id} [put]
func (h *FeePlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid fee plan ID")
		return
	}

	var req domain.UpdateFeePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	plan, err := h.feePlanService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update fee plan")
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

// Delete godoc
// @Summary Delete a fee plan
// @Description Delete a fee plan. Plans with assigned partners cannot be deleted.
// @Tags FeePlans
// @Param id path int true "Fee plan ID"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Plan has assigned partners"
// @Security BearerAuth
// @Router /admin/fee-plans/{id} [delete]
func (h *FeePlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid fee plan ID")
		return
	}

	if err := h.feePlanService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete fee plan")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignToPartner godoc
// @Summary Assign a fee plan to a partner
// @Tags FeePlans
// @Accept json
// @Produce json
// @Param id path int true "Partner ID"
// @Param request body domain.AssignFeePlanRequest true "Fee plan to assign"
// @Success 200 {object} domain.Partner
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/partners/{id}/fee-plan [put]
func (h *FeePlanHandler) AssignToPartner(w http.ResponseWriter, r *http.Request) {
	partnerID, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid partner ID")
		return
	}

	var req domain.AssignFeePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	partner, err := h.feePlanService.AssignToPartner(r.Context(), partnerID, req.FeePlanID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to assign fee plan")
		return
	}

	respondJSON(w, http.StatusOK, partner)
}
