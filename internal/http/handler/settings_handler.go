package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/service"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
	logger          *zap.Logger
}

func NewSettingsHandler(settingsService *service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

// Get godoc
// @Summary Get platform settings
// @Tags Settings
// @Produce json
// @Success 200 {object} domain.SystemSettings
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/settings [get]
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

// Update godoc
// @Summary Update platform settings
// @Description Update tax rate, billing cycle payment day and default referral fee
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body domain.SystemSettingsRequest true "Fields to update"
// @Success 200 {object} domain.SystemSettings
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/settings [put]
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.SystemSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	settings, err := h.settingsService.Update(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}
