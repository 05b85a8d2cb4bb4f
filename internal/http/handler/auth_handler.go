package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// PartnerLogin godoc
// @Summary Partner login
// @Description Authenticate a partner account and issue a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Router /auth/partner/login [post]
func (h *AuthHandler) PartnerLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.authService.PartnerLogin(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to log in")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// AdminLogin godoc
// @Summary Admin login
// @Description Authenticate an admin account and issue a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Router /auth/admin/login [post]
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.authService.AdminLogin(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to log in")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
