package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/service"
)

type ReferralHandler struct {
	referralService *service.ReferralService
	logger          *zap.Logger
}

func NewReferralHandler(referralService *service.ReferralService, logger *zap.Logger) *ReferralHandler {
	return &ReferralHandler{
		referralService: referralService,
		logger:          logger,
	}
}

// Create godoc
// @Summary Refer a diagnosis to a partner
// @Description Introduce an open diagnosis to a partner. The referral fee is deducted from the partner's deposit balance.
// @Tags Referrals
// @Accept json
// @Produce json
// @Param request body domain.CreateReferralRequest true "Referral data"
// @Success 201 {object} domain.Referral
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Insufficient balance, duplicate referral, or diagnosis closed"
// @Security BearerAuth
// @Router /admin/referrals [post]
func (h *ReferralHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	referral, err := h.referralService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create referral")
		return
	}

	respondJSON(w, http.StatusCreated, referral)
}

// List godoc
// @Summary List referrals
// @Tags Referrals
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param partnerId query int false "Filter by partner"
// @Success 200 {object} domain.PaginatedResponse[domain.ReferralDTO]
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/referrals [get]
func (h *ReferralHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	partnerID, _ := strconv.Atoi(r.URL.Query().Get("partnerId"))

	referrals, total, err := h.referralService.List(r.Context(), page, pageSize, partnerID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list referrals")
		return
	}

	respondJSON(w, http.StatusOK, paginated(referrals, total, page, pageSize))
}
