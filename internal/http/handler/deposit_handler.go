package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/auth"
	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/service"
)

type DepositHandler struct {
	depositService *service.DepositService
	logger         *zap.Logger
}

func NewDepositHandler(depositService *service.DepositService, logger *zap.Logger) *DepositHandler {
	return &DepositHandler{
		depositService: depositService,
		logger:         logger,
	}
}

// CreateRequest godoc
// @Summary Request a deposit top-up
// @Description Submit a top-up request for the authenticated partner's deposit balance
// @Tags Deposits
// @Accept json
// @Produce json
// @Param request body domain.CreateDepositRequest true "Requested amount"
// @Success 201 {object} domain.DepositRequest
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /partner/deposits/requests [post]
func (h *DepositHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	request, err := h.depositService.CreateRequest(r.Context(), auth.PartnerID(r.Context()), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create deposit request")
		return
	}

	respondJSON(w, http.StatusCreated, request)
}

// Summary godoc
// @Summary Get the authenticated partner's deposit summary
// @Description Current balance with recent ledger movements
// @Tags Deposits
// @Produce json
// @Success 200 {object} domain.DepositSummaryDTO
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /partner/deposits [get]
func (h *DepositHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.depositService.Summary(r.Context(), auth.PartnerID(r.Context()))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get deposit summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// ListRequests godoc
// @Summary List deposit requests
// @Description Admin list of deposit requests with optional status and partner filters
// @Tags Deposits
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(PENDING, APPROVED, REJECTED)
// @Param partnerId query int false "Filter by partner"
// @Success 200 {object} domain.PaginatedResponse[domain.DepositRequest]
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/deposits/requests [get]
func (h *DepositHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := domain.DepositRequestStatus(r.URL.Query().Get("status"))
	partnerID, _ := strconv.Atoi(r.URL.Query().Get("partnerId"))

	requests, total, err := h.depositService.ListRequests(r.Context(), page, pageSize, status, partnerID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list deposit requests")
		return
	}

	respondJSON(w, http.StatusOK, paginated(requests, total, page, pageSize))
}

// Review godoc
// @Summary Review a deposit request
// @Description Approve or reject a pending deposit request. Approval credits the partner's balance.
// @Tags Deposits
// @Accept json
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Param request body domain.ReviewDepositRequest true "Review decision"
// @Success 200 {object} domain.DepositRequest
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Request already reviewed"
// @Security BearerAuth
// @Router /admin/deposits/requests/{id}/review [post]
func (h *DepositHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request ID: must be a valid UUID")
		return
	}

	var req domain.ReviewDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	request, err := h.depositService.Review(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to review deposit request")
		return
	}

	respondJSON(w, http.StatusOK, request)
}
