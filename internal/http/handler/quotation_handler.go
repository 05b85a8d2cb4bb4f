package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/auth"
	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/service"
)

type QuotationHandler struct {
	quotationService *service.QuotationService
	logger           *zap.Logger
}

func NewQuotationHandler(quotationService *service.QuotationService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		logger:           logger,
	}
}

// Submit godoc
// @Summary Submit a quotation
// @Description Submit a bid on an open diagnosis. One quotation per partner per diagnosis.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.SubmitQuotationRequest true "Quotation data"
// @Success 201 {object} domain.Quotation
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse "Outside coverage area"
// @Failure 409 {object} domain.ErrorResponse "Duplicate quotation or diagnosis closed"
// @Security BearerAuth
// @Router /partner/quotations [post]
func (h *QuotationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Submit(r.Context(), auth.PartnerID(r.Context()), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to submit quotation")
		return
	}

	respondJSON(w, http.StatusCreated, quotation)
}

// ListMine godoc
// @Summary List the authenticated partner's quotations
// @Tags Quotations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse[domain.Quotation]
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /partner/quotations [get]
func (h *QuotationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	quotations, total, err := h.quotationService.ListByPartner(r.Context(), auth.PartnerID(r.Context()), page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list quotations")
		return
	}

	respondJSON(w, http.StatusOK, paginated(quotations, total, page, pageSize))
}
