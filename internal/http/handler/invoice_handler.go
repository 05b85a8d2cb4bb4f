package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/auth"
	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/service"
)

// InvoiceHandler serves both company invoices (admin billing towards
// partners) and customer invoices (partner billing towards homeowners).
type InvoiceHandler struct {
	billingService *service.BillingService
	logger         *zap.Logger
}

func NewInvoiceHandler(billingService *service.BillingService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		billingService: billingService,
		logger:         logger,
	}
}

// GenerateCompanyInvoices godoc
// @Summary Generate monthly company invoices
// @Description Generate draft invoices for all active partners for the given month. Idempotent per partner and period.
// @Tags CompanyInvoices
// @Accept json
// @Produce json
// @Param request body domain.GenerateInvoicesRequest true "Billing period"
// @Success 200 {object} domain.GenerateInvoicesResponse
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/company-invoices/generate [post]
func (h *InvoiceHandler) GenerateCompanyInvoices(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateInvoicesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.billingService.GenerateMonthlyInvoices(r.Context(), req.Year, req.Month)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to generate invoices")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListCompanyInvoices godoc
// @Summary List company invoices
// @Tags CompanyInvoices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(DRAFT, UNPAID, PAID, OVERDUE, CANCELLED)
// @Param partnerId query int false "Filter by partner"
// @Success 200 {object} domain.PaginatedResponse[domain.CompanyInvoice]
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/company-invoices [get]
func (h *InvoiceHandler) ListCompanyInvoices(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := domain.InvoiceStatus(r.URL.Query().Get("status"))
	partnerID, _ := strconv.Atoi(r.URL.Query().Get("partnerId"))

	invoices, total, err := h.billingService.ListCompanyInvoices(r.Context(), page, pageSize, status, partnerID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list invoices")
		return
	}

	respondJSON(w, http.StatusOK, paginated(invoices, total, page, pageSize))
}

// GetCompanyInvoice godoc
// @Summary Get a company invoice
// @Tags CompanyInvoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} domain.CompanyInvoice
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/company-invoices/{id} [get]
func (h *InvoiceHandler) GetCompanyInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	invoice, err := h.billingService.GetCompanyInvoice(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get invoice")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// IssueCompanyInvoice godoc
// @Summary Issue a company invoice
// @Description Move a DRAFT invoice to UNPAID and stamp issue and due dates
// @Tags CompanyInvoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} domain.CompanyInvoice
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Invoice is not a draft"
// @Security BearerAuth
// @Router /admin/company-invoices/{id}/issue [post]
func (h *InvoiceHandler) IssueCompanyInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	invoice, err := h.billingService.IssueCompanyInvoice(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to issue invoice")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// IssueCompanyInvoices godoc
// @Summary Issue company invoices in bulk
// @Description Issue every DRAFT invoice among the given ids. Invoices in other statuses are skipped.
// @Tags CompanyInvoices
// @Accept json
// @Produce json
// @Param request body domain.IssueInvoicesRequest true "Invoice ids"
// @Success 200 {object} domain.IssueInvoicesResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "No draft invoice among the ids"
// @Security BearerAuth
// @Router /admin/company-invoices/issue [post]
func (h *InvoiceHandler) IssueCompanyInvoices(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueInvoicesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	issued, err := h.billingService.IssueCompanyInvoices(r.Context(), req.InvoiceIDs)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to issue invoices")
		return
	}

	respondJSON(w, http.StatusOK, domain.IssueInvoicesResponse{Issued: issued})
}

// SetCompanyInvoiceStatus godoc
// @Summary Set company invoice status
// @Description Explicit status transition. PAID invoices cannot change status again.
// @Tags CompanyInvoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param request body domain.SetInvoiceStatusRequest true "Target status"
// @Success 200 {object} domain.CompanyInvoice
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Invalid transition"
// @Security BearerAuth
// @Router /admin/company-invoices/{id}/status [put]
func (h *InvoiceHandler) SetCompanyInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	var req domain.SetInvoiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.billingService.SetCompanyInvoiceStatus(r.Context(), id, req.Status, req.PaymentDate)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update invoice status")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// CreateCustomerInvoice godoc
// @Summary Create a customer invoice for a completed order
// @Description Create a draft invoice towards the homeowner for a COMPLETED order with a construction amount
// @Tags CustomerInvoices
// @Accept json
// @Produce json
// @Param orderId path int true "Order ID"
// @Success 201 {object} domain.CustomerInvoice
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Order not completed or invoice already exists"
// @Security BearerAuth
// @Router /partner/orders/{orderId}/invoice [post]
func (h *InvoiceHandler) CreateCustomerInvoice(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseIDParam(chi.URLParam(r, "orderId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	invoice, err := h.billingService.CreateCustomerInvoiceForOrder(r.Context(), orderID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create customer invoice")
		return
	}

	respondJSON(w, http.StatusCreated, invoice)
}

// ListCustomerInvoices godoc
// @Summary List the authenticated partner's customer invoices
// @Tags CustomerInvoices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse[domain.CustomerInvoice]
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /partner/customer-invoices [get]
func (h *InvoiceHandler) ListCustomerInvoices(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	invoices, total, err := h.billingService.ListCustomerInvoicesByPartner(r.Context(), auth.PartnerID(r.Context()), page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list customer invoices")
		return
	}

	respondJSON(w, http.StatusOK, paginated(invoices, total, page, pageSize))
}

// GetCustomerInvoice godoc
// @Summary Get a customer invoice
// @Tags CustomerInvoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} domain.CustomerInvoice
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /partner/customer-invoices/{id} [get]
func (h *InvoiceHandler) GetCustomerInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	invoice, err := h.billingService.GetCustomerInvoice(r.Context(), id, auth.PartnerID(r.Context()))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get customer invoice")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// IssueCustomerInvoice godoc
// @Summary Issue a customer invoice
// @Description Move a DRAFT customer invoice to UNPAID and stamp issue and due dates
// @Tags CustomerInvoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} domain.CustomerInvoice
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Invoice is not a draft"
// @Security BearerAuth
// @Router /partner/customer-invoices/{id}/issue [post]
func (h *InvoiceHandler) IssueCustomerInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	invoice, err := h.billingService.IssueCustomerInvoice(r.Context(), id, auth.PartnerID(r.Context()))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to issue customer invoice")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// SetCustomerInvoiceStatus godoc
// @Summary Set customer invoice status
// @Description Explicit status transition. PAID invoices cannot change status again.
// @Tags CustomerInvoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param request body domain.SetInvoiceStatusRequest true "Target status"
// @Success 200 {object} domain.CustomerInvoice
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Invalid transition"
// @Security BearerAuth
// @Router /partner/customer-invoices/{id}/status [put]
func (h *InvoiceHandler) SetCustomerInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	var req domain.SetInvoiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	// Partners can only transition invoices on their own orders. Admins
	// pass partnerID 0 which skips the ownership check.
	partnerID := 0
	if actor, ok := auth.FromContext(r.Context()); ok && actor.IsPartner() {
		partnerID = actor.AccountID
	}

	invoice, err := h.billingService.SetCustomerInvoiceStatus(r.Context(), id, partnerID, req.Status, req.PaymentDate)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update customer invoice status")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}
