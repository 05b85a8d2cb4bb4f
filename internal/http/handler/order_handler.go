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

const maxPhotoUploadMB = 20

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// List godoc
// @Summary List orders
// @Description Admin view of all orders with an optional status filter
// @Tags Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(ORDERED, IN_PROGRESS, COMPLETED, CANCELLED)
// @Success 200 {object} domain.PaginatedResponse[domain.Order]
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := domain.OrderStatus(r.URL.Query().Get("status"))

	orders, total, err := h.orderService.List(r.Context(), page, pageSize, status)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list orders")
		return
	}

	respondJSON(w, http.StatusOK, paginated(orders, total, page, pageSize))
}

// GetByID godoc
// @Summary Get an order
// @Description Get an order with its quotation, diagnosis and photos. Partners only see their own orders.
// @Tags Orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /partner/orders/{id} [get]
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetByID(r.Context(), id, auth.PartnerID(r.Context()))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// ListMine godoc
// @Summary List the authenticated partner's orders
// @Tags Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse[domain.Order]
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /partner/orders [get]
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	orders, total, err := h.orderService.ListByPartner(r.Context(), auth.PartnerID(r.Context()), page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list orders")
		return
	}

	respondJSON(w, http.StatusOK, paginated(orders, total, page, pageSize))
}

// Update godoc
// @Summary Update an order
// @Description Update order status, amounts and construction dates. Status transitions are restricted.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body domain.UpdateOrderRequest true "Fields to update"
// @Success 200 {object} domain.Order
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Invalid status transition"
// @Security BearerAuth
// @Router /partner/orders/{id} [put]
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req domain.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.orderService.Update(r.Context(), id, auth.PartnerID(r.Context()), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// UploadPhoto godoc
// @Summary Upload a construction photo
// @Description Attach a photo to an order owned by the authenticated partner
// @Tags Orders
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Order ID"
// @Param file formData file true "Photo file"
// @Param caption formData string false "Photo caption"
// @Success 201 {object} domain.UploadPhotoResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /partner/orders/{id}/photos [post]
func (h *OrderHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	photo, err := h.orderService.AddPhoto(
		r.Context(),
		id,
		auth.PartnerID(r.Context()),
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		r.FormValue("caption"),
	)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to upload photo")
		return
	}

	respondJSON(w, http.StatusCreated, domain.UploadPhotoResponse{
		ID:          photo.ID,
		StoragePath: photo.StoragePath,
	})
}
