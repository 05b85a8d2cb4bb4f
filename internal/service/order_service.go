package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
	"github.com/gaiheki-navi/broker-api/internal/storage"
)

// orderTransitions lists the allowed order status changes
var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusOrdered:    {domain.OrderStatusInProgress, domain.OrderStatusCancelled},
	domain.OrderStatusInProgress: {domain.OrderStatusCompleted, domain.OrderStatusCancelled},
}

// OrderService handles the engagement lifecycle after Decide
type OrderService struct {
	orderRepo *repository.OrderRepository
	storage   storage.Storage
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo *repository.OrderRepository, store storage.Storage, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		storage:   store,
		logger:    logger,
	}
}

// GetByID returns an order. A partner caller only sees their own orders.
func (s *OrderService) GetByID(ctx context.Context, id, partnerID int) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if partnerID > 0 && !ownedBy(order, partnerID) {
		return nil, ErrNotFound
	}
	return order, nil
}

// List pages through all orders for the admin view
func (s *OrderService) List(ctx context.Context, page, pageSize int, status domain.OrderStatus) ([]domain.Order, int64, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.orderRepo.List(ctx, page, pageSize, status)
}

// ListByPartner pages through a partner's own orders
func (s *OrderService) ListByPartner(ctx context.Context, partnerID, page, pageSize int) ([]domain.Order, int64, error) {
	return s.orderRepo.ListByPartner(ctx, partnerID, page, pageSize)
}

// Update applies partner edits to an order. Status changes follow the
// ORDERED -> IN_PROGRESS -> COMPLETED chain; either active state may be
// cancelled. Completing stamps the completion date.
func (s *OrderService) Update(ctx context.Context, id, partnerID int, req *domain.UpdateOrderRequest) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if partnerID > 0 && !ownedBy(order, partnerID) {
		return nil, ErrNotFound
	}

	if req.OrderStatus != nil && *req.OrderStatus != order.OrderStatus {
		if !canTransitionOrder(order.OrderStatus, *req.OrderStatus) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.OrderStatus, *req.OrderStatus)
		}
		order.OrderStatus = *req.OrderStatus
		if *req.OrderStatus == domain.OrderStatusCompleted {
			now := time.Now()
			order.CompletionDate = &now
		}
	}
	if req.ConstructionAmount != nil {
		order.ConstructionAmount = req.ConstructionAmount
	}
	if req.ConstructionStartDate != nil {
		date, err := parseDate(*req.ConstructionStartDate)
		if err != nil {
			return nil, err
		}
		order.ConstructionStartDate = date
	}
	if req.ConstructionEndDate != nil {
		date, err := parseDate(*req.ConstructionEndDate)
		if err != nil {
			return nil, err
		}
		order.ConstructionEndDate = date
	}
	if req.PartnerMemo != nil {
		order.PartnerMemo = *req.PartnerMemo
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info("order updated",
		zap.Int("order_id", order.ID),
		zap.String("status", string(order.OrderStatus)))
	return s.orderRepo.GetByID(ctx, id)
}

// AddPhoto stores a construction photo and attaches it to the order
func (s *OrderService) AddPhoto(ctx context.Context, orderID, partnerID int, filename, contentType string, data io.Reader, caption string) (*domain.OrderPhoto, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if partnerID > 0 && !ownedBy(order, partnerID) {
		return nil, ErrNotFound
	}

	path, size, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	photo := &domain.OrderPhoto{
		OrderID:     orderID,
		StoragePath: path,
		ContentType: contentType,
		Caption:     caption,
	}
	if err := s.orderRepo.AddPhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to attach photo: %w", err)
	}

	s.logger.Info("order photo uploaded",
		zap.Int("order_id", orderID),
		zap.String("path", path),
		zap.Int64("size", size))
	return photo, nil
}

func ownedBy(order *domain.Order, partnerID int) bool {
	return order.Quotation != nil && order.Quotation.PartnerID == partnerID
}

func canTransitionOrder(from, to domain.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func parseDate(value string) (*time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("%w: dates must be YYYY-MM-DD", ErrInvalidInput)
	}
	return &date, nil
}
