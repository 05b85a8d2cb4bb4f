package repository

import (
	"context"
	"time"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id int) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Quotation.DiagnosisRequest.Customer").
		Preload("Quotation.Partner.Details").
		Preload("Photos").
		Preload("CustomerInvoice").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *OrderRepository) ListByPartner(ctx context.Context, partnerID int, page, pageSize int) ([]domain.Order, int64, error) {
	var orders []domain.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Order{}).
		Preload("Quotation.DiagnosisRequest.Customer").
		Joins("JOIN quotations ON quotations.id = orders.quotation_id").
		Where("quotations.partner_id = ?", partnerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("orders.created_at DESC").Find(&orders).Error

	return orders, total, err
}

func (r *OrderRepository) List(ctx context.Context, page, pageSize int, status domain.OrderStatus) ([]domain.Order, int64, error) {
	var orders []domain.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Order{}).
		Preload("Quotation.DiagnosisRequest.Customer").
		Preload("Quotation.Partner.Details")

	if status != "" {
		query = query.Where("order_status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&orders).Error

	return orders, total, err
}

// ListBilledInPeriod returns a partner's orders placed in the billing window,
// with quotations preloaded for fee computation.
func (r *OrderRepository) ListBilledInPeriod(ctx context.Context, partnerID int, from, to time.Time) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Quotation").
		Joins("JOIN quotations ON quotations.id = orders.quotation_id").
		Where("quotations.partner_id = ?", partnerID).
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Where("orders.order_status <> ?", domain.OrderStatusCancelled).
		Find(&orders).Error
	return orders, err
}

// ListCompletedInPeriod returns a partner's orders completed in the billing
// window. Completed orders drive the per-project and rate fee components.
func (r *OrderRepository) ListCompletedInPeriod(ctx context.Context, partnerID int, from, to time.Time) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Quotation").
		Joins("JOIN quotations ON quotations.id = orders.quotation_id").
		Where("quotations.partner_id = ?", partnerID).
		Where("orders.order_status = ?", domain.OrderStatusCompleted).
		Where("orders.completion_date >= ? AND orders.completion_date < ?", from, to).
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) AddPhoto(ctx context.Context, photo *domain.OrderPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *OrderRepository) GetByQuotationID(ctx context.Context, quotationID int) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Where("quotation_id = ?", quotationID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
