package repository

import (
	"context"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerInvoiceRepository struct {
	db *gorm.DB
}

func NewCustomerInvoiceRepository(db *gorm.DB) *CustomerInvoiceRepository {
	return &CustomerInvoiceRepository{db: db}
}

func (r *CustomerInvoiceRepository) GetByID(ctx context.Context, id int) (*domain.CustomerInvoice, error) {
	var invoice domain.CustomerInvoice
	err := r.db.WithContext(ctx).
		Preload("Order.Quotation.DiagnosisRequest.Customer").
		Preload("Order.Quotation.Partner.Details").
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *CustomerInvoiceRepository) GetByOrderID(ctx context.Context, orderID int) (*domain.CustomerInvoice, error) {
	var invoice domain.CustomerInvoice
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *CustomerInvoiceRepository) Update(ctx context.Context, invoice *domain.CustomerInvoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// ListByPartner pages through the invoices of a partner's own orders
func (r *CustomerInvoiceRepository) ListByPartner(ctx context.Context, partnerID int, page, pageSize int) ([]domain.CustomerInvoice, int64, error) {
	var invoices []domain.CustomerInvoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.CustomerInvoice{}).
		Preload("Order.Quotation.DiagnosisRequest.Customer").
		Joins("JOIN orders ON orders.id = customer_invoices.order_id").
		Joins("JOIN quotations ON quotations.id = orders.quotation_id").
		Where("quotations.partner_id = ?", partnerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("customer_invoices.created_at DESC").Find(&invoices).Error

	return invoices, total, err
}

// GetForUpdate loads an invoice with a row lock inside a transaction
func (r *CustomerInvoiceRepository) GetForUpdate(tx *gorm.DB, id int) (*domain.CustomerInvoice, error) {
	var invoice domain.CustomerInvoice
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// PartnerOwns reports whether the invoice belongs to one of the partner's
// orders. This walks Order -> Quotation -> Partner, the authorization chain
// for partner-side invoice access.
func (r *CustomerInvoiceRepository) PartnerOwns(ctx context.Context, invoiceID, partnerID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CustomerInvoice{}).
		Joins("JOIN orders ON orders.id = customer_invoices.order_id").
		Joins("JOIN quotations ON quotations.id = orders.quotation_id").
		Where("customer_invoices.id = ? AND quotations.partner_id = ?", invoiceID, partnerID).
		Count(&count).Error
	return count > 0, err
}
