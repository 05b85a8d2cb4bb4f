package repository

import (
	"context"
	"time"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompanyInvoiceRepository struct {
	db *gorm.DB
}

func NewCompanyInvoiceRepository(db *gorm.DB) *CompanyInvoiceRepository {
	return &CompanyInvoiceRepository{db: db}
}

func (r *CompanyInvoiceRepository) GetByID(ctx context.Context, id int) (*domain.CompanyInvoice, error) {
	var invoice domain.CompanyInvoice
	err := r.db.WithContext(ctx).
		Preload("Partner.Details").
		Preload("Items").
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *CompanyInvoiceRepository) Update(ctx context.Context, invoice *domain.CompanyInvoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *CompanyInvoiceRepository) List(ctx context.Context, page, pageSize int, status domain.InvoiceStatus, partnerID int) ([]domain.CompanyInvoice, int64, error) {
	var invoices []domain.CompanyInvoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.CompanyInvoice{}).
		Preload("Partner.Details")

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if partnerID > 0 {
		query = query.Where("partner_id = ?", partnerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&invoices).Error

	return invoices, total, err
}

// ExistsForPeriod reports whether the partner is already invoiced for the
// billing window. Generation skips such partners instead of double billing.
func (r *CompanyInvoiceRepository) ExistsForPeriod(ctx context.Context, partnerID int, periodStart time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CompanyInvoice{}).
		Where("partner_id = ? AND billing_period_start = ?", partnerID, periodStart).
		Where("status <> ?", domain.InvoiceStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

// GetForUpdate loads an invoice with a row lock inside a transaction.
// Status transitions lock the row so concurrent updates serialize and the
// PAID-is-absorbing rule cannot be raced around.
func (r *CompanyInvoiceRepository) GetForUpdate(tx *gorm.DB, id int) (*domain.CompanyInvoice, error) {
	var invoice domain.CompanyInvoice
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListForUpdate loads the invoices among ids with row locks, for batch
// transitions inside a transaction. Unknown ids are simply absent from
// the result.
func (r *CompanyInvoiceRepository) ListForUpdate(tx *gorm.DB, ids []int) ([]domain.CompanyInvoice, error) {
	var invoices []domain.CompanyInvoice
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Find(&invoices).Error
	return invoices, err
}

// ListOverdueCandidates returns UNPAID invoices whose due date has passed
func (r *CompanyInvoiceRepository) ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]domain.CompanyInvoice, error) {
	var invoices []domain.CompanyInvoice
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", domain.InvoiceStatusUnpaid, asOf).
		Find(&invoices).Error
	return invoices, err
}
