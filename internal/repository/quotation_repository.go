package repository

import (
	"context"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"gorm.io/gorm"
)

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

func (r *QuotationRepository) Create(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Create(quotation).Error
}

func (r *QuotationRepository) GetByID(ctx context.Context, id int) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("DiagnosisRequest").
		Preload("Partner.Details").
		Where("id = ?", id).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepository) Update(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Save(quotation).Error
}

func (r *QuotationRepository) ListByDiagnosis(ctx context.Context, diagnosisID int) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Partner.Details").
		Where("diagnosis_request_id = ?", diagnosisID).
		Order("created_at ASC").
		Find(&quotations).Error
	return quotations, err
}

func (r *QuotationRepository) ListByPartner(ctx context.Context, partnerID int, page, pageSize int) ([]domain.Quotation, int64, error) {
	var quotations []domain.Quotation
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Preload("DiagnosisRequest.Customer").
		Where("partner_id = ?", partnerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&quotations).Error

	return quotations, total, err
}

// ExistsForPartner reports whether the partner already bid on the diagnosis
func (r *QuotationRepository) ExistsForPartner(ctx context.Context, diagnosisID, partnerID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("diagnosis_request_id = ? AND partner_id = ?", diagnosisID, partnerID).
		Count(&count).Error
	return count > 0, err
}

// ClearSelections resets is_selected on every quotation of a diagnosis.
// Runs inside the Decide transaction so the one-hot selection invariant
// holds at commit regardless of prior state.
func (r *QuotationRepository) ClearSelections(tx *gorm.DB, diagnosisID int) error {
	return tx.Model(&domain.Quotation{}).
		Where("diagnosis_request_id = ?", diagnosisID).
		Update("is_selected", false).Error
}

// MarkSelected flags a single quotation as the winning bid
func (r *QuotationRepository) MarkSelected(tx *gorm.DB, quotationID int) error {
	return tx.Model(&domain.Quotation{}).
		Where("id = ?", quotationID).
		Update("is_selected", true).Error
}
