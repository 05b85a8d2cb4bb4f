package repository

import (
	"context"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DiagnosisRepository struct {
	db *gorm.DB
}

func NewDiagnosisRepository(db *gorm.DB) *DiagnosisRepository {
	return &DiagnosisRepository{db: db}
}

func (r *DiagnosisRepository) Create(ctx context.Context, diagnosis *domain.DiagnosisRequest) error {
	return r.db.WithContext(ctx).Create(diagnosis).Error
}

func (r *DiagnosisRepository) GetByID(ctx context.Context, id int) (*domain.DiagnosisRequest, error) {
	var diagnosis domain.DiagnosisRequest
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Quotations").
		Preload("Quotations.Partner.Details").
		Where("id = ?", id).
		First(&diagnosis).Error
	if err != nil {
		return nil, err
	}
	return &diagnosis, nil
}

func (r *DiagnosisRepository) GetByNumber(ctx context.Context, number string) (*domain.DiagnosisRequest, error) {
	var diagnosis domain.DiagnosisRequest
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("diagnosis_number = ?", number).
		First(&diagnosis).Error
	if err != nil {
		return nil, err
	}
	return &diagnosis, nil
}

func (r *DiagnosisRepository) Update(ctx context.Context, diagnosis *domain.DiagnosisRequest) error {
	return r.db.WithContext(ctx).Save(diagnosis).Error
}

func (r *DiagnosisRepository) List(ctx context.Context, page, pageSize int, status domain.DiagnosisStatus, prefecture string) ([]domain.DiagnosisRequest, int64, error) {
	var diagnoses []domain.DiagnosisRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.DiagnosisRequest{}).Preload("Customer")

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if prefecture != "" {
		query = query.Where("prefecture = ?", prefecture)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&diagnoses).Error

	return diagnoses, total, err
}

// ListEligible returns the diagnoses a partner may act on, newest first.
// A diagnosis qualifies when its prefecture is inside the partner's coverage,
// or when the partner is the designated one on a DESIGNATED request. Decided
// and cancelled requests never qualify, coverage or not.
func (r *DiagnosisRepository) ListEligible(ctx context.Context, partnerID int) ([]domain.DiagnosisRequest, error) {
	var diagnoses []domain.DiagnosisRequest
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []domain.DiagnosisStatus{
			domain.DiagnosisStatusDecided,
			domain.DiagnosisStatusCancelled,
		}).
		Where(
			r.db.Where("prefecture IN (?)",
				r.db.Model(&domain.PartnerPrefecture{}).
					Select("supported_prefecture").
					Where("partner_id = ?", partnerID),
			).Or("status = ? AND designated_partner_id = ?", domain.DiagnosisStatusDesignated, partnerID),
		).
		Order("created_at DESC").
		Find(&diagnoses).Error
	return diagnoses, err
}

// GetForUpdate loads a diagnosis with a row lock inside a transaction.
// Decide uses this so two decisions on the same request serialize.
func (r *DiagnosisRepository) GetForUpdate(tx *gorm.DB, id int) (*domain.DiagnosisRequest, error) {
	var diagnosis domain.DiagnosisRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&diagnosis).Error
	if err != nil {
		return nil, err
	}
	return &diagnosis, nil
}

func (r *DiagnosisRepository) CountByStatus(ctx context.Context, status domain.DiagnosisStatus) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.DiagnosisRequest{}).
		Where("status = ?", status).Count(&count).Error
	return int(count), err
}
