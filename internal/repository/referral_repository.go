package repository

import (
	"context"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"gorm.io/gorm"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// CreateInTx inserts a referral inside the deduction transaction
func (r *ReferralRepository) CreateInTx(tx *gorm.DB, referral *domain.Referral) error {
	return tx.Create(referral).Error
}

func (r *ReferralRepository) List(ctx context.Context, page, pageSize int, partnerID int) ([]domain.Referral, int64, error) {
	var referrals []domain.Referral
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Referral{}).
		Preload("Diagnosis").
		Preload("Partner.Details")

	if partnerID > 0 {
		query = query.Where("partner_id = ?", partnerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&referrals).Error

	return referrals, total, err
}

// Exists reports whether the diagnosis was already introduced to the partner
func (r *ReferralRepository) Exists(ctx context.Context, diagnosisID, partnerID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Referral{}).
		Where("diagnosis_id = ? AND partner_id = ?", diagnosisID, partnerID).
		Count(&count).Error
	return count > 0, err
}
