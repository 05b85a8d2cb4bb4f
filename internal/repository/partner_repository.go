package repository

import (
	"context"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(ctx context.Context, partner *domain.Partner) error {
	return r.db.WithContext(ctx).Create(partner).Error
}

func (r *PartnerRepository) GetByID(ctx context.Context, id int) (*domain.Partner, error) {
	var partner domain.Partner
	err := r.db.WithContext(ctx).
		Preload("Details").
		Preload("Prefectures").
		Preload("FeePlan").
		Where("id = ?", id).
		First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *PartnerRepository) GetByEmail(ctx context.Context, email string) (*domain.Partner, error) {
	var partner domain.Partner
	err := r.db.WithContext(ctx).
		Preload("Details").
		Where("login_email = ?", email).
		First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *PartnerRepository) Update(ctx context.Context, partner *domain.Partner) error {
	return r.db.WithContext(ctx).Save(partner).Error
}

func (r *PartnerRepository) List(ctx context.Context, page, pageSize int, activeOnly bool) ([]domain.Partner, int64, error) {
	var partners []domain.Partner
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Partner{}).
		Preload("Details").
		Preload("Prefectures").
		Preload("FeePlan")

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&partners).Error

	return partners, total, err
}

// ListActiveWithFeePlan returns the partners billed by invoice generation
func (r *PartnerRepository) ListActiveWithFeePlan(ctx context.Context) ([]domain.Partner, error) {
	var partners []domain.Partner
	err := r.db.WithContext(ctx).
		Preload("Details").
		Preload("FeePlan").
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&partners).Error
	return partners, err
}

func (r *PartnerRepository) UpdateDetails(ctx context.Context, details *domain.PartnerDetails) error {
	return r.db.WithContext(ctx).Save(details).Error
}

// ReplacePrefectures swaps a partner's coverage rows for a new set
func (r *PartnerRepository) ReplacePrefectures(ctx context.Context, partnerID int, prefectures []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("partner_id = ?", partnerID).
			Delete(&domain.PartnerPrefecture{}).Error; err != nil {
			return err
		}
		rows := make([]domain.PartnerPrefecture, 0, len(prefectures))
		for _, pref := range prefectures {
			rows = append(rows, domain.PartnerPrefecture{
				PartnerID:           partnerID,
				SupportedPrefecture: pref,
			})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// GetForUpdate loads a partner with a row lock inside a transaction.
// Balance mutations lock the row so concurrent deductions serialize.
func (r *PartnerRepository) GetForUpdate(tx *gorm.DB, id int) (*domain.Partner, error) {
	var partner domain.Partner
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *PartnerRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Partner{}).
		Where("login_email = ?", email).
		Count(&count).Error
	return count > 0, err
}
