package repository

import (
	"context"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"gorm.io/gorm"
)

type FeePlanRepository struct {
	db *gorm.DB
}

func NewFeePlanRepository(db *gorm.DB) *FeePlanRepository {
	return &FeePlanRepository{db: db}
}

// Create inserts a fee plan. When the plan is flagged as default, every
// other plan's default flag is cleared in the same transaction so at most
// one default exists at commit.
func (r *FeePlanRepository) Create(ctx context.Context, plan *domain.FeePlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if plan.IsDefault {
			if err := clearDefaultFlags(tx, 0); err != nil {
				return err
			}
		}
		return tx.Create(plan).Error
	})
}

func (r *FeePlanRepository) GetByID(ctx context.Context, id int) (*domain.FeePlan, error) {
	var plan domain.FeePlan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Update saves a fee plan, clearing other default flags when this plan
// becomes the default.
func (r *FeePlanRepository) Update(ctx context.Context, plan *domain.FeePlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if plan.IsDefault {
			if err := clearDefaultFlags(tx, plan.ID); err != nil {
				return err
			}
		}
		return tx.Save(plan).Error
	})
}

func (r *FeePlanRepository) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Delete(&domain.FeePlan{}, "id = ?", id).Error
}

func (r *FeePlanRepository) List(ctx context.Context) ([]domain.FeePlan, error) {
	var plans []domain.FeePlan
	err := r.db.WithContext(ctx).Order("id ASC").Find(&plans).Error
	return plans, err
}

// GetDefault returns the current default plan, or gorm.ErrRecordNotFound
func (r *FeePlanRepository) GetDefault(ctx context.Context) (*domain.FeePlan, error) {
	var plan domain.FeePlan
	err := r.db.WithContext(ctx).Where("is_default = ?", true).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// CountPartnersOnPlan reports how many partners reference the plan
func (r *FeePlanRepository) CountPartnersOnPlan(ctx context.Context, planID int) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Partner{}).
		Where("fee_plan_id = ?", planID).
		Count(&count).Error
	return int(count), err
}

func clearDefaultFlags(tx *gorm.DB, exceptID int) error {
	return tx.Model(&domain.FeePlan{}).
		Where("is_default = ? AND id <> ?", true, exceptID).
		Update("is_default", false).Error
}
