package repository

import (
	"context"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings singleton, creating it with defaults on first use
func (r *SettingsRepository) Get(ctx context.Context) (*domain.SystemSettings, error) {
	var settings domain.SystemSettings
	err := r.db.WithContext(ctx).First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		settings = domain.SystemSettings{
			TaxRate:                0.1,
			BillingCyclePaymentDay: 20,
			DefaultReferralFee:     30000,
		}
		if err := r.db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *SettingsRepository) Update(ctx context.Context, settings *domain.SystemSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
