package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
)

// SettingsService exposes the platform-wide billing settings
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	logger       *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo *repository.SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, logger: logger}
}

func (s *SettingsService) Get(ctx context.Context) (*domain.SystemSettings, error) {
	return s.settingsRepo.Get(ctx)
}

// Update applies partial edits to the settings singleton
func (s *SettingsService) Update(ctx context.Context, req *domain.SystemSettingsRequest) (*domain.SystemSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if req.TaxRate != nil {
		settings.TaxRate = *req.TaxRate
	}
	if req.BillingCyclePaymentDay != nil {
		settings.BillingCyclePaymentDay = *req.BillingCyclePaymentDay
	}
	if req.DefaultReferralFee != nil {
		settings.DefaultReferralFee = *req.DefaultReferralFee
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	s.logger.Info("system settings updated",
		zap.Float64("tax_rate", settings.TaxRate),
		zap.Int("payment_day", settings.BillingCyclePaymentDay))
	return settings, nil
}
