package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
)

// FeePlanService manages fee plans and their assignment to partners
type FeePlanService struct {
	feePlanRepo *repository.FeePlanRepository
	partnerRepo *repository.PartnerRepository
	logger      *zap.Logger
}

// NewFeePlanService creates a new FeePlanService
func NewFeePlanService(
	feePlanRepo *repository.FeePlanRepository,
	partnerRepo *repository.PartnerRepository,
	logger *zap.Logger,
) *FeePlanService {
	return &FeePlanService{
		feePlanRepo: feePlanRepo,
		partnerRepo: partnerRepo,
		logger:      logger,
	}
}

// Create adds a fee plan. Flagging it default clears the previous default
// in the same transaction.
func (s *FeePlanService) Create(ctx context.Context, req *domain.CreateFeePlanRequest) (*domain.FeePlan, error) {
	plan := &domain.FeePlan{
		Name:           req.Name,
		MonthlyFee:     req.MonthlyFee,
		PerOrderFee:    req.PerOrderFee,
		PerProjectFee:  req.PerProjectFee,
		ProjectFeeRate: req.ProjectFeeRate,
		IsDefault:      req.IsDefault,
	}
	if err := s.feePlanRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create fee plan: %w", err)
	}

	s.logger.Info("fee plan created",
		zap.Int("plan_id", plan.ID),
		zap.String("name", plan.Name),
		zap.Bool("is_default", plan.IsDefault))
	return plan, nil
}

func (s *FeePlanService) GetByID(ctx context.Context, id int) (*domain.FeePlan, error) {
	plan, err := s.feePlanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get fee plan: %w", err)
	}
	return plan, nil
}

func (s *FeePlanService) List(ctx context.Context) ([]domain.FeePlan, error) {
	return s.feePlanRepo.List(ctx)
}

// Update edits a fee plan's charge components and default flag
func (s *FeePlanService) Update(ctx context.Context, id int, req *domain.UpdateFeePlanRequest) (*domain.FeePlan, error) {
	plan, err := s.feePlanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get fee plan: %w", err)
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.MonthlyFee != nil {
		plan.MonthlyFee = req.MonthlyFee
	}
	if req.PerOrderFee != nil {
		plan.PerOrderFee = req.PerOrderFee
	}
	if req.PerProjectFee != nil {
		plan.PerProjectFee = req.PerProjectFee
	}
	if req.ProjectFeeRate != nil {
		plan.ProjectFeeRate = req.ProjectFeeRate
	}
	if req.IsDefault != nil {
		plan.IsDefault = *req.IsDefault
	}

	if err := s.feePlanRepo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update fee plan: %w", err)
	}
	return plan, nil
}

// Delete removes an unused fee plan. Plans still referenced by partners
// cannot be removed.
func (s *FeePlanService) Delete(ctx context.Context, id int) error {
	if _, err := s.feePlanRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get fee plan: %w", err)
	}

	count, err := s.feePlanRepo.CountPartnersOnPlan(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count plan usage: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: plan is assigned to %d partners", ErrConflict, count)
	}
	return s.feePlanRepo.Delete(ctx, id)
}

// AssignToPartner attaches a fee plan to a partner for future billing runs
func (s *FeePlanService) AssignToPartner(ctx context.Context, partnerID, planID int) (*domain.Partner, error) {
	if _, err := s.feePlanRepo.GetByID(ctx, planID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get fee plan: %w", err)
	}

	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	partner.FeePlanID = &planID
	if err := s.partnerRepo.Update(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to assign fee plan: %w", err)
	}

	s.logger.Info("fee plan assigned",
		zap.Int("partner_id", partnerID),
		zap.Int("plan_id", planID))
	return s.partnerRepo.GetByID(ctx, partnerID)
}
