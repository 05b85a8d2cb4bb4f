package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
)

// PartnerService handles partner accounts, profiles and the application
// pipeline that turns a signup into an active partner.
type PartnerService struct {
	db              *gorm.DB
	partnerRepo     *repository.PartnerRepository
	applicationRepo *repository.ApplicationRepository
	feePlanRepo     *repository.FeePlanRepository
	logger          *zap.Logger
}

// NewPartnerService creates a new PartnerService
func NewPartnerService(
	db *gorm.DB,
	partnerRepo *repository.PartnerRepository,
	applicationRepo *repository.ApplicationRepository,
	feePlanRepo *repository.FeePlanRepository,
	logger *zap.Logger,
) *PartnerService {
	return &PartnerService{
		db:              db,
		partnerRepo:     partnerRepo,
		applicationRepo: applicationRepo,
		feePlanRepo:     feePlanRepo,
		logger:          logger,
	}
}

// GetByID returns a partner with profile, coverage and fee plan preloaded
func (s *PartnerService) GetByID(ctx context.Context, id int) (*domain.Partner, error) {
	partner, err := s.partnerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	return partner, nil
}

// List pages through partners for the admin view
func (s *PartnerService) List(ctx context.Context, page, pageSize int, activeOnly bool) ([]domain.Partner, int64, error) {
	return s.partnerRepo.List(ctx, page, pageSize, activeOnly)
}

// UpdateProfile applies a partner's edits to their own profile and coverage
func (s *PartnerService) UpdateProfile(ctx context.Context, partnerID int, req *domain.UpdatePartnerProfileRequest) (*domain.Partner, error) {
	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	details := partner.Details
	if details == nil {
		details = &domain.PartnerDetails{PartnerID: partnerID}
	}
	if req.CompanyName != nil {
		details.CompanyName = *req.CompanyName
	}
	if req.RepresentativeName != nil {
		details.RepresentativeName = *req.RepresentativeName
	}
	if req.Phone != nil {
		details.Phone = *req.Phone
	}
	if req.Address != nil {
		details.Address = *req.Address
	}
	if req.WebsiteURL != nil {
		details.WebsiteURL = *req.WebsiteURL
	}
	if req.BusinessHours != nil {
		details.BusinessHours = *req.BusinessHours
	}
	if req.AppealText != nil {
		details.AppealText = *req.AppealText
	}
	if req.BankName != nil {
		details.BankName = *req.BankName
	}
	if req.BankBranchName != nil {
		details.BankBranchName = *req.BankBranchName
	}
	if req.BankAccountType != nil {
		details.BankAccountType = *req.BankAccountType
	}
	if req.BankAccountNumber != nil {
		details.BankAccountNumber = *req.BankAccountNumber
	}
	if req.BankAccountHolder != nil {
		details.BankAccountHolder = *req.BankAccountHolder
	}

	if err := s.partnerRepo.UpdateDetails(ctx, details); err != nil {
		return nil, fmt.Errorf("failed to update partner details: %w", err)
	}

	if req.Prefectures != nil {
		if err := s.partnerRepo.ReplacePrefectures(ctx, partnerID, req.Prefectures); err != nil {
			return nil, fmt.Errorf("failed to update coverage: %w", err)
		}
	}

	return s.partnerRepo.GetByID(ctx, partnerID)
}

// SetActive enables or disables a partner account
func (s *PartnerService) SetActive(ctx context.Context, partnerID int, active bool) (*domain.Partner, error) {
	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	partner.IsActive = active
	if err := s.partnerRepo.Update(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to update partner: %w", err)
	}

	s.logger.Info("partner active flag changed",
		zap.Int("partner_id", partnerID),
		zap.Bool("active", active))
	return partner, nil
}

// SubmitApplication files a public partner signup for review
func (s *PartnerService) SubmitApplication(ctx context.Context, req *domain.CreatePartnerApplicationRequest) (*domain.PartnerApplication, error) {
	taken, err := s.partnerRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	pending, err := s.applicationRepo.PendingExistsForEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check applications: %w", err)
	}
	if pending {
		return nil, fmt.Errorf("%w: application already pending", ErrConflict)
	}

	application := &domain.PartnerApplication{
		CompanyName:         req.CompanyName,
		RepresentativeName:  req.RepresentativeName,
		Email:               req.Email,
		Phone:               req.Phone,
		Address:             req.Address,
		WebsiteURL:          req.WebsiteURL,
		BusinessDescription: req.BusinessDescription,
		SelfPR:              req.SelfPR,
		Prefectures:         req.Prefectures,
		Status:              domain.ApplicationStatusPending,
	}
	if err := s.applicationRepo.Create(ctx, application); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.logger.Info("partner application submitted",
		zap.Int("application_id", application.ID),
		zap.String("company_name", application.CompanyName))
	return application, nil
}

// ListApplications pages through applications for admin review
func (s *PartnerService) ListApplications(ctx context.Context, page, pageSize int, status domain.ApplicationStatus) ([]domain.PartnerApplication, int64, error) {
	return s.applicationRepo.List(ctx, page, pageSize, status)
}

// ReviewApplication approves or rejects a pending application. Approval
// creates the partner account with its profile and coverage rows in one
// transaction; the default fee plan, when one exists, is attached.
func (s *PartnerService) ReviewApplication(ctx context.Context, id int, req *domain.ReviewApplicationRequest) (*domain.PartnerApplication, error) {
	application, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if application.Status != domain.ApplicationStatusPending {
		return nil, fmt.Errorf("%w: application already reviewed", ErrConflict)
	}

	now := time.Now()
	if !req.Approve {
		application.Status = domain.ApplicationStatusRejected
		application.AdminMemo = req.AdminMemo
		application.ReviewedAt = &now
		if err := s.applicationRepo.Update(ctx, application); err != nil {
			return nil, fmt.Errorf("failed to reject application: %w", err)
		}
		return application, nil
	}

	if req.Password == "" {
		return nil, fmt.Errorf("%w: password required for approval", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var defaultPlanID *int
	if plan, err := s.feePlanRepo.GetDefault(ctx); err == nil {
		defaultPlanID = &plan.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get default fee plan: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		partner := &domain.Partner{
			LoginEmail:   application.Email,
			PasswordHash: string(hash),
			IsActive:     true,
			FeePlanID:    defaultPlanID,
		}
		if err := tx.Create(partner).Error; err != nil {
			return fmt.Errorf("failed to create partner: %w", err)
		}

		details := &domain.PartnerDetails{
			PartnerID:          partner.ID,
			CompanyName:        application.CompanyName,
			RepresentativeName: application.RepresentativeName,
			Phone:              application.Phone,
			Address:            application.Address,
			WebsiteURL:         application.WebsiteURL,
			AppealText:         application.SelfPR,
		}
		if err := tx.Create(details).Error; err != nil {
			return fmt.Errorf("failed to create partner details: %w", err)
		}

		coverage := make([]domain.PartnerPrefecture, 0, len(application.Prefectures))
		for _, pref := range application.Prefectures {
			coverage = append(coverage, domain.PartnerPrefecture{
				PartnerID:           partner.ID,
				SupportedPrefecture: pref,
			})
		}
		if len(coverage) > 0 {
			if err := tx.Create(&coverage).Error; err != nil {
				return fmt.Errorf("failed to create coverage: %w", err)
			}
		}

		return tx.Model(application).Updates(map[string]interface{}{
			"status":      domain.ApplicationStatusApproved,
			"admin_memo":  req.AdminMemo,
			"reviewed_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("partner application approved",
		zap.Int("application_id", application.ID),
		zap.String("company_name", application.CompanyName))
	return s.applicationRepo.GetByID(ctx, id)
}
