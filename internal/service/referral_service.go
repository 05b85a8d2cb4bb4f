package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
)

// ReferralService introduces diagnoses to partners against their deposit
// balance. The deduction, the ledger entry and the referral row commit in
// one transaction with the partner row locked, so two concurrent referrals
// can never spend the same balance twice.
type ReferralService struct {
	db            *gorm.DB
	referralRepo  *repository.ReferralRepository
	diagnosisRepo *repository.DiagnosisRepository
	partnerRepo   *repository.PartnerRepository
	depositRepo   *repository.DepositRepository
	logger        *zap.Logger
}

// NewReferralService creates a new ReferralService
func NewReferralService(
	db *gorm.DB,
	referralRepo *repository.ReferralRepository,
	diagnosisRepo *repository.DiagnosisRepository,
	partnerRepo *repository.PartnerRepository,
	depositRepo *repository.DepositRepository,
	logger *zap.Logger,
) *ReferralService {
	return &ReferralService{
		db:            db,
		referralRepo:  referralRepo,
		diagnosisRepo: diagnosisRepo,
		partnerRepo:   partnerRepo,
		depositRepo:   depositRepo,
		logger:        logger,
	}
}

// Create introduces a diagnosis to a partner, deducting the referral fee
// from the partner's deposit balance.
func (s *ReferralService) Create(ctx context.Context, req *domain.CreateReferralRequest) (*domain.Referral, error) {
	diagnosis, err := s.diagnosisRepo.GetByID(ctx, req.DiagnosisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get diagnosis: %w", err)
	}
	if diagnosis.Status.IsClosed() {
		return nil, ErrDiagnosisClosed
	}

	exists, err := s.referralRepo.Exists(ctx, req.DiagnosisID, req.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing referral: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: diagnosis already referred to partner", ErrConflict)
	}

	var referral *domain.Referral
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		partner, err := s.partnerRepo.GetForUpdate(tx, req.PartnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock partner: %w", err)
		}

		fee := diagnosis.ReferralFee
		if partner.DepositBalance < fee {
			return ErrInsufficientDeposit
		}

		newBalance := partner.DepositBalance - fee
		if err := tx.Model(partner).Update("deposit_balance", newBalance).Error; err != nil {
			return fmt.Errorf("failed to deduct balance: %w", err)
		}

		entry := &domain.DepositHistory{
			ID:          uuid.New(),
			PartnerID:   partner.ID,
			Amount:      -fee,
			Type:        domain.DepositEntryDeduction,
			Balance:     newBalance,
			Description: fmt.Sprintf("Referral fee for %s", diagnosis.DiagnosisNumber),
			DiagnosisID: &diagnosis.ID,
		}
		if err := s.depositRepo.AddHistory(tx, entry); err != nil {
			return fmt.Errorf("failed to write ledger entry: %w", err)
		}

		referral = &domain.Referral{
			ID:          uuid.New(),
			DiagnosisID: diagnosis.ID,
			PartnerID:   partner.ID,
			ReferralFee: fee,
		}
		return s.referralRepo.CreateInTx(tx, referral)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("referral created",
		zap.String("diagnosis_number", diagnosis.DiagnosisNumber),
		zap.Int("partner_id", req.PartnerID),
		zap.Int("fee", diagnosis.ReferralFee))
	return referral, nil
}

// List pages through referrals; partnerID 0 lists all
func (s *ReferralService) List(ctx context.Context, page, pageSize, partnerID int) ([]domain.ReferralDTO, int64, error) {
	referrals, total, err := s.referralRepo.List(ctx, page, pageSize, partnerID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list referrals: %w", err)
	}

	dtos := make([]domain.ReferralDTO, 0, len(referrals))
	for _, r := range referrals {
		dto := domain.ReferralDTO{
			ID:          r.ID,
			DiagnosisID: r.DiagnosisID,
			PartnerID:   r.PartnerID,
			ReferralFee: r.ReferralFee,
			EmailSent:   r.EmailSent,
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		}
		if r.Diagnosis != nil {
			dto.DiagnosisNumber = r.Diagnosis.DiagnosisNumber
		}
		if r.Partner != nil && r.Partner.Details != nil {
			dto.PartnerName = r.Partner.Details.CompanyName
		}
		dtos = append(dtos, dto)
	}
	return dtos, total, nil
}
