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

// QuotationService handles partner bids against diagnosis requests
type QuotationService struct {
	quotationRepo *repository.QuotationRepository
	diagnosisRepo *repository.DiagnosisRepository
	partnerRepo   *repository.PartnerRepository
	logger        *zap.Logger
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(
	quotationRepo *repository.QuotationRepository,
	diagnosisRepo *repository.DiagnosisRepository,
	partnerRepo *repository.PartnerRepository,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		quotationRepo: quotationRepo,
		diagnosisRepo: diagnosisRepo,
		partnerRepo:   partnerRepo,
		logger:        logger,
	}
}

// Submit files a partner's bid. The diagnosis must still be open, inside
// the partner's coverage (or designated to them), and not already bid on
// by the same partner. A RECRUITING request moves to COMPARING on the
// first bid.
func (s *QuotationService) Submit(ctx context.Context, partnerID int, req *domain.SubmitQuotationRequest) (*domain.Quotation, error) {
	diagnosis, err := s.diagnosisRepo.GetByID(ctx, req.DiagnosisRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get diagnosis: %w", err)
	}

	if diagnosis.Status.IsClosed() {
		return nil, ErrDiagnosisClosed
	}

	eligible, err := s.isEligible(ctx, diagnosis, partnerID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, fmt.Errorf("%w: diagnosis outside coverage", ErrPermissionDenied)
	}

	exists, err := s.quotationRepo.ExistsForPartner(ctx, diagnosis.ID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing quotation: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: quotation already submitted", ErrConflict)
	}

	quotation := &domain.Quotation{
		DiagnosisRequestID: diagnosis.ID,
		PartnerID:          partnerID,
		QuotationAmount:    req.QuotationAmount,
		AppealText:         req.AppealText,
	}
	if err := s.quotationRepo.Create(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}

	if diagnosis.Status == domain.DiagnosisStatusRecruiting {
		diagnosis.Status = domain.DiagnosisStatusComparing
		if err := s.diagnosisRepo.Update(ctx, diagnosis); err != nil {
			s.logger.Warn("failed to move diagnosis to comparing", zap.Error(err))
		}
	}

	s.logger.Info("quotation submitted",
		zap.Int("diagnosis_id", diagnosis.ID),
		zap.Int("partner_id", partnerID),
		zap.Int("amount", req.QuotationAmount))

	return s.quotationRepo.GetByID(ctx, quotation.ID)
}

// ListByDiagnosis returns all bids on a diagnosis, oldest first
func (s *QuotationService) ListByDiagnosis(ctx context.Context, diagnosisID int) ([]domain.Quotation, error) {
	if _, err := s.diagnosisRepo.GetByID(ctx, diagnosisID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get diagnosis: %w", err)
	}
	return s.quotationRepo.ListByDiagnosis(ctx, diagnosisID)
}

// ListByPartner pages through a partner's own bids
func (s *QuotationService) ListByPartner(ctx context.Context, partnerID, page, pageSize int) ([]domain.Quotation, int64, error) {
	return s.quotationRepo.ListByPartner(ctx, partnerID, page, pageSize)
}

func (s *QuotationService) isEligible(ctx context.Context, diagnosis *domain.DiagnosisRequest, partnerID int) (bool, error) {
	if diagnosis.Status == domain.DiagnosisStatusDesignated {
		return diagnosis.DesignatedPartnerID != nil && *diagnosis.DesignatedPartnerID == partnerID, nil
	}

	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return false, fmt.Errorf("failed to get partner: %w", err)
	}
	for _, pref := range partner.Prefectures {
		if pref.SupportedPrefecture == diagnosis.Prefecture {
			return true, nil
		}
	}
	return false, nil
}
