package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
)

// DiagnosisService handles the diagnosis request lifecycle, from intake
// with a freshly minted diagnosis number through the Decide transition
// that closes bidding and places the order.
type DiagnosisService struct {
	db            *gorm.DB
	diagnosisRepo *repository.DiagnosisRepository
	quotationRepo *repository.QuotationRepository
	customerRepo  *repository.CustomerRepository
	settingsRepo  *repository.SettingsRepository
	numberService *NumberService
	logger        *zap.Logger
}

// NewDiagnosisService creates a new DiagnosisService
func NewDiagnosisService(
	db *gorm.DB,
	diagnosisRepo *repository.DiagnosisRepository,
	quotationRepo *repository.QuotationRepository,
	customerRepo *repository.CustomerRepository,
	settingsRepo *repository.SettingsRepository,
	numberService *NumberService,
	logger *zap.Logger,
) *DiagnosisService {
	return &DiagnosisService{
		db:            db,
		diagnosisRepo: diagnosisRepo,
		quotationRepo: quotationRepo,
		customerRepo:  customerRepo,
		settingsRepo:  settingsRepo,
		numberService: numberService,
		logger:        logger,
	}
}

// Create registers a new diagnosis request. The customer row, the number
// allocation and the request insert run in one transaction: a failed insert
// rolls the counter back, so committed numbers are gapless.
func (s *DiagnosisService) Create(ctx context.Context, req *domain.CreateDiagnosisRequest) (*domain.DiagnosisRequest, error) {
	referralFee := 0
	if req.ReferralFee != nil {
		referralFee = *req.ReferralFee
	} else {
		settings, err := s.settingsRepo.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		referralFee = settings.DefaultReferralFee
	}

	status := domain.DiagnosisStatusRecruiting
	if req.DesignatedPartnerID != nil {
		status = domain.DiagnosisStatusDesignated
	}

	var diagnosis *domain.DiagnosisRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer := &domain.Customer{
			CustomerName:        req.CustomerName,
			CustomerEmail:       req.CustomerEmail,
			CustomerPhone:       req.CustomerPhone,
			ConstructionAddress: req.ConstructionAddress,
		}
		if err := tx.Create(customer).Error; err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}

		number, err := s.numberService.NextDiagnosisNumberInTx(tx)
		if err != nil {
			return err
		}

		diagnosis = &domain.DiagnosisRequest{
			DiagnosisNumber:     number,
			CustomerID:          customer.ID,
			Prefecture:          req.Prefecture,
			FloorArea:           req.FloorArea,
			CurrentSituation:    req.CurrentSituation,
			ConstructionType:    req.ConstructionType,
			Status:              status,
			DesignatedPartnerID: req.DesignatedPartnerID,
			ReferralFee:         referralFee,
			AdminNote:           req.AdminNote,
		}
		if err := tx.Create(diagnosis).Error; err != nil {
			return fmt.Errorf("failed to create diagnosis request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("diagnosis request created",
		zap.String("diagnosis_number", diagnosis.DiagnosisNumber),
		zap.String("prefecture", diagnosis.Prefecture),
		zap.String("status", string(diagnosis.Status)))

	return s.diagnosisRepo.GetByID(ctx, diagnosis.ID)
}

// GetByID returns a diagnosis with customer and quotations preloaded
func (s *DiagnosisService) GetByID(ctx context.Context, id int) (*domain.DiagnosisRequest, error) {
	diagnosis, err := s.diagnosisRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get diagnosis: %w", err)
	}
	return diagnosis, nil
}

// List pages through diagnoses for the admin view
func (s *DiagnosisService) List(ctx context.Context, page, pageSize int, status domain.DiagnosisStatus, prefecture string) ([]domain.DiagnosisRequest, int64, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.diagnosisRepo.List(ctx, page, pageSize, status, prefecture)
}

// Update applies admin edits to an open diagnosis
func (s *DiagnosisService) Update(ctx context.Context, id int, req *domain.UpdateDiagnosisRequest) (*domain.DiagnosisRequest, error) {
	diagnosis, err := s.diagnosisRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get diagnosis: %w", err)
	}

	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		// DECIDED is only reachable through Decide; it needs the winning
		// quotation and the order created in the same transaction
		if *req.Status == domain.DiagnosisStatusDecided {
			return nil, fmt.Errorf("%w: use decide to select a quotation", ErrInvalidInput)
		}
		if diagnosis.Status.IsClosed() {
			return nil, ErrDiagnosisClosed
		}
		diagnosis.Status = *req.Status
	}
	if req.Prefecture != nil {
		diagnosis.Prefecture = *req.Prefecture
	}
	if req.FloorArea != nil {
		diagnosis.FloorArea = *req.FloorArea
	}
	if req.CurrentSituation != nil {
		diagnosis.CurrentSituation = *req.CurrentSituation
	}
	if req.ConstructionType != nil {
		diagnosis.ConstructionType = *req.ConstructionType
	}
	if req.ReferralFee != nil {
		diagnosis.ReferralFee = *req.ReferralFee
	}
	if req.AdminNote != nil {
		diagnosis.AdminNote = *req.AdminNote
	}

	if err := s.diagnosisRepo.Update(ctx, diagnosis); err != nil {
		return nil, fmt.Errorf("failed to update diagnosis: %w", err)
	}
	return s.diagnosisRepo.GetByID(ctx, id)
}

// Cancel closes an open diagnosis without a winner
func (s *DiagnosisService) Cancel(ctx context.Context, id int) (*domain.DiagnosisRequest, error) {
	diagnosis, err := s.diagnosisRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get diagnosis: %w", err)
	}
	if diagnosis.Status.IsClosed() {
		return nil, ErrDiagnosisClosed
	}

	diagnosis.Status = domain.DiagnosisStatusCancelled
	if err := s.diagnosisRepo.Update(ctx, diagnosis); err != nil {
		return nil, fmt.Errorf("failed to cancel diagnosis: %w", err)
	}

	s.logger.Info("diagnosis cancelled",
		zap.String("diagnosis_number", diagnosis.DiagnosisNumber))
	return diagnosis, nil
}

// ListEligible returns a partner's actionable queue, newest first
func (s *DiagnosisService) ListEligible(ctx context.Context, partnerID int) ([]domain.EligibleDiagnosisDTO, error) {
	diagnoses, err := s.diagnosisRepo.ListEligible(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible diagnoses: %w", err)
	}

	dtos := make([]domain.EligibleDiagnosisDTO, 0, len(diagnoses))
	for _, d := range diagnoses {
		hasOwn, err := s.quotationRepo.ExistsForPartner(ctx, d.ID, partnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to check quotation: %w", err)
		}
		dtos = append(dtos, domain.EligibleDiagnosisDTO{
			ID:               d.ID,
			DiagnosisNumber:  d.DiagnosisNumber,
			Prefecture:       d.Prefecture,
			FloorArea:        d.FloorArea,
			CurrentSituation: d.CurrentSituation,
			ConstructionType: d.ConstructionType,
			Status:           d.Status,
			ReferralFee:      d.ReferralFee,
			IsDesignated:     d.DesignatedPartnerID != nil && *d.DesignatedPartnerID == partnerID,
			HasOwnQuotation:  hasOwn,
			CreatedAt:        d.CreatedAt.Format(time.RFC3339),
		})
	}
	return dtos, nil
}

// Decide selects the winning quotation, closes the diagnosis and returns
// the order created for the winner.
//
// One transaction, with the diagnosis row locked first: clear every
// selection flag on the request, set the winner's flag, move the status to
// DECIDED and create the order. A concurrent Decide on the same request
// blocks on the lock and then fails the closed-state check, so exactly one
// winner and exactly one order can ever exist.
func (s *DiagnosisService) Decide(ctx context.Context, diagnosisID, quotationID int) (*domain.Order, error) {
	var order *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		diagnosis, err := s.diagnosisRepo.GetForUpdate(tx, diagnosisID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock diagnosis: %w", err)
		}

		if diagnosis.Status.IsClosed() {
			return ErrDiagnosisClosed
		}

		var quotation domain.Quotation
		if err := tx.Where("id = ? AND diagnosis_request_id = ?", quotationID, diagnosisID).
			First(&quotation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: quotation does not belong to this diagnosis", ErrNotFound)
			}
			return fmt.Errorf("failed to get quotation: %w", err)
		}

		if err := s.quotationRepo.ClearSelections(tx, diagnosisID); err != nil {
			return fmt.Errorf("failed to clear selections: %w", err)
		}
		if err := s.quotationRepo.MarkSelected(tx, quotationID); err != nil {
			return fmt.Errorf("failed to mark selection: %w", err)
		}

		if err := tx.Model(&domain.DiagnosisRequest{}).
			Where("id = ?", diagnosisID).
			Update("status", domain.DiagnosisStatusDecided).Error; err != nil {
			return fmt.Errorf("failed to update diagnosis status: %w", err)
		}

		order = &domain.Order{
			QuotationID: quotationID,
			OrderStatus: domain.OrderStatusOrdered,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("diagnosis decided",
		zap.Int("diagnosis_id", diagnosisID),
		zap.Int("quotation_id", quotationID),
		zap.Int("order_id", order.ID))

	if err := s.db.WithContext(ctx).Preload("Quotation").
		Where("id = ?", order.ID).First(order).Error; err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return order, nil
}
