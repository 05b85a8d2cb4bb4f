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

// DepositService manages partner deposit balances. Approving a top-up and
// writing the ledger entry happen in one transaction with the partner row
// locked, so the running balance on the ledger always matches the balance
// column.
type DepositService struct {
	db          *gorm.DB
	depositRepo *repository.DepositRepository
	partnerRepo *repository.PartnerRepository
	logger      *zap.Logger
}

// NewDepositService creates a new DepositService
func NewDepositService(
	db *gorm.DB,
	depositRepo *repository.DepositRepository,
	partnerRepo *repository.PartnerRepository,
	logger *zap.Logger,
) *DepositService {
	return &DepositService{
		db:          db,
		depositRepo: depositRepo,
		partnerRepo: partnerRepo,
		logger:      logger,
	}
}

// CreateRequest files a partner's top-up request for admin review
func (s *DepositService) CreateRequest(ctx context.Context, partnerID int, req *domain.CreateDepositRequest) (*domain.DepositRequest, error) {
	request := &domain.DepositRequest{
		ID:              uuid.New(),
		PartnerID:       partnerID,
		RequestedAmount: req.RequestedAmount,
		Status:          domain.DepositRequestPending,
		PartnerNote:     req.PartnerNote,
	}
	if err := s.depositRepo.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create deposit request: %w", err)
	}

	s.logger.Info("deposit request created",
		zap.String("request_id", request.ID.String()),
		zap.Int("partner_id", partnerID),
		zap.Int("amount", req.RequestedAmount))
	return request, nil
}

// Review approves or rejects a pending request. Approval credits the
// partner balance and appends the DEPOSIT ledger entry atomically.
func (s *DepositService) Review(ctx context.Context, requestID uuid.UUID, req *domain.ReviewDepositRequest) (*domain.DepositRequest, error) {
	request, err := s.depositRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deposit request: %w", err)
	}
	if request.Status != domain.DepositRequestPending {
		return nil, fmt.Errorf("%w: request already reviewed", ErrConflict)
	}

	if !req.Approve {
		request.Status = domain.DepositRequestRejected
		request.AdminNote = req.AdminNote
		if err := s.depositRepo.UpdateRequest(ctx, request); err != nil {
			return nil, fmt.Errorf("failed to reject deposit request: %w", err)
		}
		return request, nil
	}

	amount := request.RequestedAmount
	if req.ApprovedAmount != nil {
		amount = *req.ApprovedAmount
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		partner, err := s.partnerRepo.GetForUpdate(tx, request.PartnerID)
		if err != nil {
			return fmt.Errorf("failed to lock partner: %w", err)
		}

		newBalance := partner.DepositBalance + amount
		if err := tx.Model(partner).Update("deposit_balance", newBalance).Error; err != nil {
			return fmt.Errorf("failed to credit balance: %w", err)
		}

		entry := &domain.DepositHistory{
			ID:          uuid.New(),
			PartnerID:   partner.ID,
			Amount:      amount,
			Type:        domain.DepositEntryDeposit,
			Balance:     newBalance,
			Description: "Deposit approved",
		}
		if err := s.depositRepo.AddHistory(tx, entry); err != nil {
			return fmt.Errorf("failed to write ledger entry: %w", err)
		}

		now := time.Now()
		return tx.Model(request).Updates(map[string]interface{}{
			"status":          domain.DepositRequestApproved,
			"approved_amount": amount,
			"admin_note":      req.AdminNote,
			"approved_at":     now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit request approved",
		zap.String("request_id", request.ID.String()),
		zap.Int("partner_id", request.PartnerID),
		zap.Int("amount", amount))
	return s.depositRepo.GetRequestByID(ctx, requestID)
}

// ListRequests pages through deposit requests; partnerID 0 lists all
func (s *DepositService) ListRequests(ctx context.Context, page, pageSize int, status domain.DepositRequestStatus, partnerID int) ([]domain.DepositRequest, int64, error) {
	return s.depositRepo.ListRequests(ctx, page, pageSize, status, partnerID)
}

// Summary returns a partner's balance with its recent ledger entries
func (s *DepositService) Summary(ctx context.Context, partnerID int) (*domain.DepositSummaryDTO, error) {
	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	history, err := s.depositRepo.ListHistory(ctx, partnerID, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposit history: %w", err)
	}

	return &domain.DepositSummaryDTO{
		Balance: partner.DepositBalance,
		History: history,
	}, nil
}
