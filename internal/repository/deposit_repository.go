package repository

import (
	"context"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DepositRepository struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

func (r *DepositRepository) CreateRequest(ctx context.Context, request *domain.DepositRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *DepositRepository) GetRequestByID(ctx context.Context, id uuid.UUID) (*domain.DepositRequest, error) {
	var request domain.DepositRequest
	err := r.db.WithContext(ctx).
		Preload("Partner.Details").
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *DepositRepository) UpdateRequest(ctx context.Context, request *domain.DepositRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *DepositRepository) ListRequests(ctx context.Context, page, pageSize int, status domain.DepositRequestStatus, partnerID int) ([]domain.DepositRequest, int64, error) {
	var requests []domain.DepositRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.DepositRequest{}).
		Preload("Partner.Details")

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if partnerID > 0 {
		query = query.Where("partner_id = ?", partnerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&requests).Error

	return requests, total, err
}

// AddHistory appends a ledger entry inside an already-open transaction.
// Ledger entries are only ever written together with the matching balance
// mutation on the partner row.
func (r *DepositRepository) AddHistory(tx *gorm.DB, entry *domain.DepositHistory) error {
	return tx.Create(entry).Error
}

func (r *DepositRepository) ListHistory(ctx context.Context, partnerID int, limit int) ([]domain.DepositHistory, error) {
	var entries []domain.DepositHistory
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
