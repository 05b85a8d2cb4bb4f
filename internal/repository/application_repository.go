package repository

import (
	"context"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"gorm.io/gorm"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, application *domain.PartnerApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int) (*domain.PartnerApplication, error) {
	var application domain.PartnerApplication
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&application).Error
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepository) Update(ctx context.Context, application *domain.PartnerApplication) error {
	return r.db.WithContext(ctx).Save(application).Error
}

func (r *ApplicationRepository) List(ctx context.Context, page, pageSize int, status domain.ApplicationStatus) ([]domain.PartnerApplication, int64, error) {
	var applications []domain.PartnerApplication
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.PartnerApplication{})

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&applications).Error

	return applications, total, err
}

// PendingExistsForEmail reports whether the email already has an open application
func (r *ApplicationRepository) PendingExistsForEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PartnerApplication{}).
		Where("email = ? AND status = ?", email, domain.ApplicationStatusPending).
		Count(&count).Error
	return count > 0, err
}
