package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gaiheki-navi/broker-api/internal/auth"
	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
)

// AuthService authenticates partner and admin accounts and issues
// session tokens.
type AuthService struct {
	partnerRepo *repository.PartnerRepository
	adminRepo   *repository.AdminRepository
	issuer      *auth.TokenIssuer
	logger      *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	partnerRepo *repository.PartnerRepository,
	adminRepo *repository.AdminRepository,
	issuer *auth.TokenIssuer,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		partnerRepo: partnerRepo,
		adminRepo:   adminRepo,
		issuer:      issuer,
		logger:      logger,
	}
}

// PartnerLogin checks a partner's credentials and returns a session token.
// Inactive accounts are rejected with the same error as bad credentials,
// so probing cannot distinguish them.
func (s *AuthService) PartnerLogin(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	partner, err := s.partnerRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	if !partner.IsActive {
		return nil, ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(partner.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrUnauthorized
	}

	token, expiresAt, err := s.issuer.Issue(partner.ID, partner.LoginEmail, auth.RolePartner)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("partner logged in", zap.Int("partner_id", partner.ID))
	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}, nil
}

// AdminLogin checks an operator's credentials and returns a session token
func (s *AuthService) AdminLogin(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrUnauthorized
	}

	token, expiresAt, err := s.issuer.Issue(admin.ID, admin.Username, auth.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("admin logged in", zap.Int("admin_id", admin.ID))
	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}, nil
}
