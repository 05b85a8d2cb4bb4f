package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gaiheki-navi/broker-api/internal/repository"
)

// NumberService hands out the formatted business numbers.
//
// Diagnosis numbers: GH00001, GH00002, ... (global, never reset)
// Customer invoice numbers: INV-2025-0001 (reset yearly)
// Company invoice numbers: COMP-202508-0001 (reset monthly)
//
// All three series run on locked counter rows, so a number is minted at
// most once no matter how many requests race.
type NumberService struct {
	repo   *repository.SequenceRepository
	logger *zap.Logger
}

// NewNumberService creates a new NumberService
func NewNumberService(repo *repository.SequenceRepository, logger *zap.Logger) *NumberService {
	return &NumberService{repo: repo, logger: logger}
}

// NextDiagnosisNumber mints the next diagnosis number in its own transaction
func (s *NumberService) NextDiagnosisNumber(ctx context.Context) (string, error) {
	seq, err := s.repo.Next(ctx, repository.ScopeDiagnosis, "")
	if err != nil {
		s.logger.Error("failed to allocate diagnosis number", zap.Error(err))
		return "", fmt.Errorf("failed to generate diagnosis number: %w", err)
	}
	return FormatDiagnosisNumber(seq), nil
}

// NextDiagnosisNumberInTx mints the next diagnosis number inside an open
// transaction. Diagnosis creation uses this so the counter increment and
// the numbered row commit or roll back together.
func (s *NumberService) NextDiagnosisNumberInTx(tx *gorm.DB) (string, error) {
	seq, err := repository.NextInTx(tx, repository.ScopeDiagnosis, "")
	if err != nil {
		return "", fmt.Errorf("failed to generate diagnosis number: %w", err)
	}
	return FormatDiagnosisNumber(seq), nil
}

// NextCustomerInvoiceNumberInTx mints the next yearly invoice number
func (s *NumberService) NextCustomerInvoiceNumberInTx(tx *gorm.DB, now time.Time) (string, error) {
	period := now.Format("2006")
	seq, err := repository.NextInTx(tx, repository.ScopeCustomerInvoice, period)
	if err != nil {
		return "", fmt.Errorf("failed to generate customer invoice number: %w", err)
	}
	return fmt.Sprintf("INV-%s-%04d", period, seq), nil
}

// NextCompanyInvoiceNumberInTx mints the next monthly invoice number
func (s *NumberService) NextCompanyInvoiceNumberInTx(tx *gorm.DB, now time.Time) (string, error) {
	period := now.Format("200601")
	seq, err := repository.NextInTx(tx, repository.ScopeCompanyInvoice, period)
	if err != nil {
		return "", fmt.Errorf("failed to generate company invoice number: %w", err)
	}
	return fmt.Sprintf("COMP-%s-%04d", period, seq), nil
}

// FormatDiagnosisNumber renders a counter value as a diagnosis number.
// Values past 99999 widen naturally rather than wrapping.
func FormatDiagnosisNumber(seq int) string {
	return fmt.Sprintf("GH%05d", seq)
}
