package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence scopes. The diagnosis counter never resets (empty period);
// invoice counters reset per year or per year-month.
const (
	ScopeDiagnosis       = "diagnosis"
	ScopeCustomerInvoice = "customer_invoice"
	ScopeCompanyInvoice  = "company_invoice"
)

// SequenceRepository handles database operations for monotonic counters.
// A single table serves diagnosis numbers and both invoice number series,
// keyed by scope and period.
type SequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next atomically retrieves and increments the counter for a scope/period.
// It locks the counter row with SELECT FOR UPDATE so concurrent callers
// serialize on the row and can never read the same value. If no counter
// exists for the scope/period, it creates one starting at 1.
func (r *SequenceRepository) Next(ctx context.Context, scope, period string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		next, err = NextInTx(tx, scope, period)
		return err
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// NextInTx increments the counter inside an already-open transaction.
// Callers that mint a number and insert the numbered row in the same unit
// of work use this so a failed insert rolls the counter back too; numbers
// are then gapless as well as unique.
func NextInTx(tx *gorm.DB, scope, period string) (int, error) {
	var seq domain.Sequence

	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("scope = ? AND period = ?", scope, period).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		seq = domain.Sequence{
			Scope:     scope,
			Period:    period,
			LastValue: 1,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, fmt.Errorf("failed to create sequence: %w", err)
		}
		return 1, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get sequence: %w", result.Error)
	}

	next := seq.LastValue + 1
	if err := tx.Model(&seq).Updates(map[string]interface{}{
		"last_value": next,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return 0, fmt.Errorf("failed to update sequence: %w", err)
	}
	return next, nil
}

// Current retrieves the counter value without incrementing.
// Returns 0 if no counter exists for the scope/period.
func (r *SequenceRepository) Current(ctx context.Context, scope, period string) (int, error) {
	var seq domain.Sequence
	result := r.db.WithContext(ctx).
		Where("scope = ? AND period = ?", scope, period).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get sequence: %w", result.Error)
	}
	return seq.LastValue, nil
}

// Set raises the counter to a specific value, for data migrations where
// numbered rows already exist. Never lowers an existing counter.
func (r *SequenceRepository) Set(ctx context.Context, scope, period string, value int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.Sequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("scope = ? AND period = ?", scope, period).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.Sequence{
				Scope:     scope,
				Period:    period,
				LastValue: value,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create sequence: %w", err)
			}
			return nil
		}
		if result.Error != nil {
			return fmt.Errorf("failed to get sequence: %w", result.Error)
		}

		if value > seq.LastValue {
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_value": value,
				"updated_at": time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update sequence: %w", err)
			}
		}
		return nil
	})
}
