package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
)

// BillingService owns the invoice state machine and fee computation.
//
// Both invoice kinds share one lifecycle: DRAFT on creation, UNPAID when
// issued, then PAID, OVERDUE or CANCELLED by explicit transition. PAID is
// absorbing; OVERDUE can still be collected (-> PAID) or written off
// (-> CANCELLED).
type BillingService struct {
	db               *gorm.DB
	companyInvoices  *repository.CompanyInvoiceRepository
	customerInvoices *repository.CustomerInvoiceRepository
	orderRepo        *repository.OrderRepository
	partnerRepo      *repository.PartnerRepository
	settingsRepo     *repository.SettingsRepository
	numberService    *NumberService
	logger           *zap.Logger
}

// NewBillingService creates a new BillingService
func NewBillingService(
	db *gorm.DB,
	companyInvoices *repository.CompanyInvoiceRepository,
	customerInvoices *repository.CustomerInvoiceRepository,
	orderRepo *repository.OrderRepository,
	partnerRepo *repository.PartnerRepository,
	settingsRepo *repository.SettingsRepository,
	numberService *NumberService,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		db:               db,
		companyInvoices:  companyInvoices,
		customerInvoices: customerInvoices,
		orderRepo:        orderRepo,
		partnerRepo:      partnerRepo,
		settingsRepo:     settingsRepo,
		numberService:    numberService,
		logger:           logger,
	}
}

// CalculateFees computes a partner's platform fee from its plan.
// Every nil component contributes zero. The rate component rounds down,
// so the operator never overcharges on fractional yen.
func CalculateFees(plan *domain.FeePlan, orderCount, projectCount, projectAmount int) domain.FeeBreakdown {
	b := domain.FeeBreakdown{
		OrderCount:    orderCount,
		ProjectCount:  projectCount,
		ProjectAmount: projectAmount,
	}
	if plan == nil {
		return b
	}
	if plan.MonthlyFee != nil {
		b.MonthlyFee = *plan.MonthlyFee
	}
	if plan.PerOrderFee != nil {
		b.OrderFees = *plan.PerOrderFee * orderCount
	}
	if plan.PerProjectFee != nil {
		b.ProjectFees = *plan.PerProjectFee * projectCount
	}
	if plan.ProjectFeeRate != nil {
		b.RateFees = int(math.Floor(*plan.ProjectFeeRate * float64(projectAmount)))
	}
	b.Total = b.MonthlyFee + b.OrderFees + b.ProjectFees + b.RateFees
	return b
}

// CalculateTax computes consumption tax on an amount, rounding down
func CalculateTax(amount int, rate float64) int {
	return int(math.Floor(float64(amount) * rate))
}

// DueDateAfter returns the configured payment day in the month after the
// issue date. Payment days are capped at 28 in settings, so the result is
// valid in every month.
func DueDateAfter(issue time.Time, paymentDay int) time.Time {
	next := issue.AddDate(0, 1, 0)
	return time.Date(next.Year(), next.Month(), paymentDay, 0, 0, 0, 0, issue.Location())
}

// GenerateMonthlyInvoices creates DRAFT company invoices for every active
// partner with a fee plan for the given billing month. Partners already
// invoiced for the month are skipped, so the run is idempotent.
func (s *BillingService) GenerateMonthlyInvoices(ctx context.Context, year, month int) (*domain.GenerateInvoicesResponse, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month out of range", ErrInvalidInput)
	}

	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	partners, err := s.partnerRepo.ListActiveWithFeePlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}

	resp := &domain.GenerateInvoicesResponse{}
	for _, partner := range partners {
		if partner.FeePlan == nil {
			resp.Skipped++
			continue
		}

		exists, err := s.companyInvoices.ExistsForPeriod(ctx, partner.ID, periodStart)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing invoice: %w", err)
		}
		if exists {
			resp.Skipped++
			continue
		}

		invoiceID, err := s.generateInvoiceForPartner(ctx, &partner, settings, periodStart, periodEnd)
		if err != nil {
			s.logger.Error("failed to generate invoice",
				zap.Int("partner_id", partner.ID),
				zap.Error(err))
			return nil, err
		}
		resp.Generated++
		resp.InvoiceID = append(resp.InvoiceID, invoiceID)
	}

	s.logger.Info("company invoices generated",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("generated", resp.Generated),
		zap.Int("skipped", resp.Skipped))
	return resp, nil
}

func (s *BillingService) generateInvoiceForPartner(ctx context.Context, partner *domain.Partner, settings *domain.SystemSettings, periodStart, periodEnd time.Time) (int, error) {
	billed, err := s.orderRepo.ListBilledInPeriod(ctx, partner.ID, periodStart, periodEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to list billed orders: %w", err)
	}
	completed, err := s.orderRepo.ListCompletedInPeriod(ctx, partner.ID, periodStart, periodEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to list completed orders: %w", err)
	}

	projectAmount := 0
	for _, order := range completed {
		if order.ConstructionAmount != nil {
			projectAmount += *order.ConstructionAmount
		}
	}

	breakdown := CalculateFees(partner.FeePlan, len(billed), len(completed), projectAmount)
	tax := CalculateTax(breakdown.Total, settings.TaxRate)

	var invoiceID int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.numberService.NextCompanyInvoiceNumberInTx(tx, periodStart)
		if err != nil {
			return err
		}

		invoice := &domain.CompanyInvoice{
			InvoiceNumber:      number,
			PartnerID:          partner.ID,
			BillingPeriodStart: periodStart,
			BillingPeriodEnd:   periodEnd.AddDate(0, 0, -1),
			TotalAmount:        breakdown.Total,
			TaxAmount:          tax,
			GrandTotal:         breakdown.Total + tax,
			Status:             domain.InvoiceStatusDraft,
		}
		if err := tx.Create(invoice).Error; err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		items := buildInvoiceItems(invoice.ID, partner.FeePlan, &breakdown)
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("failed to create invoice items: %w", err)
			}
		}
		invoiceID = invoice.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return invoiceID, nil
}

func buildInvoiceItems(invoiceID int, plan *domain.FeePlan, b *domain.FeeBreakdown) []domain.CompanyInvoiceItem {
	var items []domain.CompanyInvoiceItem
	if plan.MonthlyFee != nil {
		items = append(items, domain.CompanyInvoiceItem{
			InvoiceID:   invoiceID,
			Description: "Monthly platform fee",
			Amount:      b.MonthlyFee,
		})
	}
	if plan.PerOrderFee != nil && b.OrderCount > 0 {
		items = append(items, domain.CompanyInvoiceItem{
			InvoiceID:   invoiceID,
			Description: fmt.Sprintf("Order fee (%d orders)", b.OrderCount),
			Amount:      b.OrderFees,
		})
	}
	if plan.PerProjectFee != nil && b.ProjectCount > 0 {
		items = append(items, domain.CompanyInvoiceItem{
			InvoiceID:   invoiceID,
			Description: fmt.Sprintf("Completed project fee (%d projects)", b.ProjectCount),
			Amount:      b.ProjectFees,
		})
	}
	if plan.ProjectFeeRate != nil && b.RateFees > 0 {
		items = append(items, domain.CompanyInvoiceItem{
			InvoiceID:   invoiceID,
			Description: "Revenue-based fee",
			Amount:      b.RateFees,
		})
	}
	return items
}

// IssueCompanyInvoice moves a DRAFT invoice to UNPAID, stamping the issue
// date and the due date derived from the configured payment day.
func (s *BillingService) IssueCompanyInvoice(ctx context.Context, id int) (*domain.CompanyInvoice, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.companyInvoices.GetForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock invoice: %w", err)
		}

		if invoice.Status != domain.InvoiceStatusDraft {
			return fmt.Errorf("%w: only draft invoices can be issued", ErrInvalidTransition)
		}

		now := time.Now()
		due := DueDateAfter(now, settings.BillingCyclePaymentDay)
		return tx.Model(invoice).Updates(map[string]interface{}{
			"status":     domain.InvoiceStatusUnpaid,
			"issue_date": now,
			"due_date":   due,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("company invoice issued", zap.Int("invoice_id", id))
	return s.companyInvoices.GetByID(ctx, id)
}

// IssueCompanyInvoices issues every DRAFT invoice among ids in one
// transaction. Invoices in any other status are skipped, not an error.
// Returns the issued count; ErrNotFound when nothing among ids was DRAFT.
func (s *BillingService) IssueCompanyInvoices(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no invoice ids given", ErrInvalidInput)
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}

	issued := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices, err := s.companyInvoices.ListForUpdate(tx, ids)
		if err != nil {
			return fmt.Errorf("failed to lock invoices: %w", err)
		}

		now := time.Now()
		due := DueDateAfter(now, settings.BillingCyclePaymentDay)
		for i := range invoices {
			if invoices[i].Status != domain.InvoiceStatusDraft {
				continue
			}
			if err := tx.Model(&invoices[i]).Updates(map[string]interface{}{
				"status":     domain.InvoiceStatusUnpaid,
				"issue_date": now,
				"due_date":   due,
			}).Error; err != nil {
				return err
			}
			issued++
		}

		if issued == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("company invoices issued", zap.Int("count", issued))
	return issued, nil
}

// SetCompanyInvoiceStatus applies an explicit status transition.
// The row is locked for the duration, so a concurrent transition on the
// same invoice sees the committed state and PAID stays absorbing.
// When the target is PAID, paymentDate is the date to record; nil means now.
func (s *BillingService) SetCompanyInvoiceStatus(ctx context.Context, id int, target domain.InvoiceStatus, paymentDate *time.Time) (*domain.CompanyInvoice, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, target)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.companyInvoices.GetForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock invoice: %w", err)
		}

		if !invoice.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, invoice.Status, target)
		}

		updates := map[string]interface{}{"status": target}
		if target == domain.InvoiceStatusPaid {
			updates["payment_date"] = paidAtOrNow(paymentDate)
		}
		return tx.Model(invoice).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("company invoice status changed",
		zap.Int("invoice_id", id),
		zap.String("status", string(target)))
	return s.companyInvoices.GetByID(ctx, id)
}

// ListCompanyInvoices pages through company invoices for the admin view
func (s *BillingService) ListCompanyInvoices(ctx context.Context, page, pageSize int, status domain.InvoiceStatus, partnerID int) ([]domain.CompanyInvoice, int64, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.companyInvoices.List(ctx, page, pageSize, status, partnerID)
}

// GetCompanyInvoice returns an invoice with partner and items preloaded
func (s *BillingService) GetCompanyInvoice(ctx context.Context, id int) (*domain.CompanyInvoice, error) {
	invoice, err := s.companyInvoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// CreateCustomerInvoiceForOrder creates the DRAFT customer invoice for a
// completed order. The invoice amount comes from the construction amount.
func (s *BillingService) CreateCustomerInvoiceForOrder(ctx context.Context, orderID int) (*domain.CustomerInvoice, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.OrderStatus != domain.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: order is not completed", ErrInvalidInput)
	}
	if order.ConstructionAmount == nil {
		return nil, fmt.Errorf("%w: order has no construction amount", ErrInvalidInput)
	}
	if _, err := s.customerInvoices.GetByOrderID(ctx, orderID); err == nil {
		return nil, fmt.Errorf("%w: invoice already exists for order", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing invoice: %w", err)
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	amount := *order.ConstructionAmount
	tax := CalculateTax(amount, settings.TaxRate)

	var invoiceID int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.numberService.NextCustomerInvoiceNumberInTx(tx, time.Now())
		if err != nil {
			return err
		}
		invoice := &domain.CustomerInvoice{
			InvoiceNumber: number,
			OrderID:       orderID,
			TotalAmount:   amount,
			TaxAmount:     tax,
			GrandTotal:    amount + tax,
			Status:        domain.InvoiceStatusDraft,
		}
		if err := tx.Create(invoice).Error; err != nil {
			return fmt.Errorf("failed to create customer invoice: %w", err)
		}
		invoiceID = invoice.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer invoice created",
		zap.Int("order_id", orderID),
		zap.Int("invoice_id", invoiceID))
	return s.customerInvoices.GetByID(ctx, invoiceID)
}

// IssueCustomerInvoice moves a DRAFT customer invoice to UNPAID.
// Only the partner that owns the underlying order may issue it.
func (s *BillingService) IssueCustomerInvoice(ctx context.Context, id, partnerID int) (*domain.CustomerInvoice, error) {
	if err := s.checkCustomerInvoiceOwner(ctx, id, partnerID); err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.customerInvoices.GetForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock invoice: %w", err)
		}
		if invoice.Status != domain.InvoiceStatusDraft {
			return fmt.Errorf("%w: only draft invoices can be issued", ErrInvalidTransition)
		}

		now := time.Now()
		due := DueDateAfter(now, settings.BillingCyclePaymentDay)
		return tx.Model(invoice).Updates(map[string]interface{}{
			"status":     domain.InvoiceStatusUnpaid,
			"issue_date": now,
			"due_date":   due,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer invoice issued", zap.Int("invoice_id", id))
	return s.customerInvoices.GetByID(ctx, id)
}

// SetCustomerInvoiceStatus applies an explicit transition on a partner's
// own customer invoice. Pass partnerID 0 for admin callers.
// When the target is PAID, paymentDate is the date to record; nil means now.
func (s *BillingService) SetCustomerInvoiceStatus(ctx context.Context, id, partnerID int, target domain.InvoiceStatus, paymentDate *time.Time) (*domain.CustomerInvoice, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, target)
	}
	if partnerID > 0 {
		if err := s.checkCustomerInvoiceOwner(ctx, id, partnerID); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.customerInvoices.GetForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock invoice: %w", err)
		}
		if !invoice.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, invoice.Status, target)
		}

		updates := map[string]interface{}{"status": target}
		if target == domain.InvoiceStatusPaid {
			updates["payment_date"] = paidAtOrNow(paymentDate)
		}
		return tx.Model(invoice).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer invoice status changed",
		zap.Int("invoice_id", id),
		zap.String("status", string(target)))
	return s.customerInvoices.GetByID(ctx, id)
}

// ListCustomerInvoicesByPartner pages through a partner's own invoices
func (s *BillingService) ListCustomerInvoicesByPartner(ctx context.Context, partnerID, page, pageSize int) ([]domain.CustomerInvoice, int64, error) {
	return s.customerInvoices.ListByPartner(ctx, partnerID, page, pageSize)
}

// GetCustomerInvoice returns an invoice, enforcing ownership for partners
func (s *BillingService) GetCustomerInvoice(ctx context.Context, id, partnerID int) (*domain.CustomerInvoice, error) {
	if partnerID > 0 {
		if err := s.checkCustomerInvoiceOwner(ctx, id, partnerID); err != nil {
			return nil, err
		}
	}
	invoice, err := s.customerInvoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// MarkOverdueInvoices flips UNPAID company invoices past their due date to
// OVERDUE. Runs from the daily sweep; returns how many were flipped.
func (s *BillingService) MarkOverdueInvoices(ctx context.Context, asOf time.Time) (int, error) {
	candidates, err := s.companyInvoices.ListOverdueCandidates(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue candidates: %w", err)
	}

	flipped := 0
	for _, candidate := range candidates {
		if _, err := s.SetCompanyInvoiceStatus(ctx, candidate.ID, domain.InvoiceStatusOverdue, nil); err != nil {
			// A concurrent payment can win the race; that is fine
			if errors.Is(err, ErrInvalidTransition) {
				continue
			}
			return flipped, err
		}
		flipped++
	}
	return flipped, nil
}

func paidAtOrNow(paymentDate *time.Time) time.Time {
	if paymentDate != nil {
		return *paymentDate
	}
	return time.Now()
}

func (s *BillingService) checkCustomerInvoiceOwner(ctx context.Context, invoiceID, partnerID int) error {
	owns, err := s.customerInvoices.PartnerOwns(ctx, invoiceID, partnerID)
	if err != nil {
		return fmt.Errorf("failed to check invoice ownership: %w", err)
	}
	if !owns {
		return ErrNotFound
	}
	return nil
}
