package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
	"github.com/gaiheki-navi/broker-api/internal/service"
	"github.com/gaiheki-navi/broker-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestCalculateFees tests the fee breakdown computation
func TestCalculateFees(t *testing.T) {
	monthly := 50000
	perOrder := 10000
	perProject := 20000
	rate := 0.05

	tests := []struct {
		name          string
		plan          *domain.FeePlan
		orderCount    int
		projectCount  int
		projectAmount int
		expected      int
	}{
		{
			name:     "nil plan charges nothing",
			plan:     nil,
			expected: 0,
		},
		{
			name:     "empty plan charges nothing",
			plan:     &domain.FeePlan{Name: "Free"},
			expected: 0,
		},
		{
			name:     "monthly fee only",
			plan:     &domain.FeePlan{MonthlyFee: &monthly},
			expected: 50000,
		},
		{
			name:       "per order fee scales with order count",
			plan:       &domain.FeePlan{PerOrderFee: &perOrder},
			orderCount: 3,
			expected:   30000,
		},
		{
			name:         "per project fee scales with completed projects",
			plan:         &domain.FeePlan{PerProjectFee: &perProject},
			projectCount: 2,
			expected:     40000,
		},
		{
			name:          "rate fee floors fractional yen",
			plan:          &domain.FeePlan{ProjectFeeRate: &rate},
			projectAmount: 1999999, // 5% = 99999.95
			expected:      99999,
		},
		{
			name: "all components combine",
			plan: &domain.FeePlan{
				MonthlyFee:     &monthly,
				PerOrderFee:    &perOrder,
				PerProjectFee:  &perProject,
				ProjectFeeRate: &rate,
			},
			orderCount:    2,
			projectCount:  1,
			projectAmount: 1000000,
			expected:      50000 + 20000 + 20000 + 50000,
		},
		{
			name:       "zero counts charge nothing for count components",
			plan:       &domain.FeePlan{PerOrderFee: &perOrder, PerProjectFee: &perProject},
			orderCount: 0,
			expected:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := service.CalculateFees(tt.plan, tt.orderCount, tt.projectCount, tt.projectAmount)
			assert.Equal(t, tt.expected, b.Total)
		})
	}
}

func TestCalculateTax(t *testing.T) {
	tests := []struct {
		name     string
		amount   int
		rate     float64
		expected int
	}{
		{"exact ten percent", 100000, 0.1, 10000},
		{"rounds down", 99999, 0.1, 9999},
		{"zero amount", 0, 0.1, 0},
		{"zero rate", 100000, 0, 0},
		{"eight percent rounds down", 12345, 0.08, 987},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, service.CalculateTax(tt.amount, tt.rate))
		})
	}
}

func TestDueDateAfter(t *testing.T) {
	tests := []struct {
		name       string
		issue      time.Time
		paymentDay int
		expected   time.Time
	}{
		{
			name:       "mid month issue",
			issue:      time.Date(2025, 8, 15, 10, 30, 0, 0, time.UTC),
			paymentDay: 20,
			expected:   time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "december rolls into next year",
			issue:      time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC),
			paymentDay: 20,
			expected:   time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "payment day 28 works in february",
			issue:      time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			paymentDay: 28,
			expected:   time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, service.DueDateAfter(tt.issue, tt.paymentDay))
		})
	}
}

func createBillingService(t *testing.T, db *gorm.DB) *service.BillingService {
	logger := zap.NewNop()
	numberService := service.NewNumberService(repository.NewSequenceRepository(db), logger)
	return service.NewBillingService(
		db,
		repository.NewCompanyInvoiceRepository(db),
		repository.NewCustomerInvoiceRepository(db),
		repository.NewOrderRepository(db),
		repository.NewPartnerRepository(db),
		repository.NewSettingsRepository(db),
		numberService,
		logger,
	)
}

func TestBillingService_GenerateMonthlyInvoices(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createBillingService(t, db)
	ctx := context.Background()

	plan := testutil.CreateTestFeePlan(t, db, "Standard", testutil.IntPtr(50000), nil)
	partner := testutil.CreateTestPartner(t, db, "Paint Co", "tokyo")
	require.NoError(t, db.Model(&domain.Partner{}).Where("id = ?", partner.ID).
		Update("fee_plan_id", plan.ID).Error)

	t.Run("generates a draft invoice per partner", func(t *testing.T) {
		resp, err := svc.GenerateMonthlyInvoices(ctx, 2025, 7)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Generated)
		assert.Equal(t, 0, resp.Skipped)
		require.Len(t, resp.InvoiceID, 1)

		invoice, err := svc.GetCompanyInvoice(ctx, resp.InvoiceID[0])
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
		assert.Equal(t, 50000, invoice.TotalAmount)
		assert.Equal(t, 5000, invoice.TaxAmount)
		assert.Equal(t, 55000, invoice.GrandTotal)
		assert.Contains(t, invoice.InvoiceNumber, "COMP-202507-")
	})

	t.Run("second run for the same month is a no-op", func(t *testing.T) {
		resp, err := svc.GenerateMonthlyInvoices(ctx, 2025, 7)
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Generated)
		assert.Equal(t, 1, resp.Skipped)
	})

	t.Run("month out of range is rejected", func(t *testing.T) {
		_, err := svc.GenerateMonthlyInvoices(ctx, 2025, 13)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestBillingService_CompanyInvoiceLifecycle(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createBillingService(t, db)
	ctx := context.Background()

	plan := testutil.CreateTestFeePlan(t, db, "Standard", testutil.IntPtr(30000), nil)
	partner := testutil.CreateTestPartner(t, db, "Paint Co", "osaka")
	require.NoError(t, db.Model(&domain.Partner{}).Where("id = ?", partner.ID).
		Update("fee_plan_id", plan.ID).Error)

	resp, err := svc.GenerateMonthlyInvoices(ctx, 2025, 6)
	require.NoError(t, err)
	require.Len(t, resp.InvoiceID, 1)
	invoiceID := resp.InvoiceID[0]

	t.Run("issue moves draft to unpaid with dates", func(t *testing.T) {
		invoice, err := svc.IssueCompanyInvoice(ctx, invoiceID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusUnpaid, invoice.Status)
		assert.NotNil(t, invoice.IssueDate)
		assert.NotNil(t, invoice.DueDate)
	})

	t.Run("issuing twice is rejected", func(t *testing.T) {
		_, err := svc.IssueCompanyInvoice(ctx, invoiceID)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("paying defaults the payment date to now", func(t *testing.T) {
		before := time.Now().Add(-time.Minute)
		invoice, err := svc.SetCompanyInvoiceStatus(ctx, invoiceID, domain.InvoiceStatusPaid, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)
		require.NotNil(t, invoice.PaymentDate)
		assert.True(t, invoice.PaymentDate.After(before))
	})

	t.Run("paid is absorbing", func(t *testing.T) {
		for _, target := range []domain.InvoiceStatus{
			domain.InvoiceStatusUnpaid,
			domain.InvoiceStatusOverdue,
			domain.InvoiceStatusCancelled,
			domain.InvoiceStatusPaid,
		} {
			_, err := svc.SetCompanyInvoiceStatus(ctx, invoiceID, target, nil)
			assert.ErrorIs(t, err, service.ErrInvalidTransition, "PAID -> %s must be rejected", target)
		}
	})

	t.Run("unknown status is rejected before the transition check", func(t *testing.T) {
		_, err := svc.SetCompanyInvoiceStatus(ctx, invoiceID, domain.InvoiceStatus("BOGUS"), nil)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("missing invoice returns not found", func(t *testing.T) {
		_, err := svc.SetCompanyInvoiceStatus(ctx, 999999, domain.InvoiceStatusPaid, nil)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestBillingService_IssueCompanyInvoices(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createBillingService(t, db)
	ctx := context.Background()

	plan := testutil.CreateTestFeePlan(t, db, "Standard", testutil.IntPtr(30000), nil)
	var invoiceIDs []int
	for _, company := range []string{"Paint Co", "Wall Works", "Roof & Co"} {
		partner := testutil.CreateTestPartner(t, db, company, "tokyo")
		require.NoError(t, db.Model(&domain.Partner{}).Where("id = ?", partner.ID).
			Update("fee_plan_id", plan.ID).Error)
	}
	resp, err := svc.GenerateMonthlyInvoices(ctx, 2025, 5)
	require.NoError(t, err)
	require.Len(t, resp.InvoiceID, 3)
	invoiceIDs = resp.InvoiceID

	t.Run("issues every draft among the ids", func(t *testing.T) {
		issued, err := svc.IssueCompanyInvoices(ctx, invoiceIDs[:2])
		require.NoError(t, err)
		assert.Equal(t, 2, issued)

		for _, id := range invoiceIDs[:2] {
			invoice, err := svc.GetCompanyInvoice(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, domain.InvoiceStatusUnpaid, invoice.Status)
			assert.NotNil(t, invoice.IssueDate)
			assert.NotNil(t, invoice.DueDate)
		}
	})

	t.Run("already issued invoices are skipped, not an error", func(t *testing.T) {
		issued, err := svc.IssueCompanyInvoices(ctx, invoiceIDs)
		require.NoError(t, err)
		assert.Equal(t, 1, issued, "only the remaining draft should issue")
	})

	t.Run("no draft among the ids returns not found", func(t *testing.T) {
		_, err := svc.IssueCompanyInvoices(ctx, invoiceIDs)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("unknown ids alone return not found", func(t *testing.T) {
		_, err := svc.IssueCompanyInvoices(ctx, []int{999998, 999999})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("empty id list is invalid", func(t *testing.T) {
		_, err := svc.IssueCompanyInvoices(ctx, nil)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestBillingService_MarkOverdueInvoices(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createBillingService(t, db)
	ctx := context.Background()

	plan := testutil.CreateTestFeePlan(t, db, "Standard", testutil.IntPtr(30000), nil)
	partner := testutil.CreateTestPartner(t, db, "Paint Co", "kyoto")
	require.NoError(t, db.Model(&domain.Partner{}).Where("id = ?", partner.ID).
		Update("fee_plan_id", plan.ID).Error)

	resp, err := svc.GenerateMonthlyInvoices(ctx, 2025, 5)
	require.NoError(t, err)
	require.Len(t, resp.InvoiceID, 1)
	invoiceID := resp.InvoiceID[0]

	_, err = svc.IssueCompanyInvoice(ctx, invoiceID)
	require.NoError(t, err)

	t.Run("unpaid invoice before due date stays unpaid", func(t *testing.T) {
		flipped, err := svc.MarkOverdueInvoices(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 0, flipped)
	})

	t.Run("unpaid invoice past due date flips to overdue", func(t *testing.T) {
		flipped, err := svc.MarkOverdueInvoices(ctx, time.Now().AddDate(0, 3, 0))
		require.NoError(t, err)
		assert.Equal(t, 1, flipped)

		invoice, err := svc.GetCompanyInvoice(ctx, invoiceID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusOverdue, invoice.Status)
	})

	t.Run("overdue invoice can still be paid with a supplied date", func(t *testing.T) {
		paidAt := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
		invoice, err := svc.SetCompanyInvoiceStatus(ctx, invoiceID, domain.InvoiceStatusPaid, &paidAt)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)
		require.NotNil(t, invoice.PaymentDate)
		assert.WithinDuration(t, paidAt, *invoice.PaymentDate, time.Second)
	})

	t.Run("paid invoices are not swept", func(t *testing.T) {
		flipped, err := svc.MarkOverdueInvoices(ctx, time.Now().AddDate(1, 0, 0))
		require.NoError(t, err)
		assert.Equal(t, 0, flipped)

		invoice, err := svc.GetCompanyInvoice(ctx, invoiceID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)
	})
}

func TestBillingService_CustomerInvoiceOwnership(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createBillingService(t, db)
	ctx := context.Background()

	t.Run("missing invoice returns not found", func(t *testing.T) {
		_, err := svc.GetCustomerInvoice(ctx, 999999, 0)
		assert.True(t, errors.Is(err, service.ErrNotFound))
	})

	t.Run("foreign partner cannot see the invoice", func(t *testing.T) {
		_, err := svc.GetCustomerInvoice(ctx, 999999, 12345)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
