package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
	"github.com/gaiheki-navi/broker-api/internal/service"
	"github.com/gaiheki-navi/broker-api/internal/storage"
	"github.com/gaiheki-navi/broker-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createOrderService(t *testing.T, db *gorm.DB) *service.OrderService {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewOrderService(repository.NewOrderRepository(db), store, zap.NewNop())
}

// decideTestOrder walks a diagnosis through bidding and Decide and returns
// the resulting order with its owning partner.
func decideTestOrder(t *testing.T, db *gorm.DB) (*domain.Order, *domain.Partner) {
	ctx := context.Background()
	diagnosisSvc := createDiagnosisService(t, db)
	quotationSvc := createQuotationService(t, db)

	partner := testutil.CreateTestPartner(t, db, "Paint Co", "Tokyo")
	diagnosis, err := diagnosisSvc.Create(ctx, newDiagnosisRequest("Tokyo"))
	require.NoError(t, err)

	bid, err := quotationSvc.Submit(ctx, partner.ID, &domain.SubmitQuotationRequest{
		DiagnosisRequestID: diagnosis.ID,
		QuotationAmount:    1000000,
	})
	require.NoError(t, err)

	order, err := diagnosisSvc.Decide(ctx, diagnosis.ID, bid.ID)
	require.NoError(t, err)
	require.Equal(t, bid.ID, order.QuotationID)
	return order, partner
}

func TestOrderService_Update(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createOrderService(t, db)
	ctx := context.Background()

	order, partner := decideTestOrder(t, db)

	t.Run("foreign partner cannot touch the order", func(t *testing.T) {
		memo := "not my order"
		_, err := svc.Update(ctx, order.ID, partner.ID+1, &domain.UpdateOrderRequest{PartnerMemo: &memo})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("skipping in progress is rejected", func(t *testing.T) {
		completed := domain.OrderStatusCompleted
		_, err := svc.Update(ctx, order.ID, partner.ID, &domain.UpdateOrderRequest{OrderStatus: &completed})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("construction dates are parsed", func(t *testing.T) {
		start := "2025-09-01"
		end := "2025-09-20"
		updated, err := svc.Update(ctx, order.ID, partner.ID, &domain.UpdateOrderRequest{
			ConstructionStartDate: &start,
			ConstructionEndDate:   &end,
			ConstructionAmount:    testutil.IntPtr(1000000),
		})
		require.NoError(t, err)
		require.NotNil(t, updated.ConstructionStartDate)
		assert.Equal(t, "2025-09-01", updated.ConstructionStartDate.Format("2006-01-02"))
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		bad := "01/09/2025"
		_, err := svc.Update(ctx, order.ID, partner.ID, &domain.UpdateOrderRequest{
			ConstructionStartDate: &bad,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("completing stamps the completion date", func(t *testing.T) {
		inProgress := domain.OrderStatusInProgress
		_, err := svc.Update(ctx, order.ID, partner.ID, &domain.UpdateOrderRequest{OrderStatus: &inProgress})
		require.NoError(t, err)

		completed := domain.OrderStatusCompleted
		updated, err := svc.Update(ctx, order.ID, partner.ID, &domain.UpdateOrderRequest{OrderStatus: &completed})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCompleted, updated.OrderStatus)
		assert.NotNil(t, updated.CompletionDate)
	})

	t.Run("completed order rejects further transitions", func(t *testing.T) {
		cancelled := domain.OrderStatusCancelled
		_, err := svc.Update(ctx, order.ID, partner.ID, &domain.UpdateOrderRequest{OrderStatus: &cancelled})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})
}

func TestOrderService_AddPhoto(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createOrderService(t, db)
	ctx := context.Background()

	order, partner := decideTestOrder(t, db)

	t.Run("photo is stored and attached", func(t *testing.T) {
		photo, err := svc.AddPhoto(ctx, order.ID, partner.ID,
			"before.jpg", "image/jpeg", strings.NewReader("fake image bytes"), "before work")
		require.NoError(t, err)
		assert.NotEmpty(t, photo.StoragePath)
		assert.Equal(t, "before work", photo.Caption)

		loaded, err := svc.GetByID(ctx, order.ID, partner.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Photos, 1)
		assert.Equal(t, photo.StoragePath, loaded.Photos[0].StoragePath)
	})

	t.Run("foreign partner cannot upload", func(t *testing.T) {
		_, err := svc.AddPhoto(ctx, order.ID, partner.ID+1,
			"after.jpg", "image/jpeg", strings.NewReader("bytes"), "")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestOrderService_CustomerInvoiceFlow(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	orderSvc := createOrderService(t, db)
	billingSvc := createBillingService(t, db)
	ctx := context.Background()

	order, partner := decideTestOrder(t, db)

	t.Run("invoice requires a completed order", func(t *testing.T) {
		_, err := billingSvc.CreateCustomerInvoiceForOrder(ctx, order.ID)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	inProgress := domain.OrderStatusInProgress
	_, err := orderSvc.Update(ctx, order.ID, partner.ID, &domain.UpdateOrderRequest{
		OrderStatus:        &inProgress,
		ConstructionAmount: testutil.IntPtr(1500000),
	})
	require.NoError(t, err)
	completed := domain.OrderStatusCompleted
	_, err = orderSvc.Update(ctx, order.ID, partner.ID, &domain.UpdateOrderRequest{OrderStatus: &completed})
	require.NoError(t, err)

	t.Run("invoice amount comes from the construction amount", func(t *testing.T) {
		invoice, err := billingSvc.CreateCustomerInvoiceForOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
		assert.Equal(t, 1500000, invoice.TotalAmount)
		assert.Equal(t, 150000, invoice.TaxAmount)
		assert.Equal(t, 1650000, invoice.GrandTotal)
		assert.Contains(t, invoice.InvoiceNumber, "INV-")
	})

	t.Run("one invoice per order", func(t *testing.T) {
		_, err := billingSvc.CreateCustomerInvoiceForOrder(ctx, order.ID)
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("owning partner issues and collects", func(t *testing.T) {
		var invoice domain.CustomerInvoice
		require.NoError(t, db.Where("order_id = ?", order.ID).First(&invoice).Error)

		issued, err := billingSvc.IssueCustomerInvoice(ctx, invoice.ID, partner.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusUnpaid, issued.Status)

		paidAt := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
		paid, err := billingSvc.SetCustomerInvoiceStatus(ctx, invoice.ID, partner.ID, domain.InvoiceStatusPaid, &paidAt)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
		require.NotNil(t, paid.PaymentDate)
		assert.WithinDuration(t, paidAt, *paid.PaymentDate, time.Second)
	})

	t.Run("foreign partner is locked out", func(t *testing.T) {
		var invoice domain.CustomerInvoice
		require.NoError(t, db.Where("order_id = ?", order.ID).First(&invoice).Error)

		_, err := billingSvc.IssueCustomerInvoice(ctx, invoice.ID, partner.ID+1)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
