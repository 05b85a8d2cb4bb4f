package service_test

import (
	"context"
	"testing"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
	"github.com/gaiheki-navi/broker-api/internal/service"
	"github.com/gaiheki-navi/broker-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createDiagnosisService(t *testing.T, db *gorm.DB) *service.DiagnosisService {
	logger := zap.NewNop()
	numberService := service.NewNumberService(repository.NewSequenceRepository(db), logger)
	return service.NewDiagnosisService(
		db,
		repository.NewDiagnosisRepository(db),
		repository.NewQuotationRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewSettingsRepository(db),
		numberService,
		logger,
	)
}

func createQuotationService(t *testing.T, db *gorm.DB) *service.QuotationService {
	logger := zap.NewNop()
	return service.NewQuotationService(
		repository.NewQuotationRepository(db),
		repository.NewDiagnosisRepository(db),
		repository.NewPartnerRepository(db),
		logger,
	)
}

func newDiagnosisRequest(prefecture string) *domain.CreateDiagnosisRequest {
	return &domain.CreateDiagnosisRequest{
		CustomerName:  "Tanaka Taro",
		CustomerPhone: "090-1234-5678",
		Prefecture:    prefecture,
		FloorArea:     "30-40",
	}
}

func TestDiagnosisService_Create(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createDiagnosisService(t, db)
	ctx := context.Background()

	t.Run("assigns sequential diagnosis numbers", func(t *testing.T) {
		first, err := svc.Create(ctx, newDiagnosisRequest("Tokyo"))
		require.NoError(t, err)
		assert.Equal(t, "GH00001", first.DiagnosisNumber)
		assert.Equal(t, domain.DiagnosisStatusRecruiting, first.Status)
		require.NotNil(t, first.Customer)
		assert.Equal(t, "Tanaka Taro", first.Customer.CustomerName)

		second, err := svc.Create(ctx, newDiagnosisRequest("Osaka"))
		require.NoError(t, err)
		assert.Equal(t, "GH00002", second.DiagnosisNumber)
	})

	t.Run("defaults the referral fee from settings", func(t *testing.T) {
		diagnosis, err := svc.Create(ctx, newDiagnosisRequest("Tokyo"))
		require.NoError(t, err)
		assert.Equal(t, 30000, diagnosis.ReferralFee)
	})

	t.Run("explicit referral fee wins over the default", func(t *testing.T) {
		req := newDiagnosisRequest("Tokyo")
		req.ReferralFee = testutil.IntPtr(50000)

		diagnosis, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 50000, diagnosis.ReferralFee)
	})

	t.Run("designated partner bypasses recruiting", func(t *testing.T) {
		partner := testutil.CreateTestPartner(t, db, "Designated Co", "Tokyo")
		req := newDiagnosisRequest("Tokyo")
		req.DesignatedPartnerID = &partner.ID

		diagnosis, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, domain.DiagnosisStatusDesignated, diagnosis.Status)
		require.NotNil(t, diagnosis.DesignatedPartnerID)
		assert.Equal(t, partner.ID, *diagnosis.DesignatedPartnerID)
	})
}

func TestDiagnosisService_ListEligible(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createDiagnosisService(t, db)
	ctx := context.Background()

	tokyoPartner := testutil.CreateTestPartner(t, db, "Tokyo Painters", "Tokyo")
	osakaPartner := testutil.CreateTestPartner(t, db, "Osaka Painters", "Osaka")

	tokyoDiag, err := svc.Create(ctx, newDiagnosisRequest("Tokyo"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, newDiagnosisRequest("Osaka"))
	require.NoError(t, err)

	t.Run("partner sees only requests inside its coverage", func(t *testing.T) {
		eligible, err := svc.ListEligible(ctx, tokyoPartner.ID)
		require.NoError(t, err)
		require.Len(t, eligible, 1)
		assert.Equal(t, tokyoDiag.ID, eligible[0].ID)
		assert.Equal(t, "Tokyo", eligible[0].Prefecture)
		assert.False(t, eligible[0].HasOwnQuotation)
	})

	findEligible := func(t *testing.T, partnerID, diagnosisID int) *domain.EligibleDiagnosisDTO {
		t.Helper()
		queue, err := svc.ListEligible(ctx, partnerID)
		require.NoError(t, err)
		for i := range queue {
			if queue[i].ID == diagnosisID {
				return &queue[i]
			}
		}
		return nil
	}

	t.Run("designated request outside coverage reaches only the designated partner", func(t *testing.T) {
		req := newDiagnosisRequest("Kyoto")
		req.DesignatedPartnerID = &osakaPartner.ID
		designated, err := svc.Create(ctx, req)
		require.NoError(t, err)

		seen := findEligible(t, osakaPartner.ID, designated.ID)
		require.NotNil(t, seen, "designated partner must see the request")
		assert.True(t, seen.IsDesignated)

		assert.Nil(t, findEligible(t, tokyoPartner.ID, designated.ID),
			"partners without coverage must not see it")
	})

	t.Run("designated request inside another partner's coverage stays open to that partner", func(t *testing.T) {
		req := newDiagnosisRequest("Tokyo")
		req.DesignatedPartnerID = &osakaPartner.ID
		designated, err := svc.Create(ctx, req)
		require.NoError(t, err)

		designatedView := findEligible(t, osakaPartner.ID, designated.ID)
		require.NotNil(t, designatedView)
		assert.True(t, designatedView.IsDesignated)

		coveringView := findEligible(t, tokyoPartner.ID, designated.ID)
		require.NotNil(t, coveringView, "covering partner must still see requests in its prefecture")
		assert.False(t, coveringView.IsDesignated)
	})

	t.Run("cancelled requests drop out of the queue", func(t *testing.T) {
		_, err := svc.Cancel(ctx, tokyoDiag.ID)
		require.NoError(t, err)

		eligible, err := svc.ListEligible(ctx, tokyoPartner.ID)
		require.NoError(t, err)
		for _, d := range eligible {
			assert.NotEqual(t, tokyoDiag.ID, d.ID)
		}
	})
}

func TestDiagnosisService_Decide(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createDiagnosisService(t, db)
	quotationSvc := createQuotationService(t, db)
	ctx := context.Background()

	partnerA := testutil.CreateTestPartner(t, db, "Partner A", "Tokyo")
	partnerB := testutil.CreateTestPartner(t, db, "Partner B", "Tokyo")

	diagnosis, err := svc.Create(ctx, newDiagnosisRequest("Tokyo"))
	require.NoError(t, err)

	bidA, err := quotationSvc.Submit(ctx, partnerA.ID, &domain.SubmitQuotationRequest{
		DiagnosisRequestID: diagnosis.ID,
		QuotationAmount:    1200000,
	})
	require.NoError(t, err)
	bidB, err := quotationSvc.Submit(ctx, partnerB.ID, &domain.SubmitQuotationRequest{
		DiagnosisRequestID: diagnosis.ID,
		QuotationAmount:    1100000,
	})
	require.NoError(t, err)

	t.Run("first bid moves the request to comparing", func(t *testing.T) {
		current, err := svc.GetByID(ctx, diagnosis.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DiagnosisStatusComparing, current.Status)
	})

	t.Run("decide closes bidding and returns the placed order", func(t *testing.T) {
		order, err := svc.Decide(ctx, diagnosis.ID, bidB.ID)
		require.NoError(t, err)
		assert.NotZero(t, order.ID)
		assert.Equal(t, bidB.ID, order.QuotationID)
		assert.Equal(t, domain.OrderStatusOrdered, order.OrderStatus)
		require.NotNil(t, order.Quotation)
		assert.True(t, order.Quotation.IsSelected)

		decided, err := svc.GetByID(ctx, diagnosis.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DiagnosisStatusDecided, decided.Status)

		var loser domain.Quotation
		require.NoError(t, db.First(&loser, bidA.ID).Error)
		assert.False(t, loser.IsSelected)
	})

	t.Run("deciding a closed request is rejected", func(t *testing.T) {
		_, err := svc.Decide(ctx, diagnosis.ID, bidA.ID)
		assert.ErrorIs(t, err, service.ErrDiagnosisClosed)

		// The first winner's order is still the only one
		var count int64
		require.NoError(t, db.Model(&domain.Order{}).
			Where("quotation_id IN ?", []int{bidA.ID, bidB.ID}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("quotation from another diagnosis is not found", func(t *testing.T) {
		other, err := svc.Create(ctx, newDiagnosisRequest("Tokyo"))
		require.NoError(t, err)

		_, err = svc.Decide(ctx, other.ID, bidA.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)

		unchanged, err := svc.GetByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DiagnosisStatusRecruiting, unchanged.Status)
	})

	t.Run("missing diagnosis returns not found and writes nothing", func(t *testing.T) {
		var ordersBefore int64
		require.NoError(t, db.Model(&domain.Order{}).Count(&ordersBefore).Error)
		var selectedBefore []int
		require.NoError(t, db.Model(&domain.Quotation{}).
			Where("is_selected = ?", true).Order("id").Pluck("id", &selectedBefore).Error)

		_, err := svc.Decide(ctx, 999999, bidA.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)

		var ordersAfter int64
		require.NoError(t, db.Model(&domain.Order{}).Count(&ordersAfter).Error)
		assert.Equal(t, ordersBefore, ordersAfter)
		var selectedAfter []int
		require.NoError(t, db.Model(&domain.Quotation{}).
			Where("is_selected = ?", true).Order("id").Pluck("id", &selectedAfter).Error)
		assert.Equal(t, selectedBefore, selectedAfter)
	})
}

func TestDiagnosisService_UpdateAndCancel(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createDiagnosisService(t, db)
	ctx := context.Background()

	diagnosis, err := svc.Create(ctx, newDiagnosisRequest("Tokyo"))
	require.NoError(t, err)

	t.Run("decided status is unreachable through update", func(t *testing.T) {
		decided := domain.DiagnosisStatusDecided
		_, err := svc.Update(ctx, diagnosis.ID, &domain.UpdateDiagnosisRequest{Status: &decided})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("admin can edit open request fields", func(t *testing.T) {
		note := "called the customer back"
		updated, err := svc.Update(ctx, diagnosis.ID, &domain.UpdateDiagnosisRequest{AdminNote: &note})
		require.NoError(t, err)
		assert.Equal(t, note, updated.AdminNote)
	})

	t.Run("cancel closes the request", func(t *testing.T) {
		cancelled, err := svc.Cancel(ctx, diagnosis.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DiagnosisStatusCancelled, cancelled.Status)
	})

	t.Run("cancelling twice is rejected", func(t *testing.T) {
		_, err := svc.Cancel(ctx, diagnosis.ID)
		assert.ErrorIs(t, err, service.ErrDiagnosisClosed)
	})

	t.Run("closed request rejects status edits", func(t *testing.T) {
		recruiting := domain.DiagnosisStatusRecruiting
		_, err := svc.Update(ctx, diagnosis.ID, &domain.UpdateDiagnosisRequest{Status: &recruiting})
		assert.ErrorIs(t, err, service.ErrDiagnosisClosed)
	})
}
