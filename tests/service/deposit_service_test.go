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

func createDepositService(t *testing.T, db *gorm.DB) *service.DepositService {
	return service.NewDepositService(
		db,
		repository.NewDepositRepository(db),
		repository.NewPartnerRepository(db),
		zap.NewNop(),
	)
}

func TestDepositService_Review(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createDepositService(t, db)
	ctx := context.Background()

	partner := testutil.CreateTestPartner(t, db, "Paint Co", "Tokyo")

	request, err := svc.CreateRequest(ctx, partner.ID, &domain.CreateDepositRequest{
		RequestedAmount: 100000,
		PartnerNote:     "transfer sent on the 1st",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DepositRequestPending, request.Status)

	t.Run("approval credits balance and writes the ledger", func(t *testing.T) {
		reviewed, err := svc.Review(ctx, request.ID, &domain.ReviewDepositRequest{Approve: true})
		require.NoError(t, err)
		assert.Equal(t, domain.DepositRequestApproved, reviewed.Status)
		require.NotNil(t, reviewed.ApprovedAmount)
		assert.Equal(t, 100000, *reviewed.ApprovedAmount)
		assert.NotNil(t, reviewed.ApprovedAt)

		summary, err := svc.Summary(ctx, partner.ID)
		require.NoError(t, err)
		assert.Equal(t, 100000, summary.Balance)
		require.Len(t, summary.History, 1)
		assert.Equal(t, domain.DepositEntryDeposit, summary.History[0].Type)
		assert.Equal(t, 100000, summary.History[0].Amount)
		assert.Equal(t, 100000, summary.History[0].Balance)
	})

	t.Run("reviewing twice is rejected", func(t *testing.T) {
		_, err := svc.Review(ctx, request.ID, &domain.ReviewDepositRequest{Approve: true})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("admin can approve a different amount", func(t *testing.T) {
		partial, err := svc.CreateRequest(ctx, partner.ID, &domain.CreateDepositRequest{
			RequestedAmount: 50000,
		})
		require.NoError(t, err)

		reviewed, err := svc.Review(ctx, partial.ID, &domain.ReviewDepositRequest{
			Approve:        true,
			ApprovedAmount: testutil.IntPtr(30000),
			AdminNote:      "only 30000 received",
		})
		require.NoError(t, err)
		require.NotNil(t, reviewed.ApprovedAmount)
		assert.Equal(t, 30000, *reviewed.ApprovedAmount)

		summary, err := svc.Summary(ctx, partner.ID)
		require.NoError(t, err)
		assert.Equal(t, 130000, summary.Balance)
	})

	t.Run("rejection leaves the balance alone", func(t *testing.T) {
		rejected, err := svc.CreateRequest(ctx, partner.ID, &domain.CreateDepositRequest{
			RequestedAmount: 999999,
		})
		require.NoError(t, err)

		reviewed, err := svc.Review(ctx, rejected.ID, &domain.ReviewDepositRequest{
			Approve:   false,
			AdminNote: "no transfer found",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DepositRequestRejected, reviewed.Status)

		summary, err := svc.Summary(ctx, partner.ID)
		require.NoError(t, err)
		assert.Equal(t, 130000, summary.Balance)
	})
}

func createReferralService(t *testing.T, db *gorm.DB) *service.ReferralService {
	return service.NewReferralService(
		db,
		repository.NewReferralRepository(db),
		repository.NewDiagnosisRepository(db),
		repository.NewPartnerRepository(db),
		repository.NewDepositRepository(db),
		zap.NewNop(),
	)
}

func TestReferralService_Create(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	diagnosisSvc := createDiagnosisService(t, db)
	svc := createReferralService(t, db)
	ctx := context.Background()

	partner := testutil.CreateTestPartner(t, db, "Paint Co", "Tokyo")
	testutil.SetDepositBalance(t, db, partner.ID, 40000)

	diagnosis, err := diagnosisSvc.Create(ctx, newDiagnosisRequest("Tokyo"))
	require.NoError(t, err)

	t.Run("referral deducts the fee from the deposit", func(t *testing.T) {
		referral, err := svc.Create(ctx, &domain.CreateReferralRequest{
			DiagnosisID: diagnosis.ID,
			PartnerID:   partner.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, 30000, referral.ReferralFee)

		var reloaded domain.Partner
		require.NoError(t, db.First(&reloaded, partner.ID).Error)
		assert.Equal(t, 10000, reloaded.DepositBalance)

		var entry domain.DepositHistory
		require.NoError(t, db.Where("partner_id = ? AND type = ?",
			partner.ID, domain.DepositEntryDeduction).First(&entry).Error)
		assert.Equal(t, -30000, entry.Amount)
		assert.Equal(t, 10000, entry.Balance)
	})

	t.Run("duplicate referral is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateReferralRequest{
			DiagnosisID: diagnosis.ID,
			PartnerID:   partner.ID,
		})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("insufficient balance blocks the referral", func(t *testing.T) {
		second, err := diagnosisSvc.Create(ctx, newDiagnosisRequest("Tokyo"))
		require.NoError(t, err)

		_, err = svc.Create(ctx, &domain.CreateReferralRequest{
			DiagnosisID: second.ID,
			PartnerID:   partner.ID,
		})
		assert.ErrorIs(t, err, service.ErrInsufficientDeposit)

		// The failed referral must not touch the balance
		var reloaded domain.Partner
		require.NoError(t, db.First(&reloaded, partner.ID).Error)
		assert.Equal(t, 10000, reloaded.DepositBalance)
	})

	t.Run("closed diagnosis cannot be referred", func(t *testing.T) {
		closed, err := diagnosisSvc.Create(ctx, newDiagnosisRequest("Tokyo"))
		require.NoError(t, err)
		_, err = diagnosisSvc.Cancel(ctx, closed.ID)
		require.NoError(t, err)

		_, err = svc.Create(ctx, &domain.CreateReferralRequest{
			DiagnosisID: closed.ID,
			PartnerID:   partner.ID,
		})
		assert.ErrorIs(t, err, service.ErrDiagnosisClosed)
	})
}
