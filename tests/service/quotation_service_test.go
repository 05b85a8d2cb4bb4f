package service_test

import (
	"context"
	"testing"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/service"
	"github.com/gaiheki-navi/broker-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotationService_Submit(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	diagnosisSvc := createDiagnosisService(t, db)
	svc := createQuotationService(t, db)
	ctx := context.Background()

	tokyoPartner := testutil.CreateTestPartner(t, db, "Tokyo Painters", "Tokyo")
	osakaPartner := testutil.CreateTestPartner(t, db, "Osaka Painters", "Osaka")

	diagnosis, err := diagnosisSvc.Create(ctx, newDiagnosisRequest("Tokyo"))
	require.NoError(t, err)

	t.Run("covering partner can bid", func(t *testing.T) {
		quotation, err := svc.Submit(ctx, tokyoPartner.ID, &domain.SubmitQuotationRequest{
			DiagnosisRequestID: diagnosis.ID,
			QuotationAmount:    900000,
			AppealText:         "Ten year warranty included",
		})
		require.NoError(t, err)
		assert.Equal(t, 900000, quotation.QuotationAmount)
		assert.False(t, quotation.IsSelected)
	})

	t.Run("second bid from the same partner is rejected", func(t *testing.T) {
		_, err := svc.Submit(ctx, tokyoPartner.ID, &domain.SubmitQuotationRequest{
			DiagnosisRequestID: diagnosis.ID,
			QuotationAmount:    850000,
		})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("partner outside coverage cannot bid", func(t *testing.T) {
		_, err := svc.Submit(ctx, osakaPartner.ID, &domain.SubmitQuotationRequest{
			DiagnosisRequestID: diagnosis.ID,
			QuotationAmount:    800000,
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("missing diagnosis returns not found", func(t *testing.T) {
		_, err := svc.Submit(ctx, tokyoPartner.ID, &domain.SubmitQuotationRequest{
			DiagnosisRequestID: 999999,
			QuotationAmount:    800000,
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("cancelled diagnosis rejects new bids", func(t *testing.T) {
		closed, err := diagnosisSvc.Create(ctx, newDiagnosisRequest("Osaka"))
		require.NoError(t, err)
		_, err = diagnosisSvc.Cancel(ctx, closed.ID)
		require.NoError(t, err)

		_, err = svc.Submit(ctx, osakaPartner.ID, &domain.SubmitQuotationRequest{
			DiagnosisRequestID: closed.ID,
			QuotationAmount:    800000,
		})
		assert.ErrorIs(t, err, service.ErrDiagnosisClosed)
	})

	t.Run("designated request only accepts the designated partner", func(t *testing.T) {
		req := newDiagnosisRequest("Tokyo")
		req.DesignatedPartnerID = &osakaPartner.ID
		designated, err := diagnosisSvc.Create(ctx, req)
		require.NoError(t, err)

		// Coverage does not matter on a designated request
		_, err = svc.Submit(ctx, tokyoPartner.ID, &domain.SubmitQuotationRequest{
			DiagnosisRequestID: designated.ID,
			QuotationAmount:    700000,
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)

		quotation, err := svc.Submit(ctx, osakaPartner.ID, &domain.SubmitQuotationRequest{
			DiagnosisRequestID: designated.ID,
			QuotationAmount:    700000,
		})
		require.NoError(t, err)
		assert.Equal(t, designated.ID, quotation.DiagnosisRequestID)
	})
}
