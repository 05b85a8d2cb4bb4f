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

func createFeePlanService(t *testing.T, db *gorm.DB) *service.FeePlanService {
	return service.NewFeePlanService(
		repository.NewFeePlanRepository(db),
		repository.NewPartnerRepository(db),
		zap.NewNop(),
	)
}

func TestFeePlanService_DefaultExclusivity(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createFeePlanService(t, db)
	ctx := context.Background()

	countDefaults := func() int64 {
		var count int64
		require.NoError(t, db.Model(&domain.FeePlan{}).
			Where("is_default = ?", true).Count(&count).Error)
		return count
	}

	first, err := svc.Create(ctx, &domain.CreateFeePlanRequest{
		Name:       "Starter",
		MonthlyFee: testutil.IntPtr(30000),
		IsDefault:  true,
	})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	t.Run("new default clears the previous one", func(t *testing.T) {
		second, err := svc.Create(ctx, &domain.CreateFeePlanRequest{
			Name:       "Premium",
			MonthlyFee: testutil.IntPtr(80000),
			IsDefault:  true,
		})
		require.NoError(t, err)
		assert.True(t, second.IsDefault)
		assert.EqualValues(t, 1, countDefaults())

		reloaded, err := svc.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.False(t, reloaded.IsDefault)
	})

	t.Run("update promoting a plan also clears others", func(t *testing.T) {
		promoted := true
		updated, err := svc.Update(ctx, first.ID, &domain.UpdateFeePlanRequest{IsDefault: &promoted})
		require.NoError(t, err)
		assert.True(t, updated.IsDefault)
		assert.EqualValues(t, 1, countDefaults())
	})
}

func TestFeePlanService_DeleteAndAssign(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createFeePlanService(t, db)
	ctx := context.Background()

	plan, err := svc.Create(ctx, &domain.CreateFeePlanRequest{
		Name:        "Per order",
		PerOrderFee: testutil.IntPtr(10000),
	})
	require.NoError(t, err)

	partner := testutil.CreateTestPartner(t, db, "Paint Co", "Tokyo")

	t.Run("assign attaches the plan to the partner", func(t *testing.T) {
		assigned, err := svc.AssignToPartner(ctx, partner.ID, plan.ID)
		require.NoError(t, err)
		require.NotNil(t, assigned.FeePlanID)
		assert.Equal(t, plan.ID, *assigned.FeePlanID)
	})

	t.Run("plan in use cannot be deleted", func(t *testing.T) {
		err := svc.Delete(ctx, plan.ID)
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("unused plan can be deleted", func(t *testing.T) {
		unused, err := svc.Create(ctx, &domain.CreateFeePlanRequest{Name: "Unused"})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, unused.ID))

		_, err = svc.GetByID(ctx, unused.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("assigning a missing plan returns not found", func(t *testing.T) {
		_, err := svc.AssignToPartner(ctx, partner.ID, 999999)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
