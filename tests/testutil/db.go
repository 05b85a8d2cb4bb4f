package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a connection to the test PostgreSQL database.
// It uses environment variables or falls back to docker-compose defaults.
func SetupTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "broker_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "broker_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "broker")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "Failed to connect to test database. Ensure PostgreSQL is running.")

	return db
}

// SetupCleanTestDB connects to the test database and wipes all test data
// first, so every test starts from a known empty state.
func SetupCleanTestDB(t *testing.T) *gorm.DB {
	db := SetupTestDB(t)
	CleanupTestData(t, db)
	return db
}

// CleanupTestData cleans up test data from all tables.
// This should be called after tests to ensure a clean state.
func CleanupTestData(t *testing.T, db *gorm.DB) {
	// Delete in order to respect foreign key constraints
	tables := []string{
		"referrals",
		"deposit_histories",
		"deposit_requests",
		"customer_invoices",
		"company_invoice_items",
		"company_invoices",
		"order_photos",
		"orders",
		"quotations",
		"diagnosis_requests",
		"customers",
		"partner_prefectures",
		"partner_details",
		"partners",
		"partner_applications",
		"fee_plans",
		"articles",
		"sequences",
	}

	for _, table := range tables {
		err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id IS NOT NULL", table)).Error
		if err != nil {
			// Table might not exist, that's ok
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

// CreateTestPartner creates an active partner covering the given prefectures
func CreateTestPartner(t *testing.T, db *gorm.DB, companyName string, prefectures ...string) *domain.Partner {
	hash, err := bcrypt.GenerateFromPassword([]byte("test-password"), bcrypt.MinCost)
	require.NoError(t, err)

	partner := &domain.Partner{
		LoginEmail:   fmt.Sprintf("partner%d@example.com", uniqueInt()),
		PasswordHash: string(hash),
		IsActive:     true,
	}
	err = db.Omit(clause.Associations).Create(partner).Error
	require.NoError(t, err)

	details := &domain.PartnerDetails{
		PartnerID:   partner.ID,
		CompanyName: companyName,
		Phone:       "03-1234-5678",
	}
	require.NoError(t, db.Create(details).Error)

	for _, pref := range prefectures {
		row := &domain.PartnerPrefecture{
			PartnerID:           partner.ID,
			SupportedPrefecture: pref,
		}
		require.NoError(t, db.Create(row).Error)
	}

	partner.Details = details
	return partner
}

// CreateTestFeePlan creates a fee plan with the given components
func CreateTestFeePlan(t *testing.T, db *gorm.DB, name string, monthlyFee *int, rate *float64) *domain.FeePlan {
	plan := &domain.FeePlan{
		Name:           name,
		MonthlyFee:     monthlyFee,
		ProjectFeeRate: rate,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

// SetDepositBalance forces a partner's deposit balance for referral tests
func SetDepositBalance(t *testing.T, db *gorm.DB, partnerID, balance int) {
	err := db.Model(&domain.Partner{}).Where("id = ?", partnerID).
		Update("deposit_balance", balance).Error
	require.NoError(t, err)
}

// IntPtr returns a pointer to the given int
func IntPtr(v int) *int {
	return &v
}

// Float64Ptr returns a pointer to the given float64
func Float64Ptr(v float64) *float64 {
	return &v
}

// uniqueInt returns a unique integer for test data
func uniqueInt() int64 {
	return time.Now().UnixNano()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
