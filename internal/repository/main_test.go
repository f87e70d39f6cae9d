package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"fritter/internal/config"
	"fritter/internal/database"
	"fritter/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, time.October, 17, 15, 4, 5, 0, time.UTC)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLite returns a migrated in-memory database private to the test.
func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(&config.Config{
		DBDriver:       "sqlite",
		SQLitePath:     fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		DBMaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "hash"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProfile(t *testing.T, db *gorm.DB, owner *models.User) *models.PaymentProfile {
	t.Helper()
	profile := &models.PaymentProfile{UserID: owner.ID, PaymentType: "venmo", PaymentUsername: owner.Username + "_pay"}
	require.NoError(t, db.Omit("User").Create(profile).Error)
	return profile
}

func newMerchantFreet(author *models.User, profile *models.PaymentProfile) *models.Freet {
	f := models.NewFreet(author.ID, "selling my bike", models.MerchantFreet{
		Listing: models.ListingDraft{Name: "bike", Price: 120},
	}, testNow)
	f.AttachListing(models.ListingDraft{Name: "bike", Price: 120}, profile)
	return f
}
