package database

import (
	"testing"

	"fritter/internal/config"
	"fritter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConnect_SQLiteMigratesSchema(t *testing.T) {
	cfg := &config.Config{
		DBDriver:       "sqlite",
		SQLitePath:     "file:connect_test?mode=memory&cache=shared",
		DBMaxOpenConns: 1,
	}
	db, err := Connect(cfg)
	require.NoError(t, err)

	for _, m := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(m), "%T should be migrated", m)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Listing{}, "FreetID"))
}

func TestConnectRead_NoReplica(t *testing.T) {
	db, err := ConnectRead(&config.Config{})
	assert.NoError(t, err)
	assert.Nil(t, db)
}

func TestPersistentModels_IncludesListing(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*models.Listing); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include Listing")
}

func TestPostgresDSN_DefaultsSSLMode(t *testing.T) {
	dsn := postgresDSN("h", "5432", "u", "p", "fritter", "")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "dbname=fritter")
}
