package persistence

import (
	"testing"

	"github.com/menusync/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var syncedTables = []string{
	"catalog_categories",
	"catalog_items",
	"catalog_item_variations",
	"catalog_modifier_lists",
	"catalog_modifiers",
	"catalog_item_modifier_lists",
	"catalog_images",
}

// setupTestDB opens an in-memory SQLite database with every model migrated
// and the unique indexes the SQL migrations declare.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// each connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	for _, table := range syncedTables {
		require.NoError(t, db.Exec("CREATE UNIQUE INDEX idx_"+table+"_external ON "+table+" (catalog_id, external_id)").Error)
	}
	require.NoError(t, db.Exec("CREATE UNIQUE INDEX idx_locations_merchant_external ON locations (merchant_id, external_id)").Error)
	require.NoError(t, db.Exec("CREATE UNIQUE INDEX idx_catalog_location_presence_entry ON catalog_location_presence (owner_id, location_id, present)").Error)
	require.NoError(t, db.Exec("CREATE UNIQUE INDEX idx_catalog_price_overrides_entry ON catalog_location_price_overrides (owner_type, owner_id, location_id)").Error)

	return db
}
