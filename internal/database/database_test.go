package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskquest-api/internal/config"
	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func TestDialector(t *testing.T) {
	tests := []struct {
		driver string
		name   string
	}{
		{driver: "postgres", name: "postgres"},
		{driver: "mysql", name: "mysql"},
		{driver: "sqlite", name: "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			dialector, err := Dialector(&config.Config{DBDriver: tt.driver, DBPath: ":memory:"})
			require.NoError(t, err)
			assert.Equal(t, tt.name, dialector.Name())
		})
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestConnectSQLite(t *testing.T) {
	db, err := Connect(&config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "taskquest.db"), GinMode: "release"})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, Close(db))
	})

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.Task{}))
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	for _, model := range Models() {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
	assert.True(t, db.Migrator().HasIndex("point_events", "idx_point_events_project_user"))
	assert.True(t, db.Migrator().HasIndex("tasks", "idx_tasks_project_status"))
}

func TestSeedTiersUpsertsByName(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedTiers(db, DefaultTiers()))
	require.NoError(t, SeedTiers(db, []models.Tier{{Name: "Silver", Order: 2, MinPoints: 750}}))

	var tiers []models.Tier
	require.NoError(t, db.Order("rank_order ASC").Find(&tiers).Error)
	require.Len(t, tiers, len(DefaultTiers()))
	assert.Equal(t, "Bronze", tiers[0].Name)
	assert.Equal(t, int64(750), tiers[1].MinPoints)
}

func TestParseTierSeed(t *testing.T) {
	tiers, err := ParseTierSeed([]byte(`
tiers:
  - name: Rookie
    order: 1
    min_points: 0
    description: First steps
  - name: Veteran
    order: 2
    min_points: 1000
`))
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	assert.Equal(t, "Rookie", tiers[0].Name)
	assert.Equal(t, "First steps", tiers[0].Description)
	assert.Equal(t, 2, tiers[1].Order)
	assert.Equal(t, int64(1000), tiers[1].MinPoints)

	invalid := map[string]string{
		"not yaml":        "tiers: [",
		"empty":           "tiers: []",
		"missing name":    "tiers:\n  - order: 1\n",
		"duplicate name":  "tiers:\n  - name: A\n    order: 1\n  - name: A\n    order: 2\n",
		"duplicate order": "tiers:\n  - name: A\n    order: 1\n  - name: B\n    order: 1\n",
	}
	for name, doc := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTierSeed([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadTierSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tiers:\n  - name: Solo\n    order: 1\n"), 0o600))

	tiers, err := LoadTierSeed(path)
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.Equal(t, "Solo", tiers[0].Name)

	_, err = LoadTierSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, SeedTiers(db, DefaultTiers()))

	var page []models.Tier
	require.NoError(t, db.Order("rank_order ASC").Scopes(Paginate(2, 2)).Find(&page).Error)
	require.Len(t, page, 2)
	assert.Equal(t, "Gold", page[0].Name)

	var all []models.Tier
	require.NoError(t, db.Scopes(Paginate(0, 0)).Find(&all).Error)
	assert.Len(t, all, len(DefaultTiers()))
}
