package database

import (
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestSchemaStatus(t *testing.T) {
	db := openSQLite(t)

	status, err := SchemaStatus(db)
	require.NoError(t, err)
	require.Len(t, status, len(PersistentModels()))
	assert.Equal(t, "users", status[0].Table)
	for _, s := range status {
		assert.False(t, s.Exists, s.Table)
	}

	require.NoError(t, Migrate(db))
	status, err = SchemaStatus(db)
	require.NoError(t, err)
	for _, s := range status {
		assert.True(t, s.Exists, s.Table)
	}
}

func TestReset_DropsRows(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Create(&models.Category{Name: "Travel", Slug: "travel"}).Error)

	require.NoError(t, Reset(db))

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.True(t, db.Migrator().HasTable(&models.Post{}))
}
