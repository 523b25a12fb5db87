package database

import (
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_ReferencedTablesFirst(t *testing.T) {
	order := map[string]int{}
	for i, m := range PersistentModels() {
		switch m.(type) {
		case *models.User:
			order["user"] = i
		case *models.Post:
			order["post"] = i
		case *models.Category:
			order["category"] = i
		case *models.Like:
			order["like"] = i
		}
	}
	require.Len(t, order, 4)
	assert.Less(t, order["user"], order["post"])
	assert.Less(t, order["category"], order["post"])
	assert.Less(t, order["post"], order["like"])
}

func TestMigrate_CreatesTablesAndUniqueIndexes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "follows", "categories", "posts", "post_images", "comments", "likes", "favorites"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Follow{}, "idx_follower_following"))
	assert.True(t, db.Migrator().HasIndex(&models.Like{}, "idx_like_owner_post"))
	assert.False(t, db.Migrator().HasColumn(&models.Post{}, "likes_count"))
}
