package database

import "quill/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters: referenced tables come first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Category{},
		&models.Post{},
		&models.PostImage{},
		&models.Comment{},
		&models.Like{},
		&models.Favorite{},
	}
}
