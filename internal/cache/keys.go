package cache

import (
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	CategoriesKey = "categories:all"
)

const (
	UserTTL       = 5 * time.Minute
	CategoriesTTL = 30 * time.Minute
)

// Key families used in metrics labels.
const (
	FamilyUser       = "user"
	FamilyCategories = "categories"
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}
