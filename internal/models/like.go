package models

import (
	"time"
)

// Like represents a user's like on a post.
// The combination of OwnerID and PostID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;uniqueIndex:idx_like_owner_post" json:"owner"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_owner_post;index" json:"post"`
	CreatedAt time.Time `json:"created_at"`

	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Post  Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// Favorite bookmarks a post for its owner. Duplicates are allowed.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner"`
	PostID    uint      `gorm:"not null;index" json:"post"`
	CreatedAt time.Time `json:"created_at"`

	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Post  Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}
