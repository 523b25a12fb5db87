package models

import (
	"time"
)

// Post represents a blog post owned by a user.
type Post struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Title      string      `gorm:"size:255;not null" json:"title"`
	Body       string      `gorm:"type:text;not null" json:"body"`
	Preview    string      `json:"preview"`
	OwnerID    uint        `gorm:"not null;index" json:"owner"`
	Owner      User        `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CategoryID *uint       `gorm:"index" json:"category"`
	Category   *Category   `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
	Images     []PostImage `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// Liked is computed for the requesting user
	Liked     bool      `gorm:"->;-:migration" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostImage is an additional image attached to a post.
type PostImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Image     string    `gorm:"not null" json:"image"`
	PostID    uint      `gorm:"not null;index" json:"post"`
	CreatedAt time.Time `json:"-"`
}

// TableName specifies the table name for GORM
func (PostImage) TableName() string {
	return "post_images"
}
