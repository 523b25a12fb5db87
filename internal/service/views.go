// Package service holds the business rules and assembles API representations.
package service

import (
	"time"

	"quill/internal/models"
	"quill/internal/storage"
)

// FollowView is one follow edge with both usernames.
type FollowView struct {
	ID                uint      `json:"id"`
	Follower          uint      `json:"follower"`
	FollowerUsername  string    `json:"follower_username"`
	Following         uint      `json:"following"`
	FollowingUsername string    `json:"following_username"`
	CreatedAt         time.Time `json:"created_at"`
}

func newFollowView(f models.Follow) FollowView {
	return FollowView{
		ID:                f.ID,
		Follower:          f.FollowerID,
		FollowerUsername:  f.Follower.Username,
		Following:         f.FollowingID,
		FollowingUsername: f.Following.Username,
		CreatedAt:         f.CreatedAt,
	}
}

// EngagementView renders likes and favorites.
type EngagementView struct {
	ID            uint      `json:"id"`
	Owner         uint      `json:"owner"`
	OwnerUsername string    `json:"owner_username"`
	Post          uint      `json:"post"`
	PostTitle     string    `json:"post_title"`
	PostPreview   string    `json:"post_preview"`
	CreatedAt     time.Time `json:"created_at"`
}

func newLikeView(l models.Like, media storage.Backend) EngagementView {
	return EngagementView{
		ID:            l.ID,
		Owner:         l.OwnerID,
		OwnerUsername: l.Owner.Username,
		Post:          l.PostID,
		PostTitle:     l.Post.Title,
		PostPreview:   mediaURL(media, l.Post.Preview),
		CreatedAt:     l.CreatedAt,
	}
}

func newFavoriteView(f models.Favorite, media storage.Backend) EngagementView {
	return EngagementView{
		ID:            f.ID,
		Owner:         f.OwnerID,
		OwnerUsername: f.Owner.Username,
		Post:          f.PostID,
		PostTitle:     f.Post.Title,
		PostPreview:   mediaURL(media, f.Post.Preview),
		CreatedAt:     f.CreatedAt,
	}
}

// CommentView is a comment with its author's username.
type CommentView struct {
	ID            uint      `json:"id"`
	Body          string    `json:"body"`
	Owner         uint      `json:"owner"`
	OwnerUsername string    `json:"owner_username"`
	Post          uint      `json:"post"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newCommentView(c models.Comment) CommentView {
	return CommentView{
		ID:            c.ID,
		Body:          c.Body,
		Owner:         c.OwnerID,
		OwnerUsername: c.Owner.Username,
		Post:          c.PostID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// UserCommentView is a comment as listed on its author's profile.
type UserCommentView struct {
	ID        uint      `json:"id"`
	Body      string    `json:"body"`
	Post      uint      `json:"post"`
	CreatedAt time.Time `json:"created_at"`
	PostTitle string    `json:"post_title"`
}

// ImageView is an attached post image with a resolved URL.
type ImageView struct {
	ID    uint   `json:"id"`
	Image string `json:"image"`
	Post  uint   `json:"post"`
}

func newImageViews(images []models.PostImage, media storage.Backend) []ImageView {
	out := make([]ImageView, 0, len(images))
	for _, img := range images {
		out = append(out, ImageView{ID: img.ID, Image: mediaURL(media, img.Image), Post: img.PostID})
	}
	return out
}

// LikedUser identifies a user who liked a post.
type LikedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// PostListItem is the compact post projection. IsLiked is only set for
// authenticated requesters and is omitted from JSON otherwise.
type PostListItem struct {
	ID            uint        `json:"id"`
	Title         string      `json:"title"`
	Owner         uint        `json:"owner"`
	OwnerUsername string      `json:"owner_username"`
	CategoryName  *string     `json:"category_name"`
	Preview       string      `json:"preview"`
	Images        []ImageView `json:"images"`
	LikesCount    int         `json:"likes_count"`
	IsLiked       *bool       `json:"is_liked,omitempty"`
}

// PostDetail is the full post representation.
type PostDetail struct {
	ID            uint          `json:"id"`
	Title         string        `json:"title"`
	Body          string        `json:"body"`
	Preview       string        `json:"preview"`
	Owner         uint          `json:"owner"`
	OwnerUsername string        `json:"owner_username"`
	Category      *uint         `json:"category"`
	CategoryName  *string       `json:"category_name"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Comments      []CommentView `json:"comments"`
	CommentsCount int           `json:"comments_count"`
	Images        []ImageView   `json:"images"`
	LikesCount    int           `json:"likes_count"`
	LikedUsers    []LikedUser   `json:"liked_users"`
}

// UserDetail is a profile with its social counters and activity.
type UserDetail struct {
	ID              uint              `json:"id"`
	Username        string            `json:"username"`
	Email           string            `json:"email"`
	Bio             string            `json:"bio"`
	Avatar          string            `json:"avatar"`
	CreatedAt       time.Time         `json:"created_at"`
	FollowersCount  int64             `json:"followers_count"`
	FollowingsCount int64             `json:"followings_count"`
	PostsCount      int64             `json:"posts_count"`
	Comments        []UserCommentView `json:"comments"`
	LikedPosts      []EngagementView  `json:"liked_posts"`
	Favorites       []EngagementView  `json:"favorites"`
}

func categoryName(p models.Post) *string {
	if p.Category == nil {
		return nil
	}
	name := p.Category.Name
	return &name
}

// mediaURL resolves a stored key; empty keys stay empty.
func mediaURL(media storage.Backend, key string) string {
	if key == "" || media == nil {
		return key
	}
	return media.URL(key)
}
