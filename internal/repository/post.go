package repository

import (
	"context"
	"errors"
	"strings"

	"quill/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing. Zero values disable a filter.
type PostFilter struct {
	Search     string
	CategoryID uint
	OwnerID    uint
	Page       Page
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	AddImage(ctx context.Context, image *models.PostImage) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, viewerID uint) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	LikedUsers(ctx context.Context, postID uint) ([]models.User, error)
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Owner", "Category", "Images").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) AddImage(ctx context.Context, image *models.PostImage) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.withDetails(r.db.WithContext(ctx), 0).
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

// List returns posts newest first. Liked is filled for viewerID when non-zero.
func (r *postRepository) List(ctx context.Context, filter PostFilter, viewerID uint) ([]models.Post, error) {
	q := r.withDetails(r.db.WithContext(ctx), viewerID)
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := likePattern(s)
		q = q.Where("(LOWER(posts.title) LIKE ? OR LOWER(posts.body) LIKE ?)", like, like)
	}
	if filter.CategoryID != 0 {
		q = q.Where("posts.category_id = ?", filter.CategoryID)
	}
	if filter.OwnerID != 0 {
		q = q.Where("posts.owner_id = ?", filter.OwnerID)
	}

	posts := []models.Post{}
	if err := filter.Page.apply(q).Order("posts.created_at DESC, posts.id DESC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// withDetails selects the like count and, for a viewer, the liked flag in
// the same query and preloads the relations every representation needs.
func (r *postRepository) withDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count"

	if viewerID != 0 {
		db = db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.owner_id = ?) AS liked", viewerID)
	} else {
		db = db.Select(selectQuery + ", false AS liked")
	}

	return db.Model(&models.Post{}).
		Preload("Owner").
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("post_images.id ASC")
		})
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Model(post).
		Select("title", "body", "category_id", "preview", "updated_at").
		Omit(clause.Associations).
		Updates(post).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the post and everything that hangs off it.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&models.PostImage{}, &models.Comment{}, &models.Like{}, &models.Favorite{}} {
			if err := tx.Where("post_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// LikedUsers returns the users who liked postID in like order.
func (r *postRepository) LikedUsers(ctx context.Context, postID uint) ([]models.User, error) {
	users := []models.User{}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*").
		Joins("JOIN likes ON likes.owner_id = users.id").
		Where("likes.post_id = ?", postID).
		Order("likes.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *postRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("owner_id = ?", ownerID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
