package repository

import (
	"context"

	"quill/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository stores post likes, at most one per owner and post.
type LikeRepository interface {
	// Create inserts like unless the owner already liked the post; created is
	// false for a duplicate and like.ID stays zero.
	Create(ctx context.Context, like *models.Like) (created bool, err error)
	GetByID(ctx context.Context, id uint) (*models.Like, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Like, error)
	Delete(ctx context.Context, id uint) error
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a gorm backed LikeRepository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) (bool, error) {
	// INSERT ... ON CONFLICT DO NOTHING keeps concurrent duplicates out.
	result := r.db.WithContext(ctx).
		Omit("Owner", "Post").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *likeRepository) GetByID(ctx context.Context, id uint) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).Preload("Owner").Preload("Post").First(&like, id).Error; err != nil {
		return nil, notFoundOr(err, "Like", id)
	}
	return &like, nil
}

func (r *likeRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Like, error) {
	likes := []models.Like{}
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Post").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&likes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}

func (r *likeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Like{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Like", id)
	}
	return nil
}
