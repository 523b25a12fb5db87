package repository

import (
	"context"

	"quill/internal/models"

	"gorm.io/gorm"
)

// FavoriteRepository stores bookmarked posts.
type FavoriteRepository interface {
	Create(ctx context.Context, favorite *models.Favorite) error
	GetByID(ctx context.Context, id uint) (*models.Favorite, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Favorite, error)
	Delete(ctx context.Context, id uint) error
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *models.Favorite) error {
	if err := r.db.WithContext(ctx).Omit("Owner", "Post").Create(favorite).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *favoriteRepository) GetByID(ctx context.Context, id uint) (*models.Favorite, error) {
	var favorite models.Favorite
	if err := r.db.WithContext(ctx).Preload("Owner").Preload("Post").First(&favorite, id).Error; err != nil {
		return nil, notFoundOr(err, "Favorite", id)
	}
	return &favorite, nil
}

func (r *favoriteRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Favorite, error) {
	favorites := []models.Favorite{}
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Post").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return favorites, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Favorite{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Favorite", id)
	}
	return nil
}
