package repository

import (
	"context"

	"quill/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository stores directed follow edges.
type FollowRepository interface {
	// Create inserts follower->following unless the edge exists; created is
	// false for a duplicate.
	Create(ctx context.Context, followerID, followingID uint) (created bool, err error)
	// Delete removes follower->following; deleted is false when there was no edge.
	Delete(ctx context.Context, followerID, followingID uint) (deleted bool, err error)
	ListFollowers(ctx context.Context, userID uint, page Page) ([]models.Follow, error)
	ListFollowings(ctx context.Context, userID uint, page Page) ([]models.Follow, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowings(ctx context.Context, userID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a gorm backed FollowRepository.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, followerID, followingID uint) (bool, error) {
	edge := models.Follow{FollowerID: followerID, FollowingID: followingID}
	result := r.db.WithContext(ctx).
		Omit("Follower", "Following").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, page Page) ([]models.Follow, error) {
	return r.list(ctx, "following_id = ?", userID, page)
}

func (r *followRepository) ListFollowings(ctx context.Context, userID uint, page Page) ([]models.Follow, error) {
	return r.list(ctx, "follower_id = ?", userID, page)
}

func (r *followRepository) list(ctx context.Context, where string, userID uint, page Page) ([]models.Follow, error) {
	var edges []models.Follow
	q := r.db.WithContext(ctx).
		Preload("Follower").
		Preload("Following").
		Where(where, userID).
		Order("created_at DESC, id DESC")
	if err := page.apply(q).Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return edges, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "following_id = ?", userID)
}

func (r *followRepository) CountFollowings(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "follower_id = ?", userID)
}

func (r *followRepository) count(ctx context.Context, where string, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where(where, userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
