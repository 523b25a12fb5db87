package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/storage"
)

// FavoriteService bookmarks posts. Repeated favorites are kept.
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	postRepo     repository.PostRepository
	media        storage.Backend
}

func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	postRepo repository.PostRepository,
	media storage.Backend,
) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		postRepo:     postRepo,
		media:        media,
	}
}

func (s *FavoriteService) Add(ctx context.Context, ownerID, postID uint) (*EngagementView, error) {
	ok, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("Post", postID)
	}

	favorite := &models.Favorite{OwnerID: ownerID, PostID: postID}
	if err := s.favoriteRepo.Create(ctx, favorite); err != nil {
		return nil, err
	}
	stored, err := s.favoriteRepo.GetByID(ctx, favorite.ID)
	if err != nil {
		return nil, err
	}
	v := newFavoriteView(*stored, s.media)
	return &v, nil
}

func (s *FavoriteService) Remove(ctx context.Context, ownerID, favoriteID uint) error {
	favorite, err := s.favoriteRepo.GetByID(ctx, favoriteID)
	if err != nil {
		return err
	}
	if favorite.OwnerID != ownerID {
		return models.NewForbiddenError("You can only remove your own favorites")
	}
	return s.favoriteRepo.Delete(ctx, favoriteID)
}

func (s *FavoriteService) ListMine(ctx context.Context, ownerID uint) ([]EngagementView, error) {
	favorites, err := s.favoriteRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]EngagementView, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, newFavoriteView(f, s.media))
	}
	return out, nil
}
