package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/notifications"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/storage"

	"go.opentelemetry.io/otel/attribute"
)

// LikeService registers likes, at most one per user and post.
type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
	notifier notifications.Publisher
	media    storage.Backend
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	postRepo repository.PostRepository,
	notifier notifications.Publisher,
	media storage.Backend,
) *LikeService {
	return &LikeService{
		likeRepo: likeRepo,
		postRepo: postRepo,
		notifier: notifier,
		media:    media,
	}
}

// Like records ownerID's like of postID. A second like fails with ErrAlreadyLiked.
func (s *LikeService) Like(ctx context.Context, ownerID, postID uint) (view *EngagementView, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "like.create",
		attribute.Int64("owner_id", int64(ownerID)), attribute.Int64("post_id", int64(postID)))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	like := &models.Like{OwnerID: ownerID, PostID: postID}
	created, err := s.likeRepo.Create(ctx, like)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, models.ErrAlreadyLiked
	}

	observability.RecordEvent(notifications.EventLikeCreated)
	if post.OwnerID != ownerID {
		publish(ctx, s.notifier, post.OwnerID, notifications.Event{
			Type:    notifications.EventLikeCreated,
			ActorID: ownerID,
			PostID:  postID,
		})
	}

	stored, err := s.likeRepo.GetByID(ctx, like.ID)
	if err != nil {
		return nil, err
	}
	v := newLikeView(*stored, s.media)
	return &v, nil
}

// Unlike deletes likeID when ownerID owns it.
func (s *LikeService) Unlike(ctx context.Context, ownerID, likeID uint) error {
	like, err := s.likeRepo.GetByID(ctx, likeID)
	if err != nil {
		return err
	}
	if like.OwnerID != ownerID {
		return models.NewForbiddenError("You can only remove your own likes")
	}
	return s.likeRepo.Delete(ctx, likeID)
}

// ListMine returns ownerID's likes with post title and preview URL.
func (s *LikeService) ListMine(ctx context.Context, ownerID uint) ([]EngagementView, error) {
	likes, err := s.likeRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]EngagementView, 0, len(likes))
	for _, l := range likes {
		out = append(out, newLikeView(l, s.media))
	}
	return out, nil
}
