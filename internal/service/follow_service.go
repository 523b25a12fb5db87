package service

import (
	"context"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/notifications"
	"quill/internal/observability"
	"quill/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FollowService manages the directed follow graph.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifier   notifications.Publisher
}

// NewFollowService returns a new FollowService. notifier may be nil.
func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notifier notifications.Publisher,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// Follow makes actorID follow targetID.
func (s *FollowService) Follow(ctx context.Context, actorID, targetID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "service", "follow.create",
		attribute.Int64("actor_id", int64(actorID)), attribute.Int64("target_id", int64(targetID)))
	defer func() { observability.EndSpan(span, err) }()

	if actorID == targetID {
		return models.ErrSelfFollow
	}
	if err := s.requireUser(ctx, targetID); err != nil {
		return err
	}

	created, err := s.followRepo.Create(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !created {
		return models.ErrAlreadyFollowing
	}

	observability.RecordEvent(notifications.EventFollowCreated)
	publish(ctx, s.notifier, targetID, notifications.Event{
		Type:    notifications.EventFollowCreated,
		ActorID: actorID,
	})
	return nil
}

// Unfollow removes the actorID -> targetID edge. Only the actor's own edge
// can be removed.
func (s *FollowService) Unfollow(ctx context.Context, actorID, targetID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "service", "follow.delete",
		attribute.Int64("actor_id", int64(actorID)), attribute.Int64("target_id", int64(targetID)))
	defer func() { observability.EndSpan(span, err) }()

	if actorID == targetID {
		return models.ErrSelfUnfollow
	}
	if err := s.requireUser(ctx, targetID); err != nil {
		return err
	}

	deleted, err := s.followRepo.Delete(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return models.ErrNotFollowing
	}
	observability.RecordEvent("follow.deleted")
	return nil
}

// Followers lists the edges pointing at userID.
func (s *FollowService) Followers(ctx context.Context, userID uint, page repository.Page) ([]FollowView, error) {
	edges, err := s.followRepo.ListFollowers(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return followViews(edges), nil
}

// Followings lists the edges leaving userID.
func (s *FollowService) Followings(ctx context.Context, userID uint, page repository.Page) ([]FollowView, error) {
	edges, err := s.followRepo.ListFollowings(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return followViews(edges), nil
}

// FollowCounts returns how many users follow userID and how many userID follows.
func (s *FollowService) FollowCounts(ctx context.Context, userID uint) (followers, followings int64, err error) {
	if followers, err = s.followRepo.CountFollowers(ctx, userID); err != nil {
		return 0, 0, err
	}
	if followings, err = s.followRepo.CountFollowings(ctx, userID); err != nil {
		return 0, 0, err
	}
	return followers, followings, nil
}

func (s *FollowService) requireUser(ctx context.Context, id uint) error {
	ok, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func followViews(edges []models.Follow) []FollowView {
	out := make([]FollowView, 0, len(edges))
	for _, e := range edges {
		out = append(out, newFollowView(e))
	}
	return out
}

// publish delivers a notification without failing the write that caused it.
func publish(ctx context.Context, p notifications.Publisher, userID uint, event notifications.Event) {
	if p == nil {
		return
	}
	if err := p.PublishUser(ctx, userID, event); err != nil {
		middleware.Logger.WarnContext(ctx, "notification publish failed",
			"user_id", userID, "event", event.Type, "error", err)
	}
}
