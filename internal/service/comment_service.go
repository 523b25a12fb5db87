package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/notifications"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	notifier    notifications.Publisher
}

type CreateCommentInput struct {
	OwnerID uint
	PostID  uint
	Body    string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	notifier notifications.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		notifier:    notifier,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*CommentView, error) {
	if err := validation.ValidateCommentBody(in.Body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.PostID == 0 {
		return nil, models.NewValidationError("post is required")
	}
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Body:    in.Body,
		OwnerID: in.OwnerID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	observability.RecordEvent(notifications.EventCommentCreated)
	if post.OwnerID != in.OwnerID {
		publish(ctx, s.notifier, post.OwnerID, notifications.Event{
			Type:      notifications.EventCommentCreated,
			ActorID:   in.OwnerID,
			PostID:    post.ID,
			CommentID: comment.ID,
		})
	}
	return s.GetComment(ctx, comment.ID)
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*CommentView, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := newCommentView(*comment)
	return &view, nil
}

// ListComments returns comments newest first, optionally for a single post.
func (s *CommentService) ListComments(ctx context.Context, postID uint, page repository.Page) ([]CommentView, error) {
	comments, err := s.commentRepo.List(ctx, repository.CommentFilter{PostID: postID, Page: page})
	if err != nil {
		return nil, err
	}
	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, newCommentView(c))
	}
	return out, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.OwnerID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, commentID)
}
