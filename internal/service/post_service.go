package service

import (
	"context"
	"errors"
	"strings"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/storage"
	"quill/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	categoryRepo repository.CategoryRepository
	media        storage.Backend
}

type CreatePostInput struct {
	OwnerID    uint
	Title      string
	Body       string
	CategoryID *uint
	// Preview and Images hold raw uploaded file contents.
	Preview []byte
	Images  [][]byte
}

type ListPostsInput struct {
	Search     string
	CategoryID uint
	OwnerID    uint
	Page       repository.Page
	// ViewerID is the authenticated requester, zero for anonymous.
	ViewerID uint
}

// UpdatePostInput changes the non-nil fields. ClearCategory detaches the category.
type UpdatePostInput struct {
	UserID        uint
	PostID        uint
	Title         *string
	Body          *string
	CategoryID    *uint
	ClearCategory bool
	Preview       []byte
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	categoryRepo repository.CategoryRepository,
	media storage.Backend,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		categoryRepo: categoryRepo,
		media:        media,
	}
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]PostListItem, error) {
	posts, err := s.postRepo.List(ctx, repository.PostFilter{
		Search:     in.Search,
		CategoryID: in.CategoryID,
		OwnerID:    in.OwnerID,
		Page:       in.Page,
	}, in.ViewerID)
	if err != nil {
		return nil, err
	}

	items := make([]PostListItem, 0, len(posts))
	for _, p := range posts {
		item := PostListItem{
			ID:            p.ID,
			Title:         p.Title,
			Owner:         p.OwnerID,
			OwnerUsername: p.Owner.Username,
			CategoryName:  categoryName(p),
			Preview:       mediaURL(s.media, p.Preview),
			Images:        newImageViews(p.Images, s.media),
			LikesCount:    p.LikesCount,
		}
		if in.ViewerID != 0 {
			liked := p.Liked
			item.IsLiked = &liked
		}
		items = append(items, item)
	}
	return items, nil
}

// GetPost assembles the detail view from the current rows.
func (s *PostService) GetPost(ctx context.Context, id uint) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	likedUsers, err := s.postRepo.LikedUsers(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &PostDetail{
		ID:            post.ID,
		Title:         post.Title,
		Body:          post.Body,
		Preview:       mediaURL(s.media, post.Preview),
		Owner:         post.OwnerID,
		OwnerUsername: post.Owner.Username,
		Category:      post.CategoryID,
		CategoryName:  categoryName(*post),
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
		Comments:      make([]CommentView, 0, len(comments)),
		Images:        newImageViews(post.Images, s.media),
		LikesCount:    post.LikesCount,
		LikedUsers:    make([]LikedUser, 0, len(likedUsers)),
	}
	for _, c := range comments {
		detail.Comments = append(detail.Comments, newCommentView(c))
	}
	detail.CommentsCount = len(detail.Comments)
	for _, u := range likedUsers {
		detail.LikedUsers = append(detail.LikedUsers, LikedUser{ID: u.ID, Username: u.Username})
	}
	return detail, nil
}

// CreatePost stores the preview, inserts the post, then stores and inserts
// one image row per upload. Nothing is rolled back: a failure part way
// leaves the post and the images saved so far.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (detail *PostDetail, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "post.create",
		attribute.Int64("owner_id", int64(in.OwnerID)), attribute.Int("images", len(in.Images)))
	defer func() { observability.EndSpan(span, err) }()

	title := strings.TrimSpace(in.Title)
	if err := validation.ValidatePostTitle(title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostBody(in.Body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	for _, img := range append([][]byte{in.Preview}, in.Images...) {
		if img == nil {
			continue
		}
		if _, _, err := storage.Inspect(img); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	post := &models.Post{
		Title:      title,
		Body:       in.Body,
		OwnerID:    in.OwnerID,
		CategoryID: in.CategoryID,
	}
	if in.Preview != nil {
		key, err := s.store(ctx, storage.DirPreviews, "preview", in.Preview)
		if err != nil {
			return nil, err
		}
		post.Preview = key
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	for i, content := range in.Images {
		key, err := s.store(ctx, storage.DirImages, "image", content)
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "post image upload failed",
				"post_id", post.ID, "index", i, "error", err)
			return nil, err
		}
		if err := s.postRepo.AddImage(ctx, &models.PostImage{PostID: post.ID, Image: key}); err != nil {
			return nil, err
		}
	}

	observability.RecordEvent("post.created")
	return s.GetPost(ctx, post.ID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*PostDetail, error) {
	post, err := s.ownedPost(ctx, in.UserID, in.PostID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validation.ValidatePostTitle(title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Title = title
	}
	if in.Body != nil {
		if err := validation.ValidatePostBody(*in.Body); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Body = *in.Body
	}
	switch {
	case in.ClearCategory:
		post.CategoryID = nil
	case in.CategoryID != nil:
		if err := s.requireCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
		post.CategoryID = in.CategoryID
	}

	oldPreview := ""
	if in.Preview != nil {
		if _, _, err := storage.Inspect(in.Preview); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		key, err := s.store(ctx, storage.DirPreviews, "preview", in.Preview)
		if err != nil {
			return nil, err
		}
		oldPreview, post.Preview = post.Preview, key
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	if oldPreview != "" {
		s.removeMedia(ctx, oldPreview)
	}
	return s.GetPost(ctx, post.ID)
}

// DeletePost removes an owned post with its comments, likes, favorites and images.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	// Stored files are removed after the rows; a failure only orphans the file.
	keys := []string{post.Preview}
	for _, img := range post.Images {
		keys = append(keys, img.Image)
	}
	for _, key := range keys {
		if key != "" {
			s.removeMedia(ctx, key)
		}
	}
	return nil
}

func (s *PostService) ownedPost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != userID {
		return nil, models.NewForbiddenError("You can only modify your own posts")
	}
	return post, nil
}

func (s *PostService) requireCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	_, err := s.categoryRepo.GetByID(ctx, *id)
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
		return models.NewValidationError("Category does not exist")
	}
	return err
}

func (s *PostService) store(ctx context.Context, dir, kind string, content []byte) (string, error) {
	if s.media == nil {
		return "", models.NewInternalError(errors.New("media storage not configured"))
	}
	key, err := storage.SaveImage(ctx, s.media, dir, content)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return "", models.NewValidationError(err.Error())
		}
		return "", models.NewInternalError(err)
	}
	observability.UploadedFiles.WithLabelValues(kind).Inc()
	return key, nil
}

func (s *PostService) removeMedia(ctx context.Context, key string) {
	if s.media == nil {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil {
		middleware.Logger.WarnContext(ctx, "media delete failed", "key", key, "error", err)
	}
}
