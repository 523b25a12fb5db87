package service

import (
	"context"
	"strings"
	"time"

	"quill/internal/auth"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/storage"
	"quill/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AccountService handles registration, sessions and profile reads.
type AccountService struct {
	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	likeRepo     repository.LikeRepository
	favoriteRepo repository.FavoriteRepository
	follows      *FollowService
	tokens       *auth.TokenManager
	revoked      auth.RevocationStore
	media        storage.Backend
}

// AccountServiceDeps groups the collaborators of AccountService.
type AccountServiceDeps struct {
	Users     repository.UserRepository
	Posts     repository.PostRepository
	Comments  repository.CommentRepository
	Likes     repository.LikeRepository
	Favorites repository.FavoriteRepository
	Follows   *FollowService
	Tokens    *auth.TokenManager
	Revoked   auth.RevocationStore
	Media     storage.Backend
}

func NewAccountService(deps AccountServiceDeps) *AccountService {
	return &AccountService{
		userRepo:     deps.Users,
		postRepo:     deps.Posts,
		commentRepo:  deps.Comments,
		likeRepo:     deps.Likes,
		favoriteRepo: deps.Favorites,
		follows:      deps.Follows,
		tokens:       deps.Tokens,
		revoked:      deps.Revoked,
		media:        deps.Media,
	}
}

type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type LoginInput struct {
	// Login is a username or an email address.
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

var errInvalidCredentials = models.NewUnauthorizedError("Invalid credentials")

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.PasswordMatchesIdentity(in.Password, username, email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.PasswordConfirm != "" && in.PasswordConfirm != in.Password {
		return nil, models.NewValidationError("Passwords do not match")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return nil, models.NewValidationError("Login and password are required")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.userRepo.GetByEmail(ctx, login)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, login)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return models.NewUnauthorizedError("Missing token")
	}
	if s.revoked == nil {
		return nil
	}
	until := time.Now().Add(time.Minute)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revoked.Revoke(ctx, claims.ID, until); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *AccountService) ListUsers(ctx context.Context, search string, page repository.Page) ([]models.User, error) {
	return s.userRepo.List(ctx, search, page)
}

// GetUser assembles the profile view for id.
func (s *AccountService) GetUser(ctx context.Context, id uint) (*UserDetail, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	followers, followings, err := s.follows.FollowCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.CountByOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.List(ctx, repository.CommentFilter{
		OwnerID: id,
		Page:    repository.Page{Limit: repository.MaxLimit},
	})
	if err != nil {
		return nil, err
	}
	likes, err := s.likeRepo.ListByOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	favorites, err := s.favoriteRepo.ListByOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &UserDetail{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Bio:             user.Bio,
		Avatar:          mediaURL(s.media, user.Avatar),
		CreatedAt:       user.CreatedAt,
		FollowersCount:  followers,
		FollowingsCount: followings,
		PostsCount:      posts,
		Comments:        make([]UserCommentView, 0, len(comments)),
		LikedPosts:      make([]EngagementView, 0, len(likes)),
		Favorites:       make([]EngagementView, 0, len(favorites)),
	}
	for _, c := range comments {
		detail.Comments = append(detail.Comments, UserCommentView{
			ID:        c.ID,
			Body:      c.Body,
			Post:      c.PostID,
			CreatedAt: c.CreatedAt,
			PostTitle: c.Post.Title,
		})
	}
	for _, l := range likes {
		detail.LikedPosts = append(detail.LikedPosts, newLikeView(l, s.media))
	}
	for _, f := range favorites {
		detail.Favorites = append(detail.Favorites, newFavoriteView(f, s.media))
	}
	return detail, nil
}
