package service

import (
	"context"
	"sync"
	"testing"

	"quill/internal/notifications"
	"quill/internal/repository"
	"quill/internal/storage"
	"quill/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events map[uint][]notifications.Event
}

func (p *recordingPublisher) PublishUser(_ context.Context, userID uint, event notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = map[uint][]notifications.Event{}
	}
	p.events[userID] = append(p.events[userID], event)
	return nil
}

func (p *recordingPublisher) For(userID uint) []notifications.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[userID]
}

// fixture wires every service onto one sqlite database and a temp media root.
type fixture struct {
	db        *gorm.DB
	media     *storage.LocalBackend
	notifier  *recordingPublisher
	follows   *FollowService
	posts     *PostService
	comments  *CommentService
	likes     *LikeService
	favorites *FavoriteService
	accounts  *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	media, err := storage.NewLocalBackend(t.TempDir(), "/media")
	require.NoError(t, err)

	users := repository.NewUserRepository(db, nil)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db, nil)
	likeRepo := repository.NewLikeRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	notifier := &recordingPublisher{}

	f := &fixture{db: db, media: media, notifier: notifier}
	f.follows = NewFollowService(followRepo, users, notifier)
	f.posts = NewPostService(postRepo, commentRepo, categoryRepo, media)
	f.comments = NewCommentService(commentRepo, postRepo, notifier)
	f.likes = NewLikeService(likeRepo, postRepo, notifier, media)
	f.favorites = NewFavoriteService(favoriteRepo, postRepo, media)
	f.accounts = NewAccountService(AccountServiceDeps{
		Users:     users,
		Posts:     postRepo,
		Comments:  commentRepo,
		Likes:     likeRepo,
		Favorites: favoriteRepo,
		Follows:   f.follows,
		Media:     media,
	})
	return f
}
