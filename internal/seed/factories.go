// Package seed creates demo data for development databases. It is not used
// by the API server.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_]+`)

// FactoryOptions tune how entities are generated.
type FactoryOptions struct {
	// DryRun assigns synthetic ids instead of writing to the database.
	DryRun bool
	// SkipBcrypt stores a placeholder hash; seeded users cannot log in.
	SkipBcrypt bool
	// MaxDays spreads created_at timestamps over the last MaxDays days.
	MaxDays int
	// RandSeed makes the generated data reproducible when non-zero.
	RandSeed int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	opts   FactoryOptions
	faker  *gofakeit.Faker
	rnd    *rand.Rand
	hash   string
	nextID uint
}

// NewFactory creates a Factory bound to db. db may be nil in DryRun mode.
func NewFactory(db *gorm.DB, opts FactoryOptions) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(seed),
		rnd:    rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		nextID: 1000,
	}
}

func (f *Factory) passwordHash() (string, error) {
	if f.opts.SkipBcrypt {
		return "seeded-without-password", nil
	}
	if f.hash == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		f.hash = string(hashed)
	}
	return f.hash, nil
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.rnd.Intn(f.opts.MaxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) persist(value any, id *uint) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		return nil
	}
	return f.db.Create(value).Error
}

// Username returns a valid username derived from a fake one; n keeps it unique.
func (f *Factory) Username(n int) string {
	base := usernameUnsafe.ReplaceAllString(strings.ToLower(f.faker.Username()), "")
	suffix := fmt.Sprintf("_%d", n)
	if limit := 30 - len(suffix); len(base) > limit {
		base = base[:limit]
	}
	if len(base) < 3 {
		base = "user"
	}
	return base + suffix
}

// CreateUser constructs and persists a sample User.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	username := f.Username(n)
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  hash,
		Bio:       f.faker.Sentence(10),
		CreatedAt: f.pastTime(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.persist(user, &user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for owner without persisting it.
func (f *Factory) BuildPost(owner *models.User, category *models.Category) *models.Post {
	post := &models.Post{
		Title:     strings.TrimSuffix(f.faker.Sentence(f.rnd.Intn(5)+3), "."),
		Body:      f.faker.Paragraph(f.rnd.Intn(3)+1, 4, 12, "\n\n"),
		OwnerID:   owner.ID,
		CreatedAt: f.pastTime(),
	}
	post.UpdatedAt = post.CreatedAt
	if category != nil {
		id := category.ID
		post.CategoryID = &id
	}
	return post
}

// CreatePost persists a generated post.
func (f *Factory) CreatePost(owner *models.User, category *models.Category) (*models.Post, error) {
	post := f.BuildPost(owner, category)
	if err := f.persist(post, &post.ID); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment from owner on post.
func (f *Factory) CreateComment(owner *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Body:    f.faker.Sentence(f.rnd.Intn(12) + 4),
		OwnerID: owner.ID,
		PostID:  post.ID,
	}
	if err := f.persist(comment, &comment.ID); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like, ignoring an existing one for the same pair.
func (f *Factory) CreateLike(owner *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{OwnerID: owner.ID, PostID: post.ID}).Error
}

// CreateFavorite persists a favorite.
func (f *Factory) CreateFavorite(owner *models.User, post *models.Post) error {
	favorite := &models.Favorite{OwnerID: owner.ID, PostID: post.ID}
	return f.persist(favorite, &favorite.ID)
}

// CreateFollow persists follower -> following, ignoring self and duplicate edges.
func (f *Factory) CreateFollow(follower, following *models.User) error {
	if follower.ID == following.ID || f.opts.DryRun {
		return nil
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID}).Error
}

func logf(dryRun bool, format string, args ...any) {
	if dryRun {
		format = "[dry-run] " + format
	}
	log.Printf(format, args...)
}
