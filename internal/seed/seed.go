package seed

import (
	"fmt"

	"quill/internal/database"
	"quill/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configures a seeding run.
type Options struct {
	NumUsers int
	NumPosts int
	// FollowsPerUser is how many other users each seeded user follows.
	FollowsPerUser int
	// CommentsPerPost, LikesPerPost and FavoritesPerPost are upper bounds.
	CommentsPerPost  int
	LikesPerPost     int
	FavoritesPerPost int
	ShouldClean      bool
	Factory          FactoryOptions
}

// DefaultOptions is a small but well-connected demo dataset.
func DefaultOptions() Options {
	return Options{
		NumUsers:         25,
		NumPosts:         100,
		FollowsPerUser:   5,
		CommentsPerPost:  4,
		LikesPerPost:     8,
		FavoritesPerPost: 2,
		ShouldClean:      true,
	}
}

// Result summarises what a run created.
type Result struct {
	Categories []models.Category
	Users      []*models.User
	Posts      []*models.Post
}

// Seeder populates a database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder returns a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts.Factory), opts: opts}
}

// Run seeds categories, users, the follow graph, posts and engagement.
func (s *Seeder) Run() (*Result, error) {
	dry := s.opts.Factory.DryRun
	if s.opts.ShouldClean && !dry {
		if err := s.ClearAll(); err != nil {
			return nil, fmt.Errorf("clear: %w", err)
		}
	}

	categories, err := s.SeedCategories()
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	logf(dry, "✓ %d categories available", len(categories))

	users, err := s.SeedUsers(s.opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	logf(dry, "✓ %d users created", len(users))

	if err := s.SeedFollowGraph(users, s.opts.FollowsPerUser); err != nil {
		return nil, fmt.Errorf("follows: %w", err)
	}

	posts, err := s.SeedPosts(users, categories, s.opts.NumPosts)
	if err != nil {
		return nil, fmt.Errorf("posts: %w", err)
	}
	logf(dry, "✓ %d posts created", len(posts))

	if err := s.SeedEngagement(users, posts); err != nil {
		return nil, fmt.Errorf("engagement: %w", err)
	}
	logf(dry, "🎉 seeding completed")

	return &Result{Categories: categories, Users: users, Posts: posts}, nil
}

// ClearAll deletes every row, children first.
func (s *Seeder) ClearAll() error {
	logf(false, "🗑️  clearing existing data")
	tables := database.PersistentModels()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(tables[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedCategories inserts the catalogue; existing slugs are kept as they are.
func (s *Seeder) SeedCategories() ([]models.Category, error) {
	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(catalog))
	for _, c := range catalog {
		categories = append(categories, models.Category{Name: c.Name, Slug: c.Slug})
	}
	if s.opts.Factory.DryRun {
		for i := range categories {
			categories[i].ID = uint(i + 1)
		}
		return categories, nil
	}

	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		return nil, err
	}
	// Re-read so rows that already existed carry their ids.
	var stored []models.Category
	if err := s.db.Order("name ASC").Find(&stored).Error; err != nil {
		return nil, err
	}
	return stored, nil
}

// SeedUsers creates count users.
func (s *Seeder) SeedUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := s.factory.CreateUser(i + 1)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedFollowGraph makes each user follow up to perUser distinct others.
func (s *Seeder) SeedFollowGraph(users []*models.User, perUser int) error {
	if len(users) < 2 || perUser <= 0 {
		return nil
	}
	if perUser > len(users)-1 {
		perUser = len(users) - 1
	}

	edges := 0
	for i, follower := range users {
		picked := 0
		for _, j := range s.factory.rnd.Perm(len(users)) {
			if picked == perUser {
				break
			}
			if j == i {
				continue
			}
			if err := s.factory.CreateFollow(follower, users[j]); err != nil {
				return err
			}
			picked++
			edges++
		}
	}
	logf(s.opts.Factory.DryRun, "✓ %d follow edges created", edges)
	return nil
}

// SeedPosts creates count posts owned by random users, most with a category.
func (s *Seeder) SeedPosts(users []*models.User, categories []models.Category, count int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		owner := users[s.factory.rnd.Intn(len(users))]
		var category *models.Category
		if len(categories) > 0 && s.factory.rnd.Intn(5) > 0 {
			category = &categories[s.factory.rnd.Intn(len(categories))]
		}
		post, err := s.factory.CreatePost(owner, category)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// SeedEngagement adds comments, likes and favorites from random users.
func (s *Seeder) SeedEngagement(users []*models.User, posts []*models.Post) error {
	if len(users) == 0 {
		return nil
	}
	r := s.factory.rnd
	for _, post := range posts {
		for n := r.Intn(s.opts.CommentsPerPost + 1); n > 0; n-- {
			if _, err := s.factory.CreateComment(users[r.Intn(len(users))], post); err != nil {
				return err
			}
		}
		for n := r.Intn(s.opts.LikesPerPost + 1); n > 0; n-- {
			if err := s.factory.CreateLike(users[r.Intn(len(users))], post); err != nil {
				return err
			}
		}
		for n := r.Intn(s.opts.FavoritesPerPost + 1); n > 0; n-- {
			if err := s.factory.CreateFavorite(users[r.Intn(len(users))], post); err != nil {
				return err
			}
		}
	}
	return nil
}
