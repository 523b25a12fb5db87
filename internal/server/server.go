// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	_ "quill/docs" // swagger docs
	"quill/internal/auth"
	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/notifications"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/service"
	"quill/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	auth           *middleware.Authenticator
	media          storage.Backend
	notifier       *notifications.Notifier

	accounts   *service.AccountService
	follows    *service.FollowService
	posts      *service.PostService
	comments   *service.CommentService
	likes      *service.LikeService
	favorites  *service.FavoriteService
	categories *service.CategoryService
}

// NewServer connects to the database, Redis and media storage described by cfg.
// Redis is optional: without it caching, rate limiting, token revocation and
// notifications are disabled.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := observability.RegisterDatabaseMetrics(db, prometheus.DefaultRegisterer); err != nil {
		middleware.Logger.Warn("database metrics not registered", "error", err)
	}

	redisClient, err := cache.Connect(context.Background(), cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without it", "error", err)
		redisClient = nil
	}

	media, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient, media)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, media storage.Backend) (*Server, error) {
	store := cache.NewStore(redisClient)
	notifier := notifications.NewNotifier(redisClient)

	var revoked auth.RevocationStore
	if redisClient != nil {
		revoked = auth.NewRedisRevocationStore(redisClient)
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db, store)
	followRepo := repository.NewFollowRepository(db)
	categoryRepo := repository.NewCategoryRepository(db, store)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	follows := service.NewFollowService(followRepo, userRepo, notifier)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("quill-api"),
		auth:           middleware.NewAuthenticator(tokens, revoked),
		media:          media,
		notifier:       notifier,
		follows:        follows,
		posts:          service.NewPostService(postRepo, commentRepo, categoryRepo, media),
		comments:       service.NewCommentService(commentRepo, postRepo, notifier),
		likes:          service.NewLikeService(likeRepo, postRepo, notifier, media),
		favorites:      service.NewFavoriteService(favoriteRepo, postRepo, media),
		categories:     service.NewCategoryService(categoryRepo),
		accounts: service.NewAccountService(service.AccountServiceDeps{
			Users:     userRepo,
			Posts:     postRepo,
			Comments:  commentRepo,
			Likes:     likeRepo,
			Favorites: favoriteRepo,
			Follows:   follows,
			Tokens:    tokens,
			Revoked:   revoked,
			Media:     media,
		}),
	}
	return s, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "quill API",
		BodyLimit: s.bodyLimit(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func (s *Server) bodyLimit() int {
	// Room for a preview plus several images in one multipart request.
	if n := s.config.MaxUploadBytes() * 8; n > 0 {
		return n
	}
	return fiber.DefaultBodyLimit
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.Tracing())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// Media files are embedded by browser clients served from other origins.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so error responses still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	if local, ok := s.media.(*storage.LocalBackend); ok {
		app.Static(s.mediaPrefix(), local.Root, fiber.Static{ByteRange: true})
	}

	api := app.Group("/api/v1")
	api.Get("/swagger/*", swagger.HandlerDefault)
	required := s.auth.Required()

	accounts := api.Group("/accounts")
	accounts.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	accounts.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	accounts.Post("/logout", required, s.Logout)
	accounts.Get("/", s.ListUsers)
	// Fixed paths before the generic /:id routes.
	accounts.Get("/followers", required, s.GetFollowers)
	accounts.Get("/followings", required, s.GetFollowings)
	accounts.Post("/:id/follow", required, middleware.RateLimit(s.redis, 30, time.Minute, "follow"), s.Follow)
	accounts.Delete("/:id/unfollow", required, s.Unfollow)
	accounts.Get("/:id", required, s.GetUser)

	categories := api.Group("/categories")
	categories.Get("/", s.ListCategories)
	categories.Post("/", required, s.CreateCategory)

	posts := api.Group("/posts")
	posts.Get("/", s.auth.Optional(), s.ListPosts)
	posts.Get("/:id", s.GetPost)
	posts.Post("/", required, middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Patch("/:id", required, s.UpdatePost)
	posts.Put("/:id", required, s.UpdatePost)
	posts.Delete("/:id", required, s.DeletePost)

	comments := api.Group("/comments")
	comments.Get("/", s.ListComments)
	comments.Get("/:id", s.GetComment)
	comments.Post("/", required, middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	comments.Delete("/:id", required, s.DeleteComment)

	likes := api.Group("/likes", required)
	likes.Get("/", s.ListLikes)
	likes.Post("/", s.CreateLike)
	likes.Delete("/:id", s.DeleteLike)

	favorites := api.Group("/favorites", required)
	favorites.Get("/", s.ListFavorites)
	favorites.Post("/", s.CreateFavorite)
	favorites.Delete("/:id", s.DeleteFavorite)
}

func (s *Server) mediaPrefix() string {
	if s.config.MediaBaseURL == "" || s.config.MediaBaseURL[0] != '/' {
		return "/media"
	}
	return s.config.MediaBaseURL
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app, starts the notification subscriber and listens on
// the configured port. It blocks until the listener stops.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.App()

	if err := s.notifier.StartPatternSubscriber(s.shutdownCtx, s.logNotification); err != nil {
		middleware.Logger.Warn("notification subscriber not started", "error", err)
	}

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

func (s *Server) logNotification(userID uint, event notifications.Event) {
	observability.RecordEvent("notification.delivered")
	middleware.Logger.Debug("notification delivered",
		"user_id", userID, "event", event.Type, "actor_id", event.ActorID)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
