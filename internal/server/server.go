// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"capsort/internal/cache"
	"capsort/internal/config"
	"capsort/internal/database"
	"capsort/internal/featureflags"
	"capsort/internal/middleware"
	"capsort/internal/models"
	"capsort/internal/repository"
	"capsort/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config           *config.Config
	db               *gorm.DB
	redis            *redis.Client
	app              *fiber.App
	promMiddleware   *fiberprometheus.FiberPrometheus
	featureFlags     *featureflags.Manager
	listingService   *service.ListingService
	savedService     *service.SavedProjectService
	projectService   *service.ProjectService
	authService      *service.AuthService
	userService      *service.UserService
	analyticsService *service.AnalyticsService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; a nil client disables caching and revocation checks.
	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	savedRepo := repository.NewSavedProjectRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	cacheTTL := time.Duration(cfg.ListingCacheTTLSeconds) * time.Second

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("capsort-api"),
		featureFlags:   flags,
	}
	s.listingService = service.NewListingService(projectRepo, savedRepo, redisClient, flags, cacheTTL)
	s.savedService = service.NewSavedProjectService(savedRepo)
	s.projectService = service.NewProjectService(projectRepo, redisClient)
	s.authService = service.NewAuthService(userRepo, redisClient, service.TokenConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      time.Duration(cfg.JWTTTLHours) * time.Hour,
	})
	s.userService = service.NewUserService(userRepo)
	s.analyticsService = service.NewAnalyticsService(repository.NewAnalyticsRepository(db))

	return s, nil
}

// NewApp builds a Fiber app with the application's error handler. Values
// read from the request are copied, since they outlive the handler in spans
// and cache entries.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "Capsort API",
		ErrorHandler: ErrorHandler,
		Immutable:    true,
	})
}

// ErrorHandler is the last resort for errors returned by handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return models.RespondWithError(c, fe.Code, models.NewNotFoundError("Route", c.Path()))
		case fiber.StatusMethodNotAllowed, fiber.StatusRequestEntityTooLarge, fiber.StatusUnsupportedMediaType:
			return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
		}
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err, "path", c.Path())
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/", s.ReadinessCheck)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Public browse with optional identity for isSaved/canEdit.
	projects := api.Group("/projects")
	projects.Get("/", s.OptionalAuth(), s.GetProjects)
	projects.Get("/:id", s.OptionalAuth(), s.GetProject)
	projects.Post("/", s.AuthRequired(), s.AdminRequired(), s.CreateProject)
	projects.Put("/:id", s.AuthRequired(), s.AdminRequired(), s.UpdateProject)
	projects.Delete("/:id", s.AuthRequired(), s.AdminRequired(), s.DeleteProject)

	saved := api.Group("/saved-projects", s.AuthRequired())
	saved.Get("/", s.GetSavedProjects)
	saved.Post("/", middleware.RateLimit(s.redis, 60, time.Minute, "save_project"), s.SaveProject)
	saved.Delete("/:projectId", s.UnsaveProject)

	users := api.Group("/users", s.AuthRequired())
	users.Get("/me", s.GetMyProfile)

	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Get("/projects/trash", s.GetTrash)
	admin.Post("/projects/:id/restore", s.RestoreProject)
	admin.Get("/analytics", s.GetAnalytics)
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// Start starts the server
func (s *Server) Start() error {
	app := NewApp()
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
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
