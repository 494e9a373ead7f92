// Package server contains the HTTP handlers for the marketplace API.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"skymarket/internal/cache"
	"skymarket/internal/config"
	"skymarket/internal/database"
	"skymarket/internal/middleware"
	"skymarket/internal/models"
	"skymarket/internal/policy"
	"skymarket/internal/repository"
	"skymarket/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
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
	userRepo       repository.UserRepository
	adRepo         repository.AdRepository
	commentRepo    repository.CommentRepository
	userService    *service.UserService
	adService      *service.AdService
	commentService *service.CommentService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	adRepo := repository.NewAdRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	prom := middleware.InitMetrics("skymarket-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		adRepo:         adRepo,
		commentRepo:    commentRepo,
	}
	server.userService = service.NewUserService(userRepo)
	server.adService = service.NewAdService(adRepo)
	server.commentService = service.NewCommentService(commentRepo, adRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Tracing spans per request
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS before middlewares that can short-circuit (e.g. limiter) so browser
	// clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
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
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
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
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Skymarket Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/activate", s.ActivateAccount)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// User routes
	users := api.Group("/users")
	users.Get("/me", s.AuthRequired(), s.GetMyProfile)
	users.Put("/me", s.AuthRequired(), s.UpdateMyProfile)
	users.Patch("/me", s.AuthRequired(), s.UpdateMyProfile)
	users.Get("/", s.AuthRequired(), s.AdminRequired(), s.GetAllUsers)
	users.Post("/", s.AuthRequired(), s.AdminRequired(), s.CreateUserAsAdmin)
	users.Post("/:id/activate", s.AuthRequired(), s.AdminRequired(), s.ActivateUser)
	users.Post("/:id/set-role", s.AuthRequired(), s.AdminRequired(), s.SetUserRole)

	// Ad routes. Every endpoint is gated by the access policy for its
	// resource/action pair rather than by a per-group auth middleware.
	ads := api.Group("/ads")
	ads.Get("/", s.Authorize(policy.ResourceAd, policy.ActionList), s.ListAds)
	ads.Post("/", s.Authorize(policy.ResourceAd, policy.ActionCreate), middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_ad"), s.CreateAd)
	ads.Get("/me", s.Authorize(policy.ResourceAd, policy.ActionMe), s.MyAds)

	// Comment routes nested under their parent ad. Specific /:adId/comments
	// routes must be registered BEFORE the generic /:id routes.
	ads.Get("/:adId/comments", s.Authorize(policy.ResourceComment, policy.ActionList), s.ListComments)
	ads.Post("/:adId/comments", s.Authorize(policy.ResourceComment, policy.ActionCreate), middleware.RateLimit(
		s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	ads.Get("/:adId/comments/:commentId", s.Authorize(policy.ResourceComment, policy.ActionRetrieve), s.GetComment)
	ads.Put("/:adId/comments/:commentId", s.Authorize(policy.ResourceComment, policy.ActionUpdate), s.UpdateComment)
	ads.Patch("/:adId/comments/:commentId", s.Authorize(policy.ResourceComment, policy.ActionPartialUpdate), s.UpdateComment)
	ads.Delete("/:adId/comments/:commentId", s.Authorize(policy.ResourceComment, policy.ActionDelete), s.DeleteComment)

	// Generic /:id routes (for item detail, update, delete)
	ads.Get("/:id", s.Authorize(policy.ResourceAd, policy.ActionRetrieve), s.GetAd)
	ads.Put("/:id", s.Authorize(policy.ResourceAd, policy.ActionUpdate), s.UpdateAd)
	ads.Patch("/:id", s.Authorize(policy.ResourceAd, policy.ActionPartialUpdate), s.UpdateAd)
	ads.Delete("/:id", s.Authorize(policy.ResourceAd, policy.ActionDelete), s.DeleteAd)
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
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
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
		// The API stays functional without Redis; caching, rate limits and
		// activation tokens degrade, so readiness reports it but stays up.
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

// Authorize returns middleware enforcing the access policy for the given
// resource/action pair. It resolves the minimum level once per request and
// dispatches to the matching authentication check.
func (s *Server) Authorize(resource policy.Resource, action policy.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch policy.Required(resource, action) {
		case policy.AnonymousOK:
			return c.Next()
		case policy.AuthenticatedOrReadOnly:
			if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
				// Anonymous reads pass; pick up the identity when one is
				// offered so logs still carry the user ID.
				if userID, ok := s.optionalUserID(c); ok {
					s.storeUserID(c, userID)
				}
				return c.Next()
			}
			return s.requireUser(c, false)
		case policy.AuthenticatedRequired:
			return s.requireUser(c, false)
		case policy.AdminRequired:
			return s.requireUser(c, true)
		}
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("Access denied"))
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.requireUser(c, false)
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.isAdminByUserID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required"))
		}

		return c.Next()
	}
}

// requireUser authenticates the request via its bearer token and, when
// admin is set, additionally checks the admin role. On success the user ID
// lands in locals and the request continues.
func (s *Server) requireUser(c *fiber.Ctx, admin bool) error {
	userID, err := s.authenticate(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	if admin {
		isAdmin, adminErr := s.isAdminByUserID(c.Context(), userID)
		if adminErr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, adminErr)
		}
		if !isAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required"))
		}
	}

	s.storeUserID(c, userID)
	return c.Next()
}

// authenticate validates the bearer token and returns the authenticated user ID.
func (s *Server) authenticate(c *fiber.Ctx) (uint, error) {
	authHeader := c.Get("Authorization")
	tokenString := ""
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		return 0, models.NewUnauthorizedError("Authorization required")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != jwtIssuer {
		return 0, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != jwtAudience {
		return 0, models.NewUnauthorizedError("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid user ID in token")
	}

	// Check JTI for revocation
	if jti, exists := claims["jti"].(string); exists && jti != "" && s.redis != nil {
		isBlacklisted, redisErr := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
		if redisErr == nil && isBlacklisted > 0 {
			return 0, models.NewUnauthorizedError("Token has been revoked")
		}
	}

	return uint(userID), nil
}

// optionalUserID attempts to extract userID from Authorization header but does not enforce it.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	userID, err := s.authenticate(c)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// storeUserID records the authenticated user ID in locals and syncs it to the
// user context for logging and downstream services.
func (s *Server) storeUserID(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
	c.SetUserContext(ctx)
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Skymarket API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
