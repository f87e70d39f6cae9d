// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "fritter/docs" // swagger docs
	"fritter/internal/cache"
	"fritter/internal/config"
	"fritter/internal/database"
	"fritter/internal/jobs"
	"fritter/internal/middleware"
	"fritter/internal/models"
	"fritter/internal/notifications"
	"fritter/internal/repository"
	"fritter/internal/service"
	"fritter/internal/validation"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// shutdowner is a background component stopped with the server.
type shutdowner interface {
	Name() string
	Shutdown(ctx context.Context) error
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	userRepo       repository.UserRepository
	freetRepo      repository.FreetRepository
	paymentRepo    repository.PaymentProfileRepository
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	events         *notifications.Dispatcher
	sweeper        *jobs.ExpirySweeper
	freetService   *service.FreetService
	paymentService *service.PaymentService
	userService    *service.UserService
	now            func() time.Time
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	readDB, err := database.ConnectRead(cfg)
	if err != nil {
		middleware.Logger.Warn("read replica unavailable, reading from primary", slog.String("error", err.Error()))
	} else if readDB != nil {
		database.SetReadDB(readDB)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; events are then delivered to local connections only.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	listTTL := cache.ListTTL
	if cfg.FeedCacheTTLSeconds > 0 {
		listTTL = time.Duration(cfg.FeedCacheTTLSeconds) * time.Second
	}
	limits := validation.DefaultLimits()
	if cfg.FreetMaxLength > 0 {
		limits.FreetMaxLength = cfg.FreetMaxLength
	}
	if cfg.ListingNameMaxLength > 0 {
		limits.ListingNameMaxLength = cfg.ListingNameMaxLength
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("fritter-api"),
		userRepo:       repository.NewUserRepository(db),
		freetRepo:      repository.NewFreetRepository(db, listTTL),
		paymentRepo:    repository.NewPaymentProfileRepository(db),
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		now:            time.Now,
	}
	s.events = notifications.NewDispatcher(s.notifier, s.hub)
	s.sweeper = jobs.NewExpirySweeper(s.freetRepo, s.events)
	s.freetService = service.NewFreetService(s.freetRepo, s.paymentRepo, s.userRepo, s.events, limits)
	s.paymentService = service.NewPaymentService(s.paymentRepo, s.userRepo)
	s.userService = service.NewUserService(s.userRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing runs before ContextMiddleware so the trace id reaches the logs.
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS must run before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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
	auth := s.AuthRequired()

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Fritter Backend Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Accounts
	authRoutes := api.Group("/auth")
	authRoutes.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	authRoutes.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	authRoutes.Post("/logout", auth, s.Logout)

	users := api.Group("/users")
	users.Get("/me", auth, s.GetMe)
	users.Delete("/me", auth, s.DeleteMe)
	users.Get("/:username", s.GetUserByUsername)

	// Freets. Fixed paths are registered before /:id.
	posts := api.Group("/posts")
	posts.Get("/", s.GetFreets)
	posts.Get("/feed", s.GetFeed)
	posts.Get("/archived", auth, s.GetArchived)
	posts.Get("/listings", s.GetListings)
	posts.Post("/", auth, middleware.RateLimit(s.redis, 10, time.Minute, "create_freet"), s.CreateFreet)
	posts.Patch("/archived/:id", auth, s.SetArchiveStatus)
	posts.Patch("/listings/purchase/:id", auth,
		middleware.RateLimitWithPolicy(s.redis, 5, time.Minute, middleware.FailClosed, "purchase"), s.PurchaseListing)
	posts.Patch("/:id/listing", auth, s.UpdateListing)
	posts.Patch("/:id", auth, s.UpdateFreet)
	posts.Delete("/:id", auth, s.DeleteFreet)

	// FritterPay
	payments := api.Group("/payment-profiles")
	payments.Get("/", s.GetPaymentProfiles)
	payments.Post("/", auth, s.CreatePaymentProfile)
	payments.Put("/:id", auth, s.UpdatePaymentProfile)
	payments.Delete("/:id", auth, s.DeletePaymentProfile)

	// Realtime events
	api.Post("/ws/ticket", auth, s.IssueWSTicket)
	api.Get("/ws", s.WSTicketAuth(), s.EventStreamHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   s.now().UTC(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional; a
// configured but unreachable Redis makes the instance unready.
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

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
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
		"connections": s.hub.Count(),
		"time":        s.now().UTC(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, userID, err := middleware.Authenticate(c.UserContext(), s.redis, s.config.JWTSecret, middleware.BearerToken(c))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(authErrorMessage(err)))
		}

		// Tokens outlive a deleted account; the account must still exist.
		if _, err := s.userRepo.GetByID(c.UserContext(), userID); err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Account no longer exists"))
			}
			return respondServiceError(c, err)
		}

		c.Locals("userID", userID)
		c.Locals("claims", claims)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, middleware.ErrMissingToken):
		return "You must be logged in to complete this action."
	case errors.Is(err, middleware.ErrRevokedToken):
		return "Token has been revoked"
	default:
		return "Invalid or expired token"
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Fritter API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.notifier.Enabled() {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start event hub wiring", slog.String("error", err.Error()))
			}
		}()
	}
	if err := s.sweeper.Start(s.config.ExpirySweepSchedule); err != nil {
		return err
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	for _, c := range []shutdowner{s.sweeper, s.hub} {
		if err := c.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down "+c.Name(), slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}
	if readDB := database.GetReadDB(); readDB != nil {
		if sqlDB, err := readDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
