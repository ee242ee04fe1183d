// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"parkhub/internal/cache"
	"parkhub/internal/config"
	"parkhub/internal/database"
	"parkhub/internal/mailer"
	"parkhub/internal/middleware"
	"parkhub/internal/models"
	"parkhub/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
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
	mailer         mailer.Mailer
	userRepo       repository.UserRepository
	otpRepo        repository.OtpRepository
	vehicleRepo    repository.VehicleRepository
	slotRepo       repository.SlotRepository
	requestRepo    repository.RequestRepository
	logRepo        repository.LogRepository
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Initialize Redis
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	var m mailer.Mailer
	if cfg.SMTPHost != "" && cfg.IsProduction() {
		m = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPassword)
	} else if cfg.SMTPHost != "" {
		// Development still talks to a local SMTP sink (e.g. Mailpit) when
		// one is configured.
		m = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPassword)
	} else {
		m = &mailer.DevMailer{Logger: middleware.Logger}
	}

	return NewServerWithDeps(cfg, db, redisClient, m)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and mail
// delivery itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, m mailer.Mailer) (*Server, error) {
	middleware.InitMiddleware(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: promMiddleware(),
		mailer:         m,
		userRepo:       repository.NewUserRepository(db),
		otpRepo:        repository.NewOtpRepository(db),
		vehicleRepo:    repository.NewVehicleRepository(db),
		slotRepo:       repository.NewSlotRepository(db),
		requestRepo:    repository.NewRequestRepository(db),
		logRepo:        repository.NewLogRepository(db),
	}

	return server, nil
}

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// promMiddleware returns the process-wide Prometheus middleware. Collectors
// register with the default registry exactly once, however many Server
// instances get built.
func promMiddleware() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New("parkhub-api")
	})
	return prom
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
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
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
		Title: "ParkHub Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/verify-otp", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "verify_otp"), s.VerifyOtp)
	auth.Post("/resend-otp", middleware.RateLimit(
		s.redis, 3, 5*time.Minute, "resend_otp"), s.ResendOtp)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Patch("/me", s.UpdateMyProfile)
	users.Get("/", middleware.RequireAdmin, s.GetAllUsers)
	users.Delete("/:id", middleware.RequireAdmin, s.DeleteUser)

	// Vehicle routes
	vehicles := protected.Group("/vehicles")
	vehicles.Post("/", s.CreateVehicle)
	vehicles.Get("/", s.GetVehicles)
	vehicles.Get("/:id", s.GetVehicle)
	vehicles.Patch("/:id", s.UpdateVehicle)
	vehicles.Delete("/:id", s.DeleteVehicle)

	// Slot routes: listing is for any authenticated user, mutations are
	// admin-only.
	slots := protected.Group("/slots")
	slots.Get("/", s.GetSlots)
	slots.Post("/bulk", middleware.RequireAdmin, s.CreateSlots)
	slots.Patch("/:id", middleware.RequireAdmin, s.UpdateSlot)
	slots.Delete("/:id", middleware.RequireAdmin, s.DeleteSlot)

	// Slot request routes
	requests := protected.Group("/requests")
	requests.Post("/", s.CreateRequest)
	requests.Get("/", s.GetRequests)
	requests.Post("/:id/approve", middleware.RequireAdmin, s.ApproveRequest)
	requests.Post("/:id/reject", middleware.RequireAdmin, s.RejectRequest)
	requests.Patch("/:id", s.UpdateRequest)
	requests.Delete("/:id", s.DeleteRequest)

	// Audit log routes
	logs := protected.Group("/logs", middleware.RequireAdmin)
	logs.Get("/", s.GetLogs)
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
		// Redis only backs rate limiting, which fails open without it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
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

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "ParkHub API",
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

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
