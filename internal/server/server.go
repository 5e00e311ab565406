// Package server serves the plateadmin dashboard pages and JSON API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/access"
	"github.com/plateadmin/plateadmin/internal/auth"
	"github.com/plateadmin/plateadmin/internal/config"
	"github.com/plateadmin/plateadmin/internal/database"
	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/seed"
	"github.com/plateadmin/plateadmin/internal/tasks"
)

// skuPattern matches catalog SKUs such as NP-GOLD-001
var skuPattern = regexp.MustCompile(`^(?i)[A-Z0-9]+(-[A-Z0-9]+)*$`)

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	db        *gorm.DB
	config    *config.Config
	logger    zerolog.Logger
	validator *validator.Validate
	tasks     tasks.Enqueuer
	closers   []func() error
	startedAt time.Time
	version   string
}

// New creates a new server instance backed by the configured database and Redis
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := database.Open(cfg.Database.URL, zlog)
	if err != nil {
		return nil, err
	}

	if cfg.SeedDemoData {
		if err := seed.Demo(db, zlog); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	// Initialize Asynq client for enqueueing tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	s, err := newServer(cfg, db, asynqClient, zlog, version)
	if err != nil {
		_ = asynqClient.Close()
		return nil, err
	}
	s.closers = append(s.closers, asynqClient.Close)

	return s, nil
}

// newServer wires a server around an open database and a task queue
func newServer(cfg *config.Config, db *gorm.DB, queue tasks.Enqueuer, zlog zerolog.Logger, version string) (*Server, error) {
	// Load JWT secret from database (auto-generated during first setup)
	var cfgRow models.Config
	if err := db.First(&cfgRow).Error; err == nil {
		auth.InitializeJWT(cfgRow.JWTSecret)
		zlog.Debug().Msg("Loaded JWT secret from database")
	} else {
		zlog.Info().Msg("No config found - JWT will be initialized during first setup")
	}

	validate, err := registerValidations()
	if err != nil {
		return nil, err
	}

	s := &Server{
		db:        db,
		config:    cfg,
		logger:    zlog,
		validator: validate,
		tasks:     queue,
		startedAt: time.Now(),
		version:   version,
	}

	if err := s.setupRouter(); err != nil {
		return nil, err
	}

	return s, nil
}

// registerValidations adds the custom rules to gin's binding validator
func registerValidations() (*validator.Validate, error) {
	validate, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}

	err := validate.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		return skuPattern.MatchString(fl.Field().String())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register sku validation: %w", err)
	}

	return validate, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() error {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.HTTP.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Every request gets a fresh read of its session
	s.router.Use(SessionMiddleware(s.db, s.config.Session.CookieName, s.logger))

	if err := s.setupPages(); err != nil {
		return err
	}

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public auth endpoints
	s.router.POST("/api/setup", s.setupFirstAdmin)
	s.router.POST("/api/auth/login", s.login)
	s.router.POST("/api/auth/logout", s.logout)
	s.router.POST("/api/auth/forgot-password", s.forgotPassword)
	s.router.POST("/api/auth/reset-password", s.resetPassword)

	// Any signed-in session
	api := s.router.Group("/api")
	api.Use(RequireRoles(s.logger))
	{
		api.GET("/auth/me", s.getCurrentUser)
		api.GET("/nav", s.getNav)
		api.GET("/profile", s.getProfile)
		api.PUT("/profile", s.updateProfile)
	}

	staff := s.router.Group("/api")
	staff.Use(RequireRoles(s.logger, access.StaffRoles()...))
	{
		staff.GET("/dashboard", s.getDashboard)

		staff.GET("/products", s.listProducts)
		staff.GET("/products/:id", s.getProduct)

		staff.GET("/categories", s.listCategories)
		staff.GET("/categories/:id", s.getCategory)
		staff.POST("/categories", s.createCategory)
		staff.PUT("/categories/:id", s.updateCategory)
		staff.DELETE("/categories/:id", s.deleteCategory)

		staff.GET("/orders", s.listOrders)
		staff.GET("/orders/:id", s.getOrder)
		staff.POST("/orders/:id/:action", s.transitionOrder)

		staff.GET("/customers", s.listCustomers)
		staff.GET("/customers/:id", s.getCustomer)
	}

	admin := s.router.Group("/api")
	admin.Use(RequireRoles(s.logger, access.AdminRoles()...))
	{
		admin.POST("/products", s.createProduct)
		admin.PUT("/products/:id", s.updateProduct)
		admin.DELETE("/products/:id", s.deleteProduct)

		admin.GET("/users", s.listUsers)
		admin.POST("/users", s.createUser)
		admin.DELETE("/users/:id", s.deleteUser)

		admin.GET("/config", s.getConfig)
		admin.PATCH("/config", s.updateConfig)
		admin.POST("/inventory/refresh", s.refreshInventory)

		admin.GET("/system/info", s.getSystemInfo)
	}

	s.router.NoRoute(s.notFound)

	return nil
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// Handler exposes the router, mainly for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	addr := s.config.HTTP.Addr

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("HTTP server error")
		s.close()
		return err
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.close()
	s.logger.Info().Msg("Server shutdown complete")

	return nil
}

// close releases the task queue client and flushes the database
func (s *Server) close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing Asynq client")
		}
	}

	s.logger.Info().Msg("Closing database connection...")
	if err := database.Close(s.db); err != nil {
		s.logger.Error().Err(err).Msg("Error closing database")
	}
}
