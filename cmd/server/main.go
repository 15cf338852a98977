package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumeatelie/lume-backend/config"
	"github.com/lumeatelie/lume-backend/internal/app/controller"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/internal/app/service"
	"github.com/lumeatelie/lume-backend/internal/db"
	"github.com/lumeatelie/lume-backend/internal/events"
	"github.com/lumeatelie/lume-backend/internal/middleware"
	"github.com/lumeatelie/lume-backend/internal/router"
	"github.com/lumeatelie/lume-backend/internal/scheduler"
	"github.com/lumeatelie/lume-backend/internal/storage"
	"github.com/lumeatelie/lume-backend/internal/websocket"
	"github.com/lumeatelie/lume-backend/pkg/cep/viacep"
	"github.com/lumeatelie/lume-backend/pkg/email/resend"
	"github.com/lumeatelie/lume-backend/pkg/logger"
	"github.com/lumeatelie/lume-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting LUME Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Cart storage: Redis in production so carts survive restarts and are
	// shared across replicas; in-memory otherwise.
	var cartRepo repository.CartRepository
	var memoryCart *repository.MemoryCartRepository
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		cartRepo = repository.NewRedisCartRepository(redis.GetClient())
	} else {
		logger.Warn("Redis disabled, carts are held in memory and lost on restart")
		memoryCart = repository.NewMemoryCartRepository()
		cartRepo = memoryCart
	}

	// External clients
	cepClient, err := viacep.NewClient(viacep.Config{BaseURL: cfg.ViaCEP.BaseURL})
	if err != nil {
		logger.Fatal("Failed to create ViaCEP client", err)
	}

	var mailer service.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		resendClient, err := resend.NewClient(resend.Config{
			APIKey:  cfg.Email.ResendAPIKey,
			From:    cfg.Email.From,
			BaseURL: cfg.Email.ResendURL,
		})
		if err != nil {
			logger.Fatal("Failed to create Resend client", err)
		}
		mailer = resendClient
	} else {
		logger.Warn("RESEND_API_KEY not set, order confirmation emails are disabled")
	}

	var s3 *storage.S3Storage
	var promoter service.ImagePromoter
	if cfg.S3.Bucket != "" {
		s3 = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
		promoter = s3
	} else {
		logger.Warn("S3 bucket not configured, personalization uploads are disabled")
	}

	// Cart change fan-out for cross-tab sync
	bus := events.NewBus()
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	shippingRepo := repository.NewShippingRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, bus)
	shippingService := service.NewShippingService(shippingRepo, cepClient, cfg.Shipping)
	addressService := service.NewAddressService(addressRepo, cepClient)
	paymentService := service.NewPaymentService(cfg.Stripe, orderRepo, mailer, cfg.Email.From)
	orderService := service.NewOrderService(
		orderRepo,
		productRepo,
		userRepo,
		cartRepo,
		shippingService,
		paymentService,
		promoter,
	)
	reportService := service.NewReportService(orderRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService, hub, bus)
	shippingController := controller.NewShippingController(shippingService)
	orderController := controller.NewOrderController(orderService)
	addressController := controller.NewAddressController(addressService)
	uploadController := controller.NewUploadController(s3)
	reportController := controller.NewReportController(reportService)
	webhookController := controller.NewWebhookController(paymentService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Background sweeps: idle in-memory carts and abandoned pending uploads
	cleanup := scheduler.NewCleanupScheduler(memoryCart, s3)
	if err := cleanup.Start(); err != nil {
		logger.Fatal("Failed to start cleanup scheduler", err)
	}
	defer cleanup.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		cartController,
		shippingController,
		orderController,
		addressController,
		uploadController,
		reportController,
		webhookController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
