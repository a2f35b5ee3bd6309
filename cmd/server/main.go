package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	httpapi "rentmarket-backend/internal/api/http"
	"rentmarket-backend/internal/config"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository/postgres"
	"rentmarket-backend/internal/security"
	"rentmarket-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentmarket Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Payment Gateway
	gateway, err := service.NewPaymentGateway(cfg.Gateway.Type)
	if err != nil {
		logger.Error("Failed to initialize payment gateway", "error", err)
		log.Fatalf("Failed to initialize payment gateway: %v", err)
	}
	verifier := service.NewSignatureVerifier(cfg.Gateway.Secret)

	// Initialize Notifier
	notifier := service.NewEmailNotifier(
		cfg.SendGrid.APIKey,
		cfg.SendGrid.FromEmail,
		cfg.SendGrid.FromName,
		store.DirectoryRepository,
	)

	// Initialize Services
	settings := service.NewSettings(store.SettingsRepository, service.Fallbacks{
		TaxRate:                cfg.Engine.TaxRate,
		LateFeePerDay:          cfg.Engine.LateFeePerDay,
		ReminderLookaheadHours: cfg.Engine.ReminderLookaheadHours,
	})
	productSvc := service.NewProductService(store.ProductRepository)
	availabilitySvc := service.NewAvailabilityService(store.ProductRepository, store.ReservationRepository)
	pricingSvc := service.NewPricingService(store.ProductRepository, store.CouponRepository, settings)
	orderSvc := service.NewOrderService(
		store.OrderRepository,
		store.ReservationRepository,
		store.PickupRepository,
		store.ReturnRepository,
		store.InvoiceRepository,
		store.ProductRepository,
		store.CouponRepository,
		pricingSvc,
		availabilitySvc,
		settings,
		notifier,
	)
	invoiceSvc := service.NewInvoiceService(
		store.InvoiceRepository,
		store.OrderRepository,
		store.ReturnRepository,
		gateway,
		verifier,
	)

	// Set up HTTP server
	apiServer := httpapi.NewServer(productSvc, availabilitySvc, pricingSvc, orderSvc, invoiceSvc, tokenManager)
	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
