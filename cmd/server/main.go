package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	httpapi "atv-rental-backend/internal/api/http"
	"atv-rental-backend/internal/config"
	"atv-rental-backend/internal/logger"
	"atv-rental-backend/internal/repository/postgres"
	"atv-rental-backend/internal/security"
	"atv-rental-backend/internal/service"
	"atv-rental-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ATV Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	tokenManager := security.NewTokenManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	blobs, err := storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("Using local storage", "upload_dir", cfg.Storage.UploadDir)

	var emailSvc service.EmailService
	if cfg.Email.SendGridAPIKey != "" {
		emailSvc = service.NewSendGridEmailService(
			cfg.Email.SendGridAPIKey,
			cfg.Email.FromEmail,
			cfg.Email.FromName,
			cfg.Email.FrontendURL,
		)
		logger.Info("SendGrid email enabled", "from", cfg.Email.FromEmail)
	} else {
		emailSvc = service.NewLogEmailService()
		logger.Info("No SendGrid key configured, email disabled")
	}

	authSvc := service.NewAuthService(store.UserRepository, tokenManager, emailSvc)
	vehicleSvc := service.NewVehicleService(store, store.VehicleRepository, store.RentalRepository, blobs)
	rentalSvc := service.NewRentalService(store, store.RentalRepository, store.VehicleRepository, store.UserRepository, emailSvc)
	userSvc := service.NewUserService(store.UserRepository)

	router := httpapi.NewRouter(tokenManager, authSvc, vehicleSvc, rentalSvc, userSvc, blobs)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
