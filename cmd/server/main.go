package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/stayx/backend/internal/ai"
	"github.com/stayx/backend/internal/logger"
	"github.com/stayx/backend/internal/router"
	"github.com/stayx/backend/internal/storage"
	"github.com/stayx/backend/pkg/config"
	"github.com/stayx/backend/pkg/firebase"
	"github.com/stayx/backend/validators"

	firebaseauth "firebase.google.com/go/v4/auth"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Select the storage backend. Both implementations satisfy the same
	// contract; handlers never know which one they got.
	var store storage.Storage
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := config.InitDB(cfg.PostgresConnStr)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer config.CloseDB(db)

		gs := storage.NewGormStorage(db)
		if err := gs.Migrate(); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		if err := gs.SeedAchievements(); err != nil {
			log.Fatalf("Failed to seed achievements: %v", err)
		}
		store = gs
	case config.BackendMemory:
		store = storage.NewMemoryStorage()
		logger.Log.Warnw("using in-memory storage, data will not survive a restart")
	default:
		log.Fatalf("Unknown storage backend %q", cfg.StorageBackend)
	}

	// Initialize Firebase. Without credentials the firebase-login route is
	// disabled but the rest of the API still serves.
	var authClient *firebaseauth.Client
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		authClient = app.AuthClient
	} else {
		logger.Log.Warnw("firebase credentials not configured, firebase login disabled")
	}

	aiClient := ai.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	// Create Echo instance
	e := echo.New()
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, store, authClient, aiClient, cfg)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
