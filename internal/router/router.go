package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/stayx/backend/internal/ai"
	"github.com/stayx/backend/internal/handlers"
	"github.com/stayx/backend/internal/logger"
	"github.com/stayx/backend/internal/middleware"
	"github.com/stayx/backend/internal/storage"
	"github.com/stayx/backend/pkg/config"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			logger.Log.Infow("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))
}

// SetupRoutes configures all application routes and injects dependencies.
// The storage backend is chosen by the caller; nothing here knows which
// implementation it is talking to.
func SetupRoutes(e *echo.Echo, store storage.Storage, firebaseAuthClient *auth.Client, aiClient *ai.Client, cfg *config.Config) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(store, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Protected routes (require a session JWT) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	handlers.NewUserHandler(store).RegisterUserRoutes(api)
	handlers.NewConnectionHandler(store).RegisterConnectionRoutes(api)
	handlers.NewMessageHandler(store).RegisterMessageRoutes(api)
	handlers.NewActivityHandler(store).RegisterActivityRoutes(api)
	handlers.NewAchievementHandler(store).RegisterAchievementRoutes(api)
	handlers.NewRecommendationHandler(store).RegisterRecommendationRoutes(api)
	handlers.NewAIHandler(store, aiClient).RegisterAIRoutes(api)

	logger.Log.Infow("all routes configured")
}
