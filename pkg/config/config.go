package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/stayx/backend/internal/logger"
)

// Storage backend selectors for STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type Config struct {
	Port                    string
	Env                     string
	StorageBackend          string
	PostgresConnStr         string
	FirebaseCredentialsPath string
	JWTSecret               string
	GeminiAPIKey            string
	GeminiModel             string
	LogLevel                string
}

// Load reads configuration from the environment, pulling in a .env file
// first when one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Log.Infow("no .env file found, assuming environment variables are set")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		StorageBackend:          getEnv("STORAGE_BACKEND", BackendMemory),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		GeminiModel:             getEnv("GEMINI_MODEL", "gemini-1.0-pro"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
