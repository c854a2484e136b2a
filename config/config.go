package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Logo storage backends.
const (
	LogoStorageLocal = "local"
	LogoStorageR2    = "r2"
)

// Config holds process-level configuration. Runtime feature flags
// (registration/login toggles) live in the database, not here.
type Config struct {
	DatabaseURL  string
	RedisAddr    string
	JWTSecretKey string
	ServerPort   int

	LogoStorage       string
	LogoDir           string
	LogoPublicPath    string
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from environment variables, optionally seeded from
// a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		RedisAddr:    redisAddr,
		JWTSecretKey: jwtKey,
		ServerPort:   port,

		LogoStorage:       os.Getenv("LOGO_STORAGE"),
		LogoDir:           os.Getenv("LOGO_DIR"),
		LogoPublicPath:    os.Getenv("LOGO_PUBLIC_PATH"),
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	if cfg.LogoStorage == "" {
		cfg.LogoStorage = LogoStorageLocal
	}
	switch cfg.LogoStorage {
	case LogoStorageLocal:
		if cfg.LogoDir == "" {
			cfg.LogoDir = "data/customlogos"
		}
		if cfg.LogoPublicPath == "" {
			cfg.LogoPublicPath = "/static/img/customlogo"
		}
	case LogoStorageR2:
		// The uploader constructor validates the R2 fields.
	default:
		return nil, fmt.Errorf("LOGO_STORAGE must be %q or %q, got %q", LogoStorageLocal, LogoStorageR2, cfg.LogoStorage)
	}

	return cfg, nil
}
