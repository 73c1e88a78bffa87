package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Documents DocumentsConfig
	Storage   StorageConfig
	AI        AIConfig
	Cache     CacheConfig
	Auth      AuthConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DocumentsConfig holds the hosted document store configuration.
// The store is an Appwrite-compatible REST API; database and collection
// identifiers must match the provisioned project.
type DocumentsConfig struct {
	Endpoint          string
	ProjectID         string
	APIKey            string
	DatabaseID        string
	ArticleCollection string
	CommentCollection string
	FollowCollection  string
	RequestTimeout    time.Duration
	RetryMaxElapsed   time.Duration
	RetryInitialDelay time.Duration
}

// StorageConfig holds Cloudinary configuration
type StorageConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
	MaxFileSize  int64
	PreviewWidth int
}

// AIConfig holds the generative text service configuration.
// An empty APIKey is valid: every enrichment call then uses its
// deterministic local fallback.
type AIConfig struct {
	APIKey          string
	Model           string
	Endpoint        string
	RequestTimeout  time.Duration
	RetryMaxElapsed time.Duration
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Provider      string // "memory" or "redis"
	RedisURL      string
	RedisDB       int
	RedisPassword string
	DefaultTTL    time.Duration
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret          string
	JWTExpiry          time.Duration
	SessionCookie      string
	CookieSecure       bool
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, applying defaults
// suitable for local development.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("HOST", "0.0.0.0"),
			Port:         getEnv("PORT", "9000"),
			Environment:  getEnv("GO_ENV", "development"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Documents: DocumentsConfig{
			Endpoint:          getEnv("DOCSTORE_ENDPOINT", "https://cloud.appwrite.io/v1"),
			ProjectID:         getEnv("DOCSTORE_PROJECT_ID", ""),
			APIKey:            getEnv("DOCSTORE_API_KEY", ""),
			DatabaseID:        getEnv("DOCSTORE_DATABASE_ID", "pedium_db"),
			ArticleCollection: getEnv("DOCSTORE_ARTICLES_COLLECTION", "articles"),
			CommentCollection: getEnv("DOCSTORE_COMMENTS_COLLECTION", "comments"),
			FollowCollection:  getEnv("DOCSTORE_FOLLOWS_COLLECTION", "follows"),
			RequestTimeout:    getDuration("DOCSTORE_REQUEST_TIMEOUT", 15*time.Second),
			RetryMaxElapsed:   getDuration("DOCSTORE_RETRY_MAX_ELAPSED", 10*time.Second),
			RetryInitialDelay: getDuration("DOCSTORE_RETRY_INITIAL_DELAY", 200*time.Millisecond),
		},
		Storage: StorageConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
			APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
			UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "pedium"),
			MaxFileSize:  getInt64("STORAGE_MAX_FILE_SIZE", 10*1024*1024),
			PreviewWidth: getInt("STORAGE_PREVIEW_WIDTH", 800),
		},
		AI: AIConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Endpoint:        getEnv("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta"),
			RequestTimeout:  getDuration("GEMINI_REQUEST_TIMEOUT", 20*time.Second),
			RetryMaxElapsed: getDuration("GEMINI_RETRY_MAX_ELAPSED", 5*time.Second),
		},
		Cache: CacheConfig{
			Provider:      getEnv("CACHE_PROVIDER", "memory"),
			RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
			RedisDB:       getInt("REDIS_DB", 0),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			DefaultTTL:    getDuration("CACHE_DEFAULT_TTL", 15*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			JWTExpiry:          getDuration("JWT_EXPIRY", 7*24*time.Hour),
			SessionCookie:      getEnv("SESSION_COOKIE_NAME", "pedium_session"),
			CookieSecure:       getEnv("GO_ENV", "development") == "production",
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// validate checks that required settings are present and well formed
func (c *Config) validate() error {
	var problems []string

	if c.Documents.ProjectID == "" {
		problems = append(problems, "DOCSTORE_PROJECT_ID is required")
	}
	if _, err := url.Parse(c.Documents.Endpoint); err != nil {
		problems = append(problems, fmt.Sprintf("DOCSTORE_ENDPOINT is not a valid URL: %v", err))
	}
	if c.Auth.JWTSecret == "" {
		if c.Server.Environment == "production" {
			problems = append(problems, "JWT_SECRET is required in production")
		} else {
			c.Auth.JWTSecret = "pedium-dev-secret"
		}
	}
	if c.Cache.Provider != "memory" && c.Cache.Provider != "redis" {
		problems = append(problems, fmt.Sprintf("CACHE_PROVIDER %q is not supported (memory, redis)", c.Cache.Provider))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
