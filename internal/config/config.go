package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverSupabase = "supabase"
)

// Config holds the process configuration read from the environment
type Config struct {
	Port     string
	AppEnv   string
	LogLevel zerolog.Level

	StorageDriver          string
	DatabaseURL            string
	SQLitePath             string
	MongoURI               string
	MongoDatabase          string
	SupabaseURL            string
	SupabaseServiceRoleKey string

	SupabaseJWTSecret string
	SessionCookieName string

	RedisURL      string
	SyncStatusTTL time.Duration

	EncryptionKey string

	ShopifyAPIVersion   string
	ShopifyPageLimit    int
	ValidateStoreTokens bool

	CORSAllowedOrigins []string
}

// Load reads .env when present and then the process environment
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg(".env file not found, using process environment")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from an environment lookup function
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	level, err := zerolog.ParseLevel(strings.ToLower(get("LOG_LEVEL", "info")))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	ttl, err := time.ParseDuration(get("SYNC_STATUS_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_STATUS_TTL: %w", err)
	}

	pageLimit, err := strconv.Atoi(get("SHOPIFY_PAGE_LIMIT", "250"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHOPIFY_PAGE_LIMIT: %w", err)
	}

	validateTokens, err := strconv.ParseBool(get("VALIDATE_STORE_TOKENS", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid VALIDATE_STORE_TOKENS: %w", err)
	}

	cfg := &Config{
		Port:                   get("PORT", "8080"),
		AppEnv:                 get("APP_ENV", "development"),
		LogLevel:               level,
		StorageDriver:          strings.ToLower(get("STORAGE_DRIVER", DriverSQLite)),
		DatabaseURL:            get("DATABASE_URL", ""),
		SQLitePath:             get("SQLITE_PATH", "dashboard.db"),
		MongoURI:               get("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:          get("MONGODB_DATABASE", "storefront_analytics"),
		SupabaseURL:            get("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: get("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:      get("SUPABASE_JWT_SECRET", ""),
		SessionCookieName:      get("SESSION_COOKIE_NAME", "sb-access-token"),
		RedisURL:               get("REDIS_URL", ""),
		SyncStatusTTL:          ttl,
		EncryptionKey:          get("ENCRYPTION_KEY", ""),
		ShopifyAPIVersion:      get("SHOPIFY_API_VERSION", "2023-10"),
		ShopifyPageLimit:       pageLimit,
		ValidateStoreTokens:    validateTokens,
		CORSAllowedOrigins:     splitList(get("CORS_ALLOWED_ORIGINS", "*")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings for the selected storage driver
func (c *Config) Validate() error {
	var errs []error

	if c.SupabaseJWTSecret == "" {
		errs = append(errs, errors.New("SUPABASE_JWT_SECRET is required"))
	}
	if c.EncryptionKey == "" {
		errs = append(errs, errors.New("ENCRYPTION_KEY is required"))
	}
	if c.ShopifyPageLimit < 1 || c.ShopifyPageLimit > 250 {
		errs = append(errs, fmt.Errorf("SHOPIFY_PAGE_LIMIT must be between 1 and 250, got %d", c.ShopifyPageLimit))
	}

	switch c.StorageDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for the mongo driver"))
		}
	case DriverSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceRoleKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for the supabase driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
