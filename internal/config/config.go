package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for meal photos.
const (
	StorageSupabase = "supabase"
	StorageS3       = "s3"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env        string
	ServerPort string
	SiteURL    string

	SupabaseURL       string
	SupabaseKey       string
	SupabaseJWTSecret string
	HTTPTimeout       time.Duration

	PhotoBucket       string
	StorageBackend    string
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string

	RedisAddr string
	RedisDB   int
	RedisPass string

	MySQLDSN     string
	CookieSecure bool
}

// Load builds Config from environment with sensible defaults. A .env file in the
// working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:        getEnv("APP_ENV", "prod"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		SiteURL:    os.Getenv("SITE_URL"),

		SupabaseURL:       strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseKey:       os.Getenv("SUPABASE_PUBLISHABLE_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		HTTPTimeout:       getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		PhotoBucket:       getEnv("PHOTO_BUCKET", "meal-photos"),
		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", StorageSupabase)),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		MySQLDSN:     os.Getenv("MYSQL_DSN"),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
	}
}

// SupabaseConfigured reports whether the remote service credentials are present.
func (c *Config) SupabaseConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// Dev reports whether the application runs in development mode.
func (c *Config) Dev() bool {
	return c.Env == "dev" || c.Env == "development"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
