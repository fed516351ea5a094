// Package config loads runtime settings for the thoughts backend from the
// environment, with a .env file as a development convenience.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup. It is built once in
// main and handed to the components that need it; nothing reads the
// environment after Load returns.
type Config struct {
	Port           string
	MongoURI       string
	DatabaseName   string
	JWTSecret      string
	AccessTokenTTL time.Duration
	AllowedOrigins []string

	// Revocation ledger backend: "mongo" (default) or "redis".
	BlacklistBackend string
	RedisAddr        string
	RedisPassword    string

	// Image storage backend: "gcs" (default) or "r2".
	StorageBackend  string
	GCSBucket       string
	CredentialsFile string
	R2Bucket        string
	R2AccessKeyID   string
	R2SecretKey     string
	R2Endpoint      string
	R2PublicDomain  string

	MaxUploadBytes int64

	// Error responses include stack traces (see httperr). Convenient while
	// developing, wrong for production deployments.
	ExposeStackTraces bool
}

// Load reads the .env file if present and builds the Config. It fails when
// the settings the server cannot run without are missing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:              getDefault("PORT", "3001"),
		MongoURI:          os.Getenv("MONGODB_URI"),
		DatabaseName:      getDefault("DATABASE_NAME", "thoughts"),
		JWTSecret:         os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:    accessTTL(),
		AllowedOrigins:    splitList(os.Getenv("ALLOWED_ORIGINS")),
		BlacklistBackend:  getDefault("BLACKLIST_BACKEND", "mongo"),
		RedisAddr:         getDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		StorageBackend:    getDefault("STORAGE_BACKEND", "gcs"),
		GCSBucket:         os.Getenv("GCS_BUCKET"),
		CredentialsFile:   os.Getenv("CREDENTIALS_FILE_LOCATION"),
		R2Bucket:          os.Getenv("R2_BUCKET"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretKey:       os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2Endpoint:        os.Getenv("R2_ENDPOINT"),
		R2PublicDomain:    strings.TrimRight(os.Getenv("R2_PUBLIC_DOMAIN"), "/"),
		MaxUploadBytes:    maxUploadBytes(),
		ExposeStackTraces: os.Getenv("EXPOSE_STACK_TRACES") != "false",
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("missing MONGODB_URI env var")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing ACCESS_TOKEN_SECRET env var")
	}

	switch cfg.BlacklistBackend {
	case "mongo", "redis":
	default:
		return nil, fmt.Errorf("unknown BLACKLIST_BACKEND %q", cfg.BlacklistBackend)
	}
	switch cfg.StorageBackend {
	case "gcs", "r2":
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func getDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func accessTTL() time.Duration {
	min, _ := strconv.Atoi(os.Getenv("ACCESS_TOKEN_TTL_MINUTES"))
	if min <= 0 {
		min = 15
	}
	return time.Duration(min) * time.Minute
}

func maxUploadBytes() int64 {
	sizeMB := 2
	if v := os.Getenv("MAX_UPLOAD_SIZE_MB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			sizeMB = parsed
		}
	}
	return int64(sizeMB) << 20
}
