package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port             string
	Env              string
	LogLevel         string
	CORSAllowOrigin  []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	DatabaseURL      string
	AutoMigrate      bool

	ObjectStoreType string
	PublicBaseURL   string

	// S3 backend.
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string
	S3Endpoint         string

	// MinIO backend.
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	MinIOBucket    string

	// Local backend.
	LocalStoreDir    string
	LocalStoreSecret string

	DocumentTicketTTL    time.Duration
	VerifyUploads        bool
	OrphanQueueURL       string
	OrphanGracePeriod    time.Duration
	AuthJWTSecret        string
	RateLimitRPS         float64
	RateLimitBurst       int
	UploadRateLimitRPS   float64
	UploadRateLimitBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience; real env wins.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:             getEnv("PORT", "3000"),
		Env:              env,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin:  splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		HTTPReadTimeout:  getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		HTTPWriteTimeout: getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		DatabaseURL:      dbURL,
		AutoMigrate:      getBool("DB_AUTO_MIGRATE", true),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "s3")),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Bucket:           getEnv("AWS_S3_BUCKET", "trackjob"),
		S3Endpoint:         getEnv("AWS_S3_ENDPOINT", ""),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:    getBool("MINIO_USE_SSL", false),
		MinIOBucket:    getEnv("MINIO_BUCKET", "trackjob"),

		LocalStoreDir:    getEnv("LOCAL_STORE_DIR", "./data"),
		LocalStoreSecret: getEnv("LOCAL_STORE_SECRET", "dev-secret"),

		DocumentTicketTTL:    getDuration("DOCUMENT_TICKET_TTL", 5*time.Minute),
		VerifyUploads:        getBool("DOCUMENTS_VERIFY_UPLOADS", false),
		OrphanQueueURL:       getEnv("ORPHAN_SQS_QUEUE_URL", ""),
		OrphanGracePeriod:    getDuration("ORPHAN_GRACE_PERIOD", 15*time.Minute),
		AuthJWTSecret:        getEnv("AUTH_JWT_SECRET", ""),
		RateLimitRPS:         getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:       getInt("RATE_LIMIT_BURST", 40),
		UploadRateLimitRPS:   getFloat("UPLOAD_RATE_LIMIT_RPS", 1),
		UploadRateLimitBurst: getInt("UPLOAD_RATE_LIMIT_BURST", 10),
	}
}

func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Printf("config: ignoring %s: %v", path, err)
		}
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config: %s invalid bool: %v", key, err)
		return def
	}
	return val
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config: %s invalid float: %v", key, err)
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config: %s invalid duration: %v", key, err)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "test":
		return "test"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "minio":
		return "minio"
	case "local":
		return "local"
	default:
		return "s3"
	}
}

// IsDevLike reports whether env allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
