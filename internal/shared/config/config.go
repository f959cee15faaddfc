package config

import (
	"crypto/rand"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	RecordStoreDynamo   = "dynamodb"
	RecordStorePostgres = "postgres"
	RecordStoreMemory   = "memory"

	ObjectStoreS3    = "s3"
	ObjectStoreLocal = "local"
)

// Config holds application configuration.
type Config struct {
	Port              string
	Debug             bool
	Env               string
	USState           string
	AWSRegion         string
	AWSEndpointURL    string
	DynamoTable       string
	S3Bucket          string
	S3Prefix          string
	SSEKMSKeyID       string
	RecordStore       string
	ObjectStoreType   string
	DatabaseURL       string
	LocalStoreDir     string
	PresignExpiry     time.Duration
	SecretKey         []byte
	SecureCookies     bool
	MaxUploadBytes    int64
	VerifyPDF         bool
	UploadRatePerMin  int
	ValidateResources bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// .env files are optional; a missing file is not an error worth reporting.
	_ = godotenv.Load(".env", "cmd/.env")

	cfg := Config{
		Port:              getEnv("PORT", "5000"),
		Debug:             getEnvInt("DEBUG_MODE", 1) != 0,
		Env:               normalizeEnv(getEnv("ENV", "dev")),
		USState:           FormatState(os.Getenv("US_STATE")),
		AWSRegion:         getEnv("AWS_REGION", ""),
		AWSEndpointURL:    getEnv("AWS_ENDPOINT_URL", ""),
		DynamoTable:       getEnv("AWS_DYNAMODB_TABLE", ""),
		S3Bucket:          getEnv("AWS_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:       getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		LocalStoreDir:     getEnv("LOCAL_STORE_DIR", "./data"),
		PresignExpiry:     getEnvDuration("PRESIGN_EXPIRY", time.Hour),
		SecretKey:         []byte(os.Getenv("SECRET_KEY")),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		VerifyPDF:         getEnvBool("VERIFY_PDF", true),
		UploadRatePerMin:  getEnvInt("UPLOAD_RATE_PER_MIN", 0),
		ValidateResources: getEnvBool("VALIDATE_RESOURCES", false),
	}
	cfg.RecordStore = normalizeRecordStore(os.Getenv("RECORD_STORE"), cfg)
	cfg.ObjectStoreType = normalizeObjectStore(os.Getenv("OBJECT_STORE"), cfg)

	cfg.SecureCookies = getEnvBool("COOKIE_SECURE", !IsDevLike(cfg.Env))

	if len(cfg.SecretKey) == 0 {
		if !IsDevLike(cfg.Env) {
			log.Printf("SECRET_KEY is empty; using a per-process key, notices are lost when a redirect reaches another instance")
		}
		cfg.SecretKey = randomKey()
	}
	if cfg.Env == "production" && cfg.RecordStore == RecordStoreMemory {
		log.Printf("AWS_DYNAMODB_TABLE or DATABASE_URL is required in production")
	}

	return cfg
}

// FormatState capitalises every word of the raw US_STATE value and collapses
// runs of whitespace.
func FormatState(raw string) string {
	words := strings.Fields(raw)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool %q, using %t", key, raw, def)
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("config %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return v
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeRecordStore(raw string, cfg Config) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case RecordStoreDynamo:
		return RecordStoreDynamo
	case RecordStorePostgres, "pg":
		return RecordStorePostgres
	case RecordStoreMemory:
		return RecordStoreMemory
	}
	switch {
	case cfg.DynamoTable != "":
		return RecordStoreDynamo
	case cfg.DatabaseURL != "":
		return RecordStorePostgres
	default:
		return RecordStoreMemory
	}
}

func normalizeObjectStore(raw string, cfg Config) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ObjectStoreS3:
		return ObjectStoreS3
	case ObjectStoreLocal:
		return ObjectStoreLocal
	}
	if cfg.S3Bucket != "" {
		return ObjectStoreS3
	}
	return ObjectStoreLocal
}

// IsDevLike reports whether env allows in-memory and local fallbacks.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func randomKey() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("generate session key: %v", err)
	}
	return b
}
