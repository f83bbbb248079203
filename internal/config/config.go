package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	WhatsApp WhatsAppConfig
	Session  SessionConfig
	Storage  StorageConfig
	Auth     AuthConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection  string
	AutoMigrate bool
}

type WhatsAppConfig struct {
	GatewayBaseURL   string
	GatewayToken     string
	GatewayTimeout   time.Duration
	VerifyToken      string // hub.verify_token for GET verification
	WebhookSecret    string // X-Webhook-Token, empty disables the check
	AsyncProcessing  bool
	DedupTTL         time.Duration
	MessageCharLimit int
	MediaAuthHosts   []string // extra hosts that receive the gateway token on media downloads
}

type SessionConfig struct {
	Backend string // "memory" or "redis"
	TTL     time.Duration
}

type StorageConfig struct {
	Backend       string // "local" or "s3"
	UploadDir     string
	PublicBaseURL string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3Prefix      string
}

type AuthConfig struct {
	JWTSecret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/conversation.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection:  getEnv("DB_CONNECTION_STRING", ""),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		WhatsApp: WhatsAppConfig{
			GatewayBaseURL:   strings.TrimRight(getEnv("WHATSAPP_GATEWAY_URL", "http://localhost:8081"), "/"),
			GatewayToken:     getEnv("WHATSAPP_GATEWAY_TOKEN", ""),
			GatewayTimeout:   getEnvAsDuration("WHATSAPP_GATEWAY_TIMEOUT", 15*time.Second),
			VerifyToken:      getEnv("WHATSAPP_VERIFY_TOKEN", ""),
			WebhookSecret:    getEnv("WHATSAPP_WEBHOOK_SECRET", ""),
			AsyncProcessing:  getEnvAsBool("WHATSAPP_ASYNC_PROCESSING", false),
			DedupTTL:         getEnvAsDuration("WHATSAPP_DEDUP_TTL", 24*time.Hour),
			MessageCharLimit: getEnvAsInt("WHATSAPP_MESSAGE_CHAR_LIMIT", 4000),
			MediaAuthHosts:   getEnvAsList("WHATSAPP_MEDIA_AUTH_HOSTS"),
		},
		Session: SessionConfig{
			Backend: getEnv("SESSION_BACKEND", "memory"),
			TTL:     getEnvAsDuration("SESSION_TTL", 0),
		},
		Storage: StorageConfig{
			Backend:       getEnv("STORAGE_BACKEND", "local"),
			UploadDir:     getEnv("STORAGE_UPLOAD_DIR", "./uploads"),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", "http://localhost:3000/uploads"),
			S3Bucket:      getEnv("S3_BUCKET", ""),
			S3Region:      getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:    getEnv("S3_ENDPOINT", ""),
			S3Prefix:      getEnv("S3_PREFIX", "inspections/"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
	}
}

// SendURL is the gateway endpoint used for outbound text messages.
func (c WhatsAppConfig) SendURL() string {
	return c.GatewayBaseURL + "/send-message"
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s", "24h") or plain seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
