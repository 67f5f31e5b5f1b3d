package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	UploadDir      string
	TempFileMaxAge time.Duration

	// Hosted object-detection service
	InferenceAPIURL  string
	InferenceAPIKey  string
	InferenceModelID string
	InferenceTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDatabase string

	// SMTP
	SMTPHost       string
	SMTPPort       int
	EmailUser      string
	EmailPassword  string
	EmailRecipient string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// InferenceEndpoint builds the full model endpoint URL for the detection API.
func (c *Config) InferenceEndpoint() string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.InferenceAPIURL, "/"), c.InferenceModelID)
}

func LoadFromEnv() (*Config, error) {
	// Optional .env for local development; env vars win when both are set.
	_ = godotenv.Load()

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "5001"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 20*1024*1024), // 20MB

		UploadDir:      getEnvOrDefault("UPLOAD_DIR", "uploads"),
		TempFileMaxAge: parseDurationOrDefault("TEMP_FILE_MAX_AGE", time.Hour),

		InferenceAPIURL:  getEnvOrDefault("ROBOFLOW_API_URL", "https://detect.roboflow.com"),
		InferenceAPIKey:  os.Getenv("ROBOFLOW_API_KEY"),
		InferenceModelID: getEnvOrDefault("ROBOFLOW_MODEL_ID", "yolov8-3hm9w/1"),
		InferenceTimeout: parseDurationOrDefault("INFERENCE_TIMEOUT", 30*time.Second),

		MongoURI:      getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "UrbanFix"),

		SMTPHost:       getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       int(parseIntOrDefault("SMTP_PORT", 587)),
		EmailUser:      os.Getenv("EMAIL_USER"),
		EmailPassword:  os.Getenv("EMAIL_PASSWORD"),
		EmailRecipient: getEnvOrDefault("EMAIL_RECIPIENT", os.Getenv("EMAIL_USER")),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.SMTPPort < 1 || cfg.SMTPPort > 65535 {
		return nil, fmt.Errorf("invalid SMTP_PORT: %d", cfg.SMTPPort)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.InferenceTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, inference=%s)",
			cfg.RequestTimeout, cfg.InferenceTimeout)
	}
	if cfg.UploadDir == "" {
		return nil, fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
