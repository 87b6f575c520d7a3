package configs

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Configs struct {
	WebServerPort          string   `mapstructure:"WEB_SERVER_PORT"`
	LogPath                string   `mapstructure:"LOG_PATH"` // Path to log file (e.g., "/var/log/olist-helper.log")
	AllowedOrigins         []string `mapstructure:"ALLOWED_ORIGINS"`
	JWTSecret              string   `mapstructure:"JWT_SECRET"` // Shared with the session provider; empty disables auth
	MaxUploadBytes         int64    `mapstructure:"MAX_UPLOAD_BYTES"`
	UploadDir              string   `mapstructure:"UPLOAD_DIR"`
	UploadMaxAgeMinutes    int      `mapstructure:"UPLOAD_MAX_AGE_MINUTES"`
	InitialRowsPerChunk    int      `mapstructure:"INITIAL_ROWS_PER_CHUNK"`
	MinRowsPerChunk        int      `mapstructure:"MIN_ROWS_PER_CHUNK"`
	ArchiveWorkers         int      `mapstructure:"ARCHIVE_WORKERS"`
	RateLimitRequests      int      `mapstructure:"RATE_LIMIT_REQUESTS"`
	RateLimitWindowSeconds int      `mapstructure:"RATE_LIMIT_WINDOW_SECONDS"`
	RateLimitBackend       string   `mapstructure:"RATE_LIMIT_BACKEND"` // "memory" or "redis"
	DatabaseURL            string   `mapstructure:"DATABASE_URL"`
	RedisURL               string   `mapstructure:"REDIS_URL"`
	RedisHost              string   `mapstructure:"REDIS_HOST"`
	RedisPort              string   `mapstructure:"REDIS_PORT"`
	RedisPassword          string   `mapstructure:"REDIS_PASSWORD"`
	RedisDB                int      `mapstructure:"REDIS_DB"`
	CronExpression         string   `mapstructure:"CRON_EXPRESSION"` // 6 fields with seconds
	EmailProvider          string   `mapstructure:"EMAIL_PROVIDER"`  // "smtp", "mailjet" or empty
	EmailFrom              string   `mapstructure:"EMAIL_FROM"`
	SMTP_HOST              string   `mapstructure:"SMTP_HOST"`
	SMTP_PORT              int      `mapstructure:"SMTP_PORT"`
	SMTP_USER              string   `mapstructure:"SMTP_USER"`
	SMTP_PASS              string   `mapstructure:"SMTP_PASS"`
	MAILJET_API_KEY        string   `mapstructure:"MAILJET_API_KEY"`
	MAILJET_API_SECRET     string   `mapstructure:"MAILJET_API_SECRET"`
	AlertRecipients        []string `mapstructure:"ALERT_RECIPIENTS"` // Email recipients for error alerts
	TWILIO_ACCOUNT_SID     string   `mapstructure:"TWILIO_ACCOUNT_SID"`
	TWILIO_AUTH_TOKEN      string   `mapstructure:"TWILIO_AUTH_TOKEN"`
	TWILIO_FROM            string   `mapstructure:"TWILIO_FROM"`
	AlertPhones            []string `mapstructure:"ALERT_PHONES"` // SMS recipients for error alerts, empty disables SMS
}

const defaultMaxUploadBytes int64 = 5 * 1024 * 1024

func LoadConfig(path string) (*Configs, error) {
	var cfg *Configs
	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigFile(filepath.Join(path, ".env"))
	v.AutomaticEnv()

	v.SetDefault("WEB_SERVER_PORT", ":8080")
	v.SetDefault("LOG_PATH", "")
	v.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	v.SetDefault("JWT_SECRET", "")

	// Upload and splitting
	v.SetDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	v.SetDefault("UPLOAD_DIR", filepath.Join(os.TempDir(), "olist-helper"))
	v.SetDefault("UPLOAD_MAX_AGE_MINUTES", 60)
	v.SetDefault("INITIAL_ROWS_PER_CHUNK", 500)
	v.SetDefault("MIN_ROWS_PER_CHUNK", 10)
	v.SetDefault("ARCHIVE_WORKERS", 4)

	// Rate limit: 10 requests per minute per client
	v.SetDefault("RATE_LIMIT_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_BACKEND", "memory")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	// Cleanup job runs every 30 minutes
	v.SetDefault("CRON_EXPRESSION", "0 */30 * * * *")

	v.SetDefault("EMAIL_PROVIDER", "")
	v.SetDefault("EMAIL_FROM", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("MAILJET_API_KEY", "")
	v.SetDefault("MAILJET_API_SECRET", "")
	v.SetDefault("ALERT_RECIPIENTS", []string{})
	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_FROM", "")
	v.SetDefault("ALERT_PHONES", []string{})

	// Deployments without a .env file rely on the environment only
	if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
		return nil, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// every upload consumer reads this value, so they must agree on the fallback
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	return cfg, nil
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
