package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	application "github.com/freitasmatheusrn/olist-helper/application"
	configs "github.com/freitasmatheusrn/olist-helper/configs"
	"github.com/freitasmatheusrn/olist-helper/internal/database/postgres"
	redisdb "github.com/freitasmatheusrn/olist-helper/internal/database/redis"
	"github.com/freitasmatheusrn/olist-helper/internal/email"
	"github.com/freitasmatheusrn/olist-helper/internal/email/mailjet"
	"github.com/freitasmatheusrn/olist-helper/internal/email/smtp"
	"github.com/freitasmatheusrn/olist-helper/internal/history"
	"github.com/freitasmatheusrn/olist-helper/internal/ratelimit"
	"github.com/freitasmatheusrn/olist-helper/internal/scheduler"
	"github.com/freitasmatheusrn/olist-helper/internal/upload"
	"github.com/freitasmatheusrn/olist-helper/pkg/notification"
	"github.com/freitasmatheusrn/olist-helper/pkg/notification/twilio"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	config, err := configs.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	logger := newLogger(config.LogPath)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional; it backs the shared rate limiter when configured
	var redisClient *redisdb.Client
	if config.RateLimitBackend == "redis" {
		if config.RedisURL != "" {
			redisClient, err = redisdb.NewClientFromURL(config.RedisURL)
		} else {
			redisClient, err = redisdb.NewClient(redisdb.Config{
				Host:     config.RedisHost,
				Port:     config.RedisPort,
				Password: config.RedisPassword,
				DB:       config.RedisDB,
			})
		}
		if err != nil {
			logger.Fatal("error starting redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// Split history goes to Supabase when DATABASE_URL is set
	var recorder history.Recorder = history.NopRecorder{}
	if config.DatabaseURL != "" {
		pool, err := postgres.Init(config.DatabaseURL)
		if err != nil {
			logger.Fatal("error starting db", zap.Error(err))
		}
		defer pool.Close()

		repo := history.NewRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatal("error creating split history table", zap.Error(err))
		}
		recorder = repo
	}

	uploads, err := upload.NewStore(config.UploadDir, config.MaxUploadBytes)
	if err != nil {
		logger.Fatal("error preparing upload dir", zap.Error(err))
	}

	var (
		rateStore   ratelimit.Store
		memoryStore *ratelimit.MemoryStore
	)
	if redisClient != nil {
		rateStore = ratelimit.NewRedisStore(redisClient.Client)
	} else {
		memoryStore = ratelimit.NewMemoryStore()
		rateStore = memoryStore
	}

	janitor := scheduler.NewScheduler(uploads, cleanerOrNil(memoryStore), logger, newEmail(config), scheduler.Config{
		UploadMaxAge:    time.Duration(config.UploadMaxAgeMinutes) * time.Minute,
		RateLimitWindow: time.Duration(config.RateLimitWindowSeconds) * time.Second,
		AlertRecipients: config.AlertRecipients,
		AlertPhones:     config.AlertPhones,
		SMS:             newSMS(config),
	})
	if err := janitor.Start(config.CronExpression); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer janitor.Stop()

	app := application.Application{
		Config:    *config,
		Logger:    logger,
		Redis:     redisClient,
		Recorder:  recorder,
		Uploads:   uploads,
		RateStore: rateStore,
		Clock:     ratelimit.SystemClock{},
	}

	if err := app.Run(ctx, app.Mount()); err != nil {
		logger.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
}

// newLogger writes Info+ to stdout and, when logPath is set, Warn+ to file.
func newLogger(logPath string) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zap.InfoLevel,
	)

	if logPath == "" {
		return zap.New(consoleCore)
	}

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		panic("failed to open log file: " + err.Error())
	}

	// File encoder without colors
	fileEncoderConfig := encoderConfig
	fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	fileCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(fileEncoderConfig),
		zapcore.AddSync(logFile),
		zap.WarnLevel,
	)

	return zap.New(zapcore.NewTee(consoleCore, fileCore))
}

func newEmail(config *configs.Configs) email.Email {
	switch config.EmailProvider {
	case "smtp":
		return smtp.New(config.EmailFrom, config.SMTP_HOST, config.SMTP_USER, config.SMTP_PASS, config.SMTP_PORT)
	case "mailjet":
		return mailjet.New(config.MAILJET_API_KEY, config.MAILJET_API_SECRET, config.EmailFrom)
	default:
		return email.Nop{}
	}
}

func newSMS(config *configs.Configs) notification.Notification {
	if config.TWILIO_ACCOUNT_SID == "" || config.TWILIO_AUTH_TOKEN == "" {
		return notification.Nop{}
	}
	return twilio.New(config.TWILIO_ACCOUNT_SID, config.TWILIO_AUTH_TOKEN, config.TWILIO_FROM)
}

// cleanerOrNil avoids handing the scheduler a typed nil interface.
func cleanerOrNil(s *ratelimit.MemoryStore) scheduler.RateLimitCleaner {
	if s == nil {
		return nil
	}
	return s
}
