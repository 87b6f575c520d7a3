package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/freitasmatheusrn/olist-helper/internal/email"
	"github.com/freitasmatheusrn/olist-helper/pkg/notification"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// UploadSweeper removes stale uploads from disk.
type UploadSweeper interface {
	Sweep(maxAge time.Duration) (int, error)
}

// RateLimitCleaner drops idle keys from an in-memory rate limit store.
type RateLimitCleaner interface {
	Cleanup(now time.Time, window time.Duration) int
}

type Config struct {
	UploadMaxAge    time.Duration
	RateLimitWindow time.Duration
	AlertRecipients []string
	AlertPhones     []string
	SMS             notification.Notification
}

type Scheduler struct {
	cron            *cron.Cron
	uploads         UploadSweeper
	rateLimits      RateLimitCleaner
	logger          *zap.Logger
	email           email.Email
	uploadMaxAge    time.Duration
	rateLimitWindow time.Duration
	alertRecipients []string
	sms             notification.Notification
	alertPhones     []string
	now             func() time.Time
}

// NewScheduler wires the janitor. rateLimits may be nil when the limiter
// lives in redis, which expires keys by itself.
func NewScheduler(uploads UploadSweeper, rateLimits RateLimitCleaner, logger *zap.Logger, e email.Email, cfg Config) *Scheduler {
	if cfg.SMS == nil {
		cfg.SMS = notification.Nop{}
	}
	return &Scheduler{
		cron:            cron.New(cron.WithSeconds()),
		uploads:         uploads,
		rateLimits:      rateLimits,
		logger:          logger,
		email:           e,
		uploadMaxAge:    cfg.UploadMaxAge,
		rateLimitWindow: cfg.RateLimitWindow,
		alertRecipients: cfg.AlertRecipients,
		sms:             cfg.SMS,
		alertPhones:     cfg.AlertPhones,
		now:             time.Now,
	}
}

// Start registers the cleanup job.
// cronExpr uses 6 fields: seconds, minutes, hours, day of month, month, day of week
// Example: "0 */30 * * * *" runs every 30 minutes
func (s *Scheduler) Start(cronExpr string) error {
	_, err := s.cron.AddFunc(cronExpr, s.runCleanupJob)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("cron_expression", cronExpr))

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping scheduler")
	return s.cron.Stop()
}

// RunNow executes the cleanup job immediately (for manual triggers)
func (s *Scheduler) RunNow() {
	go s.runCleanupJob()
}

func (s *Scheduler) runCleanupJob() {
	startTime := s.now()

	removed, err := s.uploads.Sweep(s.uploadMaxAge)
	if err != nil {
		s.notifyError("failed to sweep upload dir", err)
	}

	var idleKeys int
	if s.rateLimits != nil {
		idleKeys = s.rateLimits.Cleanup(s.now(), s.rateLimitWindow)
	}

	s.logger.Info("cleanup job completed",
		zap.Int("uploads_removed", removed),
		zap.Int("rate_limit_keys_removed", idleKeys),
		zap.Duration("duration", s.now().Sub(startTime)),
	)
}

// notifyError logs the error and alerts by email and SMS
func (s *Scheduler) notifyError(context string, err error) {
	s.logger.Error(context, zap.Error(err))

	s.sendErrorSMS(context, err)
	if len(s.alertRecipients) == 0 {
		return
	}

	subject := "⚠️ Erro no Olist Helper - " + context
	timestamp := s.now().Format("2006-01-02 15:04:05")

	textBody := fmt.Sprintf("Contexto: %s\nErro: %v\nHorário: %s", context, err, timestamp)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: Arial, sans-serif; }
		.error-box { background-color: #ffebee; border-left: 4px solid #f44336; padding: 16px; margin: 20px 0; }
		.label { font-weight: bold; color: #333; }
		.value { color: #666; }
	</style>
</head>
<body>
	<h2 style="color: #f44336;">⚠️ Erro na limpeza de arquivos temporários</h2>
	<div class="error-box">
		<p><span class="label">Contexto:</span> <span class="value">%s</span></p>
		<p><span class="label">Erro:</span> <span class="value">%v</span></p>
		<p><span class="label">Horário:</span> <span class="value">%s</span></p>
	</div>
</body>
</html>`, context, err, timestamp)

	if sendErr := s.email.Send(subject, textBody, htmlBody, s.alertRecipients); sendErr != nil {
		s.logger.Error("failed to send error notification email",
			zap.Error(sendErr),
			zap.String("original_error_context", context),
		)
	}
}

func (s *Scheduler) sendErrorSMS(context string, err error) {
	msg := notification.AlertMessage(context, err)
	for _, phone := range s.alertPhones {
		if sendErr := s.sms.Send(phone, msg); sendErr != nil {
			s.logger.Error("failed to send error notification sms",
				zap.Error(sendErr),
				zap.String("phone", phone),
			)
		}
	}
}
