package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"eventrio/config"
	"eventrio/internal/adapters/auth"
	"eventrio/internal/adapters/email"
	"eventrio/internal/adapters/gemini"
	"eventrio/internal/adapters/google"
	"eventrio/internal/adapters/lock"
	"eventrio/internal/adapters/storage"
	"eventrio/internal/adapters/whatsapp"
	deliveryhttp "eventrio/internal/delivery/http"
	"eventrio/internal/delivery/http/controllers"
	"eventrio/internal/domain"
	"eventrio/internal/repository/postgres"
	"eventrio/internal/services"
)

// application is the fully wired process: storage, services and the HTTP handler.
type application struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *sql.DB
	redis     *redis.Client
	routes    deliveryhttp.Controllers
	verifier  domain.TokenVerifier
	scheduler domain.ReminderScheduler
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// newApplication loads configuration and wires every dependency.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger(cfg)

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &application{cfg: cfg, logger: logger, db: db}
	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *application) wire(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	userRepo := postgres.NewUserRepository(a.db)
	eventRepo := postgres.NewEventRepository(a.db)
	attendeeRepo := postgres.NewAttendeeRepository(a.db)
	reminderRepo := postgres.NewReminderRepository(a.db)

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		logger.Warn("JWT_SECRET is not set, using an insecure development secret")
		jwtSecret = "eventrio-dev-secret"
	}
	tokens := auth.NewJWT(jwtSecret)
	a.verifier = tokens

	var googleAuth domain.GoogleAuthenticator
	if cfg.Google.ClientID != "" {
		googleAuth = google.NewAuthenticator(google.OAuthConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		})
	}

	var flyers domain.FileStorage
	if cfg.Flyers.Bucket != "" {
		flyers = storage.NewS3Store(storage.S3Config{
			Bucket:          cfg.Flyers.Bucket,
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Endpoint:        cfg.Flyers.Endpoint,
			PublicBaseURL:   cfg.Flyers.PublicBaseURL,
		})
	}

	var assistant domain.EventAssistant
	if cfg.Gemini.APIKey != "" {
		g, err := gemini.NewAssistant(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
		if err != nil {
			return err
		}
		assistant = g
	}

	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.AWS.Region,
			AccessKeyID:        cfg.AWS.AccessKeyID,
			SecretAccessKey:    cfg.AWS.SecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	messenger := whatsapp.NewClient(whatsapp.Config{
		APIURL:     cfg.WhatsApp.APIURL,
		Token:      cfg.WhatsApp.Token,
		RatePerSec: cfg.WhatsApp.RatePerSec,
		Timeout:    cfg.WhatsApp.Timeout,
	}, nil, logger)

	locker, err := a.runLocker(ctx)
	if err != nil {
		return err
	}

	authService := services.NewAuthService(userRepo, auth.NewBcryptHasher(0), tokens, googleAuth, cfg.JWTExpiry, cfg.RequestTimeout)
	eventService := services.NewEventService(eventRepo, attendeeRepo, reminderRepo, flyers, cfg.RequestTimeout)
	registrationService := services.NewRegistrationService(eventRepo, attendeeRepo, emailService, logger, cfg.RequestTimeout)
	chatService := services.NewChatService(attendeeRepo, eventRepo, assistant, messenger, logger, cfg.RequestTimeout)

	rc := cfg.Reminders
	a.scheduler = services.NewReminderScheduler(
		eventRepo,
		attendeeRepo,
		services.NewReminderLedger(reminderRepo, rc.Location),
		emailService,
		messenger,
		locker,
		services.ReminderConfig{
			WindowStartDays: rc.WindowStartDays,
			WindowEndDays:   rc.WindowEndDays,
			DedupScope:      domain.DedupScope(rc.DedupScope),
			Workers:         rc.Workers,
			Location:        rc.Location,
			LockTTL:         rc.LockTTL,
		},
		logger,
	)

	a.routes = deliveryhttp.Controllers{
		Auth:         controllers.NewAuthController(logger, authService),
		Events:       controllers.NewEventController(logger, eventService),
		Registration: controllers.NewRegistrationController(logger, registrationService, eventService),
		Webhook:      controllers.NewWebhookController(logger, chatService, cfg.WhatsApp.VerifyToken),
	}
	return nil
}

// runLocker uses redis when REDIS_URL is set so replicas share one reminder cycle at a time.
func (a *application) runLocker(ctx context.Context) (domain.RunLocker, error) {
	if a.cfg.RedisURL == "" {
		a.logger.Info("REDIS_URL is not set, reminder runs are serialised in-process only")
		return lock.NewLocalLocker(), nil
	}
	opts, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	a.redis = client
	return lock.NewRedisLocker(client), nil
}

// runReminders performs one cycle. A held lock is returned as is and not logged as a failure.
func (a *application) runReminders(ctx context.Context, now time.Time) (*domain.ReminderRunSummary, error) {
	summary, err := a.scheduler.RunCycle(ctx, now)
	if err != nil && !errors.Is(err, domain.ErrLockHeld) {
		a.logger.Error("reminder cycle failed", "error", err)
	}
	return summary, err
}

func (a *application) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", "error", err)
	}
}
