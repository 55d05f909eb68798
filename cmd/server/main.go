package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/AnshRaj112/authgate-backend/internal/config"
	"github.com/AnshRaj112/authgate-backend/internal/database"
	"github.com/AnshRaj112/authgate-backend/internal/handlers"
	"github.com/AnshRaj112/authgate-backend/internal/logging"
	"github.com/AnshRaj112/authgate-backend/internal/mail"
	"github.com/AnshRaj112/authgate-backend/internal/middleware"
	"github.com/AnshRaj112/authgate-backend/internal/repository"
	"github.com/AnshRaj112/authgate-backend/internal/routes"
	"github.com/AnshRaj112/authgate-backend/internal/services"
	"github.com/AnshRaj112/authgate-backend/internal/validation"
	"github.com/AnshRaj112/authgate-backend/pkg/clientip"
)

const shutdownTimeout = 10 * time.Second

var release = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Dev: cfg.LogDev || !cfg.IsProduction()})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	proxies, err := clientip.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	flushSentry, err := logging.InitSentry(cfg.SentryDSN, cfg.Environment, release)
	if err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer flushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to MongoDB")
	mongoClient, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Disconnect(mongoClient); err != nil {
			logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()

	logger.Info("connecting to Redis")
	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURI)
	if err != nil {
		return err
	}
	defer func() { _ = database.DisconnectRedis(redisClient) }()

	validator := validation.New()
	store := repository.NewMongoAccountStore(db, validator)
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	var auditor services.LoginAuditor = services.NopAuditor{}
	if cfg.PostgresURI != "" {
		pg, err := database.ConnectPostgres(ctx, cfg.PostgresURI)
		if err != nil {
			return err
		}
		defer func() { _ = database.DisconnectPostgres(pg) }()
		if err := database.InitPostgresTables(ctx, pg); err != nil {
			return err
		}
		auditor = services.NewPostgresAuditor(pg)
		logger.Info("login audit enabled")
	}

	tokens, err := services.NewTokenIssuer(services.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	if err != nil {
		return err
	}

	var sender mail.Sender
	if cfg.ResendAPIKey != "" {
		sender = mail.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom)
	} else {
		logger.Warn("RESEND_API_KEY not set, emails are only logged")
		sender = mail.NewLogSender(logger)
	}
	mailer := mail.NewService(sender, cfg.AppName, cfg.JWT.OTPTTL, cfg.JWT.ResetTokenTTL)

	var google services.IDTokenVerifier
	if cfg.GoogleClientID != "" {
		verifier, err := services.NewGoogleVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			logger.Warn("google login disabled", zap.Error(err))
		} else {
			defer verifier.Close()
			google = verifier
		}
	}

	var avatars services.AvatarStorage
	if cfg.CloudinaryEnabled() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logger.Warn("avatar uploads disabled", zap.Error(err))
		} else {
			avatars = cld
		}
	} else {
		logger.Warn("cloudinary credentials not found, avatar uploads are disabled")
	}

	authService := services.NewAuthService(services.AuthDeps{
		Store:    store,
		Tokens:   tokens,
		Notifier: mailer,
		Google:   google,
		Auditor:  auditor,
		Logger:   logger,
	}, services.AuthConfig{
		ClientURL:      cfg.ClientURL,
		OTPTTL:         cfg.JWT.OTPTTL,
		ResetTokenTTL:  cfg.JWT.ResetTokenTTL,
		MaxOTPAttempts: cfg.Security.MaxOTPAttempts,
		Lockout: services.LockoutPolicy{
			MaxAttempts:  cfg.Security.MaxLoginAttempts,
			LockDuration: cfg.Security.LockDuration,
		},
	})
	profileService := services.NewProfileService(store, avatars, logger)

	responder := handlers.NewResponder(logger, !cfg.IsProduction())
	authLimiter := middleware.NewRateLimiter(redisClient, "auth",
		cfg.Security.AuthRateLimit, cfg.Security.AuthRateWindow, responder.Error, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RealIP(proxies))
	r.Use(middleware.RequestLogger(logger))
	if cfg.SentryDSN != "" {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.IsProduction() {
		ipLimiter := middleware.NewIPRateLimiter(rate.Limit(1), 10, responder.Error)
		go ipLimiter.RunCleanup(ctx)
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost, ipLimiter) {
			r.Use(mw)
		}
		logger.Info("production security enabled")
	}

	health := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"mongo": handlers.MongoPinger(mongoClient),
		"redis": handlers.RedisPinger(redisClient),
	})
	routes.SetupRoutes(r, routes.Deps{
		Responder:     responder,
		Auth:          handlers.NewAuthHandler(authService, validator, handlers.NewCookieConfig(cfg.IsProduction())),
		Profile:       handlers.NewProfileHandler(profileService, validator),
		Health:        health,
		Authenticator: middleware.NewAuthenticator(authService, responder.Error),
		AuthLimiter:   authLimiter.Handler,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("authgate backend listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sentry.CaptureException(err)
		return err
	}
	return nil
}
