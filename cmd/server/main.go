package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dreveal/backoffice/internal/config"
	"github.com/dreveal/backoffice/internal/handler"
	"github.com/dreveal/backoffice/internal/httputil"
	"github.com/dreveal/backoffice/internal/middleware"
	"github.com/dreveal/backoffice/internal/notify"
	"github.com/dreveal/backoffice/internal/redis"
	"github.com/dreveal/backoffice/internal/service"
	"github.com/dreveal/backoffice/internal/session"
	"github.com/dreveal/backoffice/internal/store"
	"github.com/dreveal/backoffice/internal/util"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("GO_ENV") == "production" || os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	sessionSecret := cfg.SessionSecret
	if sessionSecret == "" {
		sessionSecret, err = util.GenerateSecret()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to generate session secret")
		}
		log.Warn().Msg("SESSION_SECRET not set: sessions will not survive a restart")
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()
	log.Info().Str("mode", cfg.StorageMode).Msg("store ready")

	var loginLimiter middleware.LoginLimiter = middleware.NewMemoryLoginLimiter()
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		loginLimiter = middleware.NewRedisLoginLimiter(redisClient.Client)
		log.Info().Msg("redis connected, login throttling is shared")
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifier = notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		log.Info().Msg("telegram notifications enabled")
	}

	codec := session.NewCodec(sessionSecret, cfg.AdminUsername)
	rotator, err := session.NewRotator(config.SecretRotationInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize secret rotator")
	}
	rotator.Start()
	defer rotator.Stop()

	authService := service.NewAuthService(codec, rotator, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash)
	waitlistService := service.NewWaitlistService(st, notifier)
	reportService := service.NewReportService(st)

	gate := middleware.NewSessionGate(authService, isProduction)
	loginLimit := middleware.NewLoginLimitMiddleware(loginLimiter)
	bodyLimit := middleware.NewBodyLimitMiddleware(config.MaxUploadSize)
	securityHeaders := middleware.NewSecurityHeadersMiddleware(isProduction)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(securityHeaders.Handler)
	r.Use(bodyLimit.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	handler.RegisterRoutes(r, handler.RouterDeps{
		Auth:       handler.NewAuthHandler(authService, isProduction),
		Waitlist:   handler.NewWaitlistHandler(waitlistService),
		Reports:    handler.NewReportHandler(reportService),
		Artifacts:  handler.NewArtifactHandler(st),
		Gate:       gate.Handler,
		LoginLimit: loginLimit.Handler,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StorageMode == config.StorageModePostgres {
		return store.NewPGStore(cfg.DatabaseURL, cfg.BaseURL)
	}
	return store.NewFileStore(cfg.DataDir)
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
