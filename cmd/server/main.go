package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/virti310/cybersafe-sub000/internal/auth"
	"github.com/virti310/cybersafe-sub000/internal/config"
	"github.com/virti310/cybersafe-sub000/internal/credentials"
	"github.com/virti310/cybersafe-sub000/internal/logging"
	"github.com/virti310/cybersafe-sub000/internal/notify"
	"github.com/virti310/cybersafe-sub000/internal/server"
	"github.com/virti310/cybersafe-sub000/internal/storage"
	"github.com/virti310/cybersafe-sub000/internal/storage/memory"
	"github.com/virti310/cybersafe-sub000/internal/storage/postgres"
)

type closableStore interface {
	storage.UserStore
	Close()
}

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	log.Logger = logger

	ctx := context.Background()
	userStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init storage")
	}
	defer userStore.Close()

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init notifier")
	}

	hasher, err := auth.NewPasswordHasher(cfg.PasswordHashAlgorithm, cfg.BcryptCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("init password hasher")
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL())

	svc := credentials.NewService(userStore, hasher, tokens, notifier, logger)
	srv := server.New(cfg, logger, svc, tokens)

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("storage", cfg.StorageDriver).Str("notifier", cfg.Notifier).Msg("CyberSafe auth service listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (closableStore, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
		return memory.NewUserStore(), nil
	}
	return postgres.NewUserStore(ctx, cfg.DatabaseURL)
}

func buildNotifier(cfg config.Config, logger zerolog.Logger) (notify.Notifier, error) {
	var base notify.Notifier
	switch cfg.Notifier {
	case config.NotifierSMTP:
		smtp, err := notify.NewSMTPNotifier(notify.SMTPSettings{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			return nil, err
		}
		base = smtp
	default:
		base = notify.NewLogNotifier(logger)
	}
	return notify.NewRetrying(base, cfg.NotifierTimeout, cfg.NotifierRetries, 0, logger), nil
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found; relying on existing environment")
	}
}
