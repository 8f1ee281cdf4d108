package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/userauth/userauth-go/internal/config"
	"github.com/userauth/userauth-go/internal/crypto"
	"github.com/userauth/userauth-go/internal/handler"
	"github.com/userauth/userauth-go/internal/logging"
	"github.com/userauth/userauth-go/internal/repository"
	"github.com/userauth/userauth-go/internal/service"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Debug("no .env file found, using environment variables")
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	store, err := repository.Open(ctx, repository.Options{
		URI:           cfg.DatabaseURI,
		AutoMigrate:   cfg.DBAutoMigrate,
		TLSSkipVerify: cfg.DBTLSSkipVerify,
	}, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	hasher, err := crypto.NewPasswordHasher(
		crypto.Algorithm(cfg.Password.Algorithm),
		crypto.HashParams{
			Memory:      cfg.Password.Argon2MemoryKB,
			Iterations:  cfg.Password.Argon2Iterations,
			Parallelism: cfg.Password.Argon2Parallelism,
			SaltLength:  crypto.DefaultHashParams().SaltLength,
			KeyLength:   crypto.DefaultHashParams().KeyLength,
		},
		cfg.Password.BcryptCost,
	)
	if err != nil {
		return fmt.Errorf("configuring password hasher: %w", err)
	}

	tokens, err := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return fmt.Errorf("configuring token issuer: %w", err)
	}

	authService := service.NewAuthService(store.Users, hasher, tokens, logger)
	authHandler := handler.NewAuthHandler(authService)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(authHandler, tokens, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("backend", string(store.Backend)),
			zap.String("password_algorithm", string(hasher.Algorithm())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
