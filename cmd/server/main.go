package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/standupsync/standupsync/internal/api"
	"github.com/standupsync/standupsync/internal/auth"
	"github.com/standupsync/standupsync/internal/config"
	"github.com/standupsync/standupsync/internal/slack"
	"github.com/standupsync/standupsync/internal/standup"
	"github.com/standupsync/standupsync/internal/team"
	"github.com/standupsync/standupsync/internal/teamsettings"
	"github.com/standupsync/standupsync/internal/user"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := pool.Ping(pingCtx); err != nil {
		cancelPing()
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	cancelPing()

	teamRepo := team.NewRepository(pool)
	userRepo := user.NewRepository(pool)
	standupRepo := standup.NewRepository(pool)
	settingsRepo := teamsettings.NewRepository(pool)

	tokenManager := auth.NewTokenManager(
		cfg.JWTSecret,
		cfg.RefreshTokenSecret,
		time.Duration(cfg.AccessTokenTTL)*time.Minute,
		time.Duration(cfg.RefreshTokenTTL)*time.Minute,
	)

	slackClient := slack.NewClient()
	notifier := slack.NewNotifier(slackClient, settingsRepo)

	authService := auth.NewService(userRepo, tokenManager)
	userService := user.NewService(userRepo, teamRepo, cfg.BcryptCost)
	standupService := standup.NewService(standupRepo, notifier)

	if cfg.SlackSigningSecret == "" {
		slog.Warn("slack signing secret not set; slash-command signature verification disabled")
	}

	router := api.NewRouter(api.RouterDeps{
		DBPinger:       pool,
		Version:        cfg.Version,
		AuthService:    authService,
		UserService:    userService,
		UserRepo:       userRepo,
		StandupService: standupService,
		SettingsRepo:   settingsRepo,
		SlackClient:    slackClient,
		SlackVerifier:  slack.NewVerifier(cfg.SlackSigningSecret),
		VerifySlackSig: cfg.SlackSigningSecret != "",
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting StandupSync server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
