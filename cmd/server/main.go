// QuickDataPro core server: auth orchestration and conversation relay.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/quickdatapro/core/internal/api"
	"github.com/quickdatapro/core/internal/auth"
	"github.com/quickdatapro/core/internal/config"
	"github.com/quickdatapro/core/internal/gateway"
	"github.com/quickdatapro/core/internal/middleware"
	"github.com/quickdatapro/core/internal/relay"
	"github.com/quickdatapro/core/internal/sessionctx"
	"github.com/quickdatapro/core/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Restore any persisted session; corrupted state means "no session".
	sessions := sessionctx.New(repo)
	if err := sessions.Restore(context.Background()); err != nil {
		slog.Error("Failed to restore session state", "error", err)
		os.Exit(1)
	}

	// Collaborator clients.
	identity := gateway.NewIdentityClient(cfg.AuthAPIURL, cfg.HTTPTimeout)
	notifier := gateway.NewNotifier(cfg.AuthAPIURL, cfg.HTTPTimeout)
	loginLog := gateway.NewLoginLogger(cfg.LoginLogURL, cfg.HTTPTimeout)
	relayClient := gateway.NewRelayClient(cfg.RelayAPIURL, cfg.HTTPTimeout)

	var feedback api.FeedbackGateway
	if cfg.FeedbackAPIURL != "" {
		feedback = gateway.NewFeedbackClient(cfg.FeedbackAPIURL, cfg.HTTPTimeout)
	} else {
		slog.Info("Feedback backend not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Core services.
	orch := auth.New(identity, notifier, loginLog, sessions)
	orch.StartAttemptSweeper(ctx, time.Minute, cfg.AttemptTTL)

	relaySvc := relay.NewService(relayClient, sessions.Decorate)
	poller := relay.NewPoller(cfg.PollInterval, relaySvc.Poll)
	wsHandler := relay.NewChatSocketHandler(relaySvc, poller, sessions, cfg.FrontendURL, cfg.IsDevelopment())

	handler := api.NewHandler(orch, relaySvc, feedback, sessions)

	// Setup router.
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	handler.RegisterRoutes(r)

	// WebSocket endpoint for the live conversation view.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket connections stay open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
