// manualchat - retrieval-augmented chat backend for 3D printer manuals
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
	"github.com/printerdocs/manualchat/internal/api"
	"github.com/printerdocs/manualchat/internal/chat"
	"github.com/printerdocs/manualchat/internal/config"
	"github.com/printerdocs/manualchat/internal/corpus"
	"github.com/printerdocs/manualchat/internal/index"
	"github.com/printerdocs/manualchat/internal/ledger"
	"github.com/printerdocs/manualchat/internal/middleware"
	"github.com/printerdocs/manualchat/internal/provider/openai"
	"github.com/printerdocs/manualchat/internal/session"
	"github.com/printerdocs/manualchat/internal/store"
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

	// Load the passage corpus once; it is immutable for the process lifetime.
	passages, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		slog.Error("Failed to load corpus", "path", cfg.CorpusPath, "error", err)
		os.Exit(1)
	}

	ix, err := index.New(passages)
	if err != nil {
		slog.Error("Failed to build similarity index", "error", err)
		os.Exit(1)
	}
	slog.Info("Corpus indexed", "passages", ix.Size(), "dimension", ix.Dimension())

	journal, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize journal database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := journal.Close(); closeErr != nil {
			slog.Error("Failed to close journal", "error", closeErr)
		}
	}()

	if err := journal.Ping(context.Background()); err != nil {
		slog.Error("Journal health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Journal database connected")

	sessions, err := session.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		slog.Error("Failed to initialize session manager", "error", err)
		os.Exit(1)
	}

	ledgerClient := ledger.New(cfg.Ledger.BaseURL, cfg.Ledger.SharedSecret, cfg.Ledger.Timeout)

	provider, err := openai.NewClient(openai.Config{
		BaseURL:        cfg.Provider.BaseURL,
		APIKey:         cfg.Provider.APIKey,
		EmbeddingModel: cfg.Provider.EmbeddingModel,
		ChatModel:      cfg.Provider.ChatModel,
		Temperature:    cfg.Provider.Temperature,
		Timeout:        cfg.Provider.Timeout,
	})
	if err != nil {
		slog.Error("Failed to initialize provider client", "error", err)
		os.Exit(1)
	}

	chatSvc := chat.New(ix, provider, provider, ledgerClient, ledgerClient,
		journal, cfg.Retrieval.TopK, cfg.RecordTimeout)

	handler := api.NewHandler(chatSvc, ledgerClient, sessions, cfg)

	// Setup router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	corsOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		corsOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(corsOrigins))

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Retry spilled conversation log writes in the background.
	store.StartReplayWorker(ctx, journal, ledgerClient, cfg.ReplayInterval)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

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
