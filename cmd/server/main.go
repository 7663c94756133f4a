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

	"github.com/joho/godotenv"

	"github.com/p-n-ai/lesson-admin/internal/auth"
	"github.com/p-n-ai/lesson-admin/internal/dictionary"
	"github.com/p-n-ai/lesson-admin/internal/editor"
	"github.com/p-n-ai/lesson-admin/internal/lesson"
	"github.com/p-n-ai/lesson-admin/internal/platform/cache"
	"github.com/p-n-ai/lesson-admin/internal/platform/config"
	"github.com/p-n-ai/lesson-admin/internal/platform/database"
	"github.com/p-n-ai/lesson-admin/internal/server"
	"github.com/p-n-ai/lesson-admin/internal/storage"
)

func main() {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	store, err := lesson.NewPostgresStore(db.Pool)
	if err != nil {
		return fmt.Errorf("creating lesson store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating lesson store: %w", err)
	}

	topics, err := lesson.NewPostgresTopicStore(db.Pool)
	if err != nil {
		return fmt.Errorf("creating topic store: %w", err)
	}

	events := editor.NewPostgresEventLogger(db.Pool)
	if err := events.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating event log: %w", err)
	}

	ready := []func(context.Context) error{db.HealthCheck}

	// The cache is optional; without it dictionary lookups go straight to
	// the source on every request.
	var cacheClient *cache.Cache
	if cfg.Cache.URL != "" {
		cacheClient, err = cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return fmt.Errorf("connecting to cache: %w", err)
		}
		defer cacheClient.Close()
		ready = append(ready, cacheClient.HealthCheck)
	}

	media, err := storage.NewClient(cfg.MediaStore.URL,
		storage.WithPublicBase(cfg.MediaStore.PublicBase),
		storage.WithToken(cfg.MediaStore.Token),
	)
	if err != nil {
		return fmt.Errorf("creating media store client: %w", err)
	}

	dict, err := newDictionarySource(cfg.Dictionary, cacheClient)
	if err != nil {
		return fmt.Errorf("creating dictionary source: %w", err)
	}

	sessions, err := auth.NewManager(cfg.Auth.PasswordHash, time.Duration(cfg.Auth.TokenTTL)*time.Hour)
	if err != nil {
		return fmt.Errorf("creating auth manager: %w", err)
	}
	defer sessions.Close()

	engine := editor.NewEngine(editor.EngineConfig{
		Store:    store,
		Uploader: media,
		Events:   events,
		TextMode: lesson.TextMode(cfg.Editor.TextMode),
	})

	srv := server.New(server.Config{
		Engine: engine,
		Store:  store,
		Topics: topics,
		Dict:   dict,
		Auth:   sessions,
		Ready:  ready,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // uploads and the event stream hold connections open
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// newDictionarySource picks the remote service when configured, YAML files
// otherwise, and wraps the result with the cache if one is connected.
func newDictionarySource(cfg config.DictionaryConfig, cacheClient *cache.Cache) (dictionary.Source, error) {
	var src dictionary.Source
	var err error
	if cfg.URL != "" {
		src, err = dictionary.NewHTTPSource(cfg.URL)
	} else {
		src, err = dictionary.NewFileSource(cfg.Dir)
	}
	if err != nil {
		return nil, err
	}

	if cacheClient != nil {
		src = dictionary.NewCached(src, cacheClient.Client, time.Duration(cfg.CacheTTL)*time.Minute)
	}
	return src, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
