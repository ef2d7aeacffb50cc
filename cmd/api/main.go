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

	"github.com/bryanwahyu/reviewlens/internal/application"
	appanalysis "github.com/bryanwahyu/reviewlens/internal/application/analysis"
	"github.com/bryanwahyu/reviewlens/internal/application/session"
	"github.com/bryanwahyu/reviewlens/internal/config"
	domain "github.com/bryanwahyu/reviewlens/internal/domain/analysis"
	aiopenai "github.com/bryanwahyu/reviewlens/internal/infra/ai/openai"
	"github.com/bryanwahyu/reviewlens/internal/infra/ai/prompt"
	"github.com/bryanwahyu/reviewlens/internal/infra/httpserver"
	"github.com/bryanwahyu/reviewlens/internal/infra/sentiment"
	minioStore "github.com/bryanwahyu/reviewlens/internal/infra/storage"
	"github.com/bryanwahyu/reviewlens/internal/logging"
	"github.com/bryanwahyu/reviewlens/internal/middleware"
)

func main() {
	// .env per environment, sebelum config dibaca
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fatal("config load error", err)
	}
	logging.InitLogger(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		fatal("invalid config", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// prompt bundle, optionally from MinIO
	var objects prompt.Fetcher
	if cfg.Prompt.Source == prompt.SourceMinio {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			fatal("minio init error", err)
		}
		objects = store
	}
	bundle, err := prompt.Resolve(ctx, cfg.Prompt.Source, cfg.Prompt.Path, cfg.Prompt.ObjectKey, objects)
	if err != nil {
		fatal("prompt load error", err)
	}
	slog.Info("[Main] Prompt bundle loaded",
		slog.String("source", cfg.Prompt.Source),
		slog.String("version", bundle.Version))

	client := aiopenai.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL, cfg.AI.RequestTimeout)

	var baseline domain.BaselineScorer
	if cfg.Baseline.Enabled {
		baseline = sentiment.NewVader()
	}

	metrics := middleware.NewMetrics()
	newController := func() *appanalysis.Controller {
		return &appanalysis.Controller{
			Client:        client,
			Prompt:        bundle,
			Baseline:      baseline,
			Recorder:      metrics,
			Clock:         application.SystemClock{},
			Timeout:       cfg.AI.RequestTimeout,
			MaxInputChars: cfg.AI.MaxInputChars,
		}
	}

	sessions := session.NewRegistry(cfg.Session.TTL, newController, application.SystemClock{})
	go sessions.Run(ctx)

	handler := httpserver.NewRouter(sessions, newController, httpserver.Options{
		CookieName:     cfg.Session.CookieName,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		PromptVersion:  bundle.Version,
		MaxInputChars:  cfg.AI.MaxInputChars,
		Checkers:       map[string]middleware.HealthChecker{"openai": client},
		Metrics:        metrics,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("[Main] Server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	slog.Info("[Main] Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Shutdown error", slog.Any("error", err))
	}
}

func fatal(msg string, err error) {
	slog.Error("[Main] "+msg, slog.Any("error", err))
	os.Exit(1)
}
