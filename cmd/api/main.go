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
	"github.com/prometheus/client_golang/prometheus"

	"moviegen/internal/gateway"
	"moviegen/internal/http/handlers"
	httpapi "moviegen/internal/http/httpapi"
	"moviegen/internal/infra"
	"moviegen/internal/poster"
	"moviegen/internal/screenplay"
	"moviegen/internal/storage/postgres"
	"moviegen/internal/upstream"
	"moviegen/internal/voice"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	registry := prometheus.NewRegistry()
	metrics := infra.NewMetrics(registry)

	app := &handlers.App{
		Logger:        logger,
		Metrics:       metrics,
		TextDeadline:  cfg.RequestTextDeadline,
		MediaDeadline: cfg.RequestMediaDeadline,
	}

	// The credential is read once at start. Without it the server still
	// boots (health and metrics stay reachable) but answers every
	// generation request with a configuration error.
	if cfg.OpenAIAPIKey == "" {
		logger.Error().Msg("OPENAI_API_KEY is not set; generation requests will fail")
	} else {
		client, err := upstream.NewClient(upstream.Options{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			TextModel:   cfg.OpenAITextModel,
			ImageModel:  cfg.OpenAIImageModel,
			SpeechModel: cfg.OpenAISpeechModel,
			Voice:       cfg.OpenAIVoice,
			Logger:      &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build upstream client")
		}
		executor := upstream.NewExecutor(upstream.ExecutorOptions{
			Client: client,
			Policy: gateway.Policy{
				MaxAttempts:       cfg.RetryMaxAttempts,
				InitialDelay:      cfg.RetryInitialDelay,
				BackoffMultiplier: cfg.RetryBackoff,
				JitterRange:       cfg.RetryJitter,
			},
			TextTimeout:  cfg.UpstreamTextTimeout,
			MediaTimeout: cfg.UpstreamMediaTimeout,
			Quota:        gateway.NewQuotaMatcher(cfg.QuotaErrorTerms),
			Logger:       &logger,
			Observer:     metrics,
		})
		app.Screenplay = screenplay.NewAdapter(executor)
		app.Voice = voice.NewAdapter(executor)
		app.Poster = poster.NewAdapter(executor)
	}

	ctx := context.Background()
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		audit := postgres.NewAuditRepo(pool)
		if err := audit.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare audit schema")
		}
		app.Audit = audit
	}

	router := httpapi.NewRouter(app, cfg, logger, registry)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("gateway listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
