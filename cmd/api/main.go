// Package main provides the entrypoint for the EcoSentry API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecosentry/ecosentry/internal/anomaly"
	"github.com/ecosentry/ecosentry/internal/api"
	"github.com/ecosentry/ecosentry/internal/assessment"
	"github.com/ecosentry/ecosentry/internal/config"
	"github.com/ecosentry/ecosentry/internal/fusion"
	"github.com/ecosentry/ecosentry/internal/history"
	"github.com/ecosentry/ecosentry/internal/ingest"
	"github.com/ecosentry/ecosentry/internal/ingest/openaq"
	"github.com/ecosentry/ecosentry/internal/ingest/sentinel"
	"github.com/ecosentry/ecosentry/internal/risk"
	"github.com/ecosentry/ecosentry/internal/telemetry"
	"github.com/ecosentry/ecosentry/internal/upstream"
	"github.com/ecosentry/ecosentry/internal/wind"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "ecosentry-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting EcoSentry API")

	cfg := config.FromEnv()
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	healthRegistry := upstream.NewHealthRegistry(nil)

	openaqHTTP := upstream.NewClient(upstream.ClientConfig{Source: "openaq"})
	healthRegistry.Register(openaq.ProviderName, openaqHTTP)
	openaqClient := openaq.NewClient(openaq.ClientConfig{
		BaseURL:    cfg.OpenAQBaseURL,
		APIKey:     cfg.OpenAQAPIKey,
		RadiusKM:   cfg.OpenAQRadiusKM,
		HTTPClient: openaqHTTP,
		Logger:     log,
	})

	sentinelHTTP := upstream.NewClient(upstream.ClientConfig{Source: "sentinel"})
	healthRegistry.Register(sentinel.ProviderName, sentinelHTTP)
	sentinelClient := sentinel.NewClient(sentinel.ClientConfig{
		BaseURL:    cfg.SentinelBaseURL,
		HTTPClient: sentinelHTTP,
		Logger:     log,
	})

	windHTTP := upstream.NewClient(upstream.ClientConfig{Source: "wind"})
	healthRegistry.Register(wind.ProviderName, windHTTP)
	windClient := wind.NewClient(wind.ClientConfig{
		APIKey:     cfg.WeatherAPIKey,
		BaseURL:    cfg.WeatherBaseURL,
		HTTPClient: windHTTP,
		Logger:     log,
	})

	coordinator := ingest.NewCoordinator(ingest.CoordinatorConfig{
		Providers: []ingest.Provider{openaqClient, sentinelClient},
		Wind:      windClient,
		Health:    healthRegistry,
		Logger:    log,
	})

	svc := assessment.NewService(assessment.ServiceConfig{
		Ingest: coordinator,
		Fusion: fusion.NewEngine(fusion.EngineConfig{Logger: log}),
		Scorer: risk.NewScorer(risk.ScorerConfig{Logger: log}),
		Detector: anomaly.NewDetector(anomaly.Config{
			ScoreThreshold: cfg.AnomalyThreshold,
			Logger:         log,
		}),
		History:           history.NewStore(history.StoreConfig{Capacity: cfg.HistoryCapacity}),
		PlumeThresholdSO2: cfg.PlumeThresholdSO2,
		Logger:            log,
	})
	log.Info().Msg("assessment service initialized")

	router := api.NewRouter(api.RouterConfig{
		Assessment: svc,
		Health:     healthRegistry,
		Version:    Version,
		Logger:     log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
