// Package main provides the entrypoint for the EcoSentry background
// worker: scheduled assessment sweeps and Pub/Sub job processing.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecosentry/ecosentry/internal/anomaly"
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
	"github.com/ecosentry/ecosentry/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "ecosentry-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting EcoSentry worker")

	cfg := config.FromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	healthRegistry := upstream.NewHealthRegistry(nil)

	openaqHTTP := upstream.NewClient(upstream.ClientConfig{Source: "openaq"})
	healthRegistry.Register(openaq.ProviderName, openaqHTTP)
	sentinelHTTP := upstream.NewClient(upstream.ClientConfig{Source: "sentinel"})
	healthRegistry.Register(sentinel.ProviderName, sentinelHTTP)
	windHTTP := upstream.NewClient(upstream.ClientConfig{Source: "wind"})
	healthRegistry.Register(wind.ProviderName, windHTTP)

	coordinator := ingest.NewCoordinator(ingest.CoordinatorConfig{
		Providers: []ingest.Provider{
			openaq.NewClient(openaq.ClientConfig{
				BaseURL:    cfg.OpenAQBaseURL,
				APIKey:     cfg.OpenAQAPIKey,
				RadiusKM:   cfg.OpenAQRadiusKM,
				HTTPClient: openaqHTTP,
				Logger:     log,
			}),
			sentinel.NewClient(sentinel.ClientConfig{
				BaseURL:    cfg.SentinelBaseURL,
				HTTPClient: sentinelHTTP,
				Logger:     log,
			}),
		},
		Wind: wind.NewClient(wind.ClientConfig{
			APIKey:     cfg.WeatherAPIKey,
			BaseURL:    cfg.WeatherBaseURL,
			HTTPClient: windHTTP,
			Logger:     log,
		}),
		Health: healthRegistry,
		Logger: log,
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

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			Targets:    cfg.RefreshTargets,
			RefitModel: true,
		},
		Service: svc,
		Logger:  log,
	})

	// Health endpoint for the container platform.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	scheduler := worker.NewScheduler(worker.SchedulerConfig{
		Job:      refreshJob,
		Interval: cfg.RefreshInterval,
		Logger:   log,
	})
	go scheduler.Run(ctx)

	if cfg.PubSubProject != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProject,
			SubscriptionName: cfg.PubSubSubscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().Msg("pubsub disabled, running on schedule only")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
