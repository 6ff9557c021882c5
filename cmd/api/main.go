package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"signalguard/internal/api"
	"signalguard/internal/api/handlers"
	"signalguard/internal/config"
	"signalguard/internal/detection"
	"signalguard/internal/domain/services"
	"signalguard/internal/infrastructure/cache"
	"signalguard/internal/streaming"
	"signalguard/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting SignalGuard")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional: all callers tolerate a nil cache
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
			redisCache = nil
		}
	}
	defer redisCache.Close()

	// Streaming infrastructure
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing with local events only")
		}
	}

	eventBus := streaming.NewEventBus(natsPublisher, log)
	defer eventBus.Close()

	wsHub := streaming.NewWebSocketHub(log)
	go wsHub.Run(ctx, eventBus)

	// Detectors
	detectors := services.Detectors{
		AIText:      detection.NewAITextDetector(log),
		Credentials: detection.NewCredentialScanner(log),
		Phishing:    detection.NewPhishingDetector(log),
		Injection:   detection.NewInjectionDetector(log),
		URLs:        detection.NewURLScanner(redisCache, log),
		Malware:     detection.NewMalwareScanner(log),
	}

	// Core pipeline
	fusion := services.NewFusionEngine(cfg.Fusion, log)

	var explainer services.Explainer
	if cfg.Fusion.UseModel {
		trained, err := services.NewSyntheticTrainedModel(cfg.Fusion, log)
		if err != nil {
			log.Warn().Err(err).Msg("model training failed, using weighted average only")
		} else {
			fusion.SetScorer(trained)
			explainer = services.NewForestExplainer(trained.Forest())
		}
	}

	attribution := services.NewAttributionEngine(fusion.Weights(), explainer, log)
	graph := services.NewCampaignGraph(cfg.Extraction, log)
	feed := services.NewAlertFeed(cfg.Alerts.Capacity)

	orchestrator := services.NewOrchestrator(fusion, attribution, graph, feed, eventBus, detectors, log)

	// HTTP layer
	h := handlers.NewHandlers(handlers.Dependencies{
		Orchestrator: orchestrator,
		Graph:        graph,
		Feed:         feed,
		Detectors:    detectors,
		Cache:        redisCache,
		Logger:       log,
	})

	router := api.NewRouter(*cfg, h, redisCache, wsHub, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}
