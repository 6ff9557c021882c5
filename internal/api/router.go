package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"signalguard/internal/api/handlers"
	apimiddleware "signalguard/internal/api/middleware"
	"signalguard/internal/config"
	"signalguard/internal/infrastructure/cache"
	"signalguard/internal/streaming"
	"signalguard/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	wsHub    *streaming.WebSocketHub
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, hub *streaming.WebSocketHub, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		wsHub:    hub,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting
	if r.config.RateLimit.Enabled {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	// Health endpoints
	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	// API v1 routes
	router.Route("/api/v1", func(api chi.Router) {
		api.Post("/detect", r.handlers.Detection.Detect)

		api.Route("/analyze", func(analyze chi.Router) {
			analyze.Post("/email", r.handlers.Detection.AnalyzeEmail)
			analyze.Post("/url", r.handlers.Detection.AnalyzeURL)
			analyze.Post("/attachment", r.handlers.Detection.AnalyzeAttachment)
			analyze.Post("/credentials", r.handlers.Detection.AnalyzeCredentials)
			analyze.Post("/injection", r.handlers.Detection.AnalyzeInjection)
		})

		api.Get("/campaign", r.handlers.Campaign.Get)
		api.Post("/campaign/reset", r.handlers.Campaign.Reset)

		api.Get("/alerts", r.handlers.Alerts.List)
		api.Post("/alerts", r.handlers.Alerts.Push)
	})

	// WebSocket alert stream
	if r.wsHub != nil {
		router.Get("/ws/alerts", r.wsHub.ServeWebSocket)
	}

	return router
}
