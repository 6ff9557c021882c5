package handlers

import (
	"signalguard/internal/domain/services"
	"signalguard/internal/infrastructure/cache"
	"signalguard/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health    *HealthHandler
	Detection *DetectionHandler
	Campaign  *CampaignHandler
	Alerts    *AlertsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Orchestrator *services.Orchestrator
	Graph        *services.CampaignGraph
	Feed         *services.AlertFeed
	Detectors    services.Detectors
	Cache        *cache.RedisCache
	Logger       *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Cache, deps.Logger),
		Detection: NewDetectionHandler(deps.Orchestrator, deps.Detectors, deps.Logger),
		Campaign:  NewCampaignHandler(deps.Graph, deps.Logger),
		Alerts:    NewAlertsHandler(deps.Feed, deps.Logger),
	}
}
