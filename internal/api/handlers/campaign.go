package handlers

import (
	"encoding/json"
	"net/http"

	"signalguard/internal/domain/services"
	"signalguard/pkg/logger"
)

// CampaignHandler serves the session campaign graph
type CampaignHandler struct {
	graph  *services.CampaignGraph
	logger *logger.Logger
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(graph *services.CampaignGraph, log *logger.Logger) *CampaignHandler {
	return &CampaignHandler{
		graph:  graph,
		logger: log.WithComponent("campaign-handler"),
	}
}

// Get handles GET /api/v1/campaign. Read-only: it does not mutate the graph.
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.graph.Correlate())
}

// Reset handles POST /api/v1/campaign/reset
func (h *CampaignHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.graph.Reset()
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *CampaignHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}
