package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"signalguard/internal/domain/models"
	"signalguard/internal/domain/services"
	"signalguard/pkg/logger"
)

// AlertsHandler serves the bounded in-memory alert feed
type AlertsHandler struct {
	feed   *services.AlertFeed
	logger *logger.Logger
}

// NewAlertsHandler creates a new AlertsHandler
func NewAlertsHandler(feed *services.AlertFeed, log *logger.Logger) *AlertsHandler {
	return &AlertsHandler{
		feed:   feed,
		logger: log.WithComponent("alerts-handler"),
	}
}

// List handles GET /api/v1/alerts?limit=
func (h *AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 {
			limit = l
		}
	}

	alerts := h.feed.List(limit)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// Push handles POST /api/v1/alerts, for externally injected alerts
func (h *AlertsHandler) Push(w http.ResponseWriter, r *http.Request) {
	var alert models.Alert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	h.feed.Push(alert)
	h.respondJSON(w, http.StatusCreated, alert)
}

func (h *AlertsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (h *AlertsHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		h.logger.Error().Err(err).Msg(message)
	}

	details := ""
	if err != nil {
		details = err.Error()
	}
	h.respondJSON(w, status, map[string]interface{}{
		"error":   message,
		"details": details,
	})
}
