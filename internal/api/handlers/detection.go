package handlers

import (
	"encoding/json"
	"net/http"

	"signalguard/internal/domain/models"
	"signalguard/internal/domain/services"
	"signalguard/pkg/logger"
)

// DetectionHandler serves the full pipeline and the single-purpose scans
type DetectionHandler struct {
	orchestrator *services.Orchestrator
	detectors    services.Detectors
	logger       *logger.Logger
}

// NewDetectionHandler creates a new DetectionHandler
func NewDetectionHandler(orch *services.Orchestrator, detectors services.Detectors, log *logger.Logger) *DetectionHandler {
	return &DetectionHandler{
		orchestrator: orch,
		detectors:    detectors,
		logger:       log.WithComponent("detection-handler"),
	}
}

// Detect handles POST /api/v1/detect
func (h *DetectionHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var signal models.Signal
	if err := json.NewDecoder(r.Body).Decode(&signal); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	verdict, err := h.orchestrator.Detect(r.Context(), signal)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "detection failed", err)
		return
	}

	h.respondJSON(w, http.StatusOK, verdict)
}

type textRequest struct {
	Text string `json:"text"`
}

// AnalyzeEmail handles POST /api/v1/analyze/email
func (h *DetectionHandler) AnalyzeEmail(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result := h.detectors.Phishing.Analyze(req.Text)
	h.respondJSON(w, http.StatusOK, result)
}

// AnalyzeCredentials handles POST /api/v1/analyze/credentials
func (h *DetectionHandler) AnalyzeCredentials(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result := h.detectors.Credentials.Scan(req.Text)
	h.respondJSON(w, http.StatusOK, result)
}

// AnalyzeInjection handles POST /api/v1/analyze/injection
func (h *DetectionHandler) AnalyzeInjection(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result := h.detectors.Injection.Analyze(req.Text)
	h.respondJSON(w, http.StatusOK, result)
}

// AnalyzeURL handles POST /api/v1/analyze/url
func (h *DetectionHandler) AnalyzeURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required", nil)
		return
	}

	result := h.detectors.URLs.Scan(r.Context(), req.URL)
	h.respondJSON(w, http.StatusOK, result)
}

// AnalyzeAttachment handles POST /api/v1/analyze/attachment
func (h *DetectionHandler) AnalyzeAttachment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename string `json:"filename"`
		Hash     string `json:"hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Filename == "" && req.Hash == "" {
		h.respondError(w, http.StatusBadRequest, "filename or hash is required", nil)
		return
	}

	result := h.detectors.Malware.Scan(req.Filename, req.Hash)
	h.respondJSON(w, http.StatusOK, result)
}

// respondJSON sends a JSON response
func (h *DetectionHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError sends an error response
func (h *DetectionHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
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
