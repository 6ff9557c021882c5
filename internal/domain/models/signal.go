package models

import "time"

// Signal is one multi-modal detection input. All fields are optional;
// the orchestrator decides which detectors apply from which fields are
// populated.
type Signal struct {
	EmailText      string `json:"email_text,omitempty"`
	URL            string `json:"url,omitempty"`
	AttachmentName string `json:"attachment_name,omitempty"`
	AttachmentHash string `json:"attachment_hash,omitempty"`
	Sender         string `json:"sender,omitempty"`
	CallerID       string `json:"caller_id,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// IsEmpty reports whether no analyzable field is populated
func (s Signal) IsEmpty() bool {
	return s.EmailText == "" && s.URL == "" && s.AttachmentName == "" &&
		s.AttachmentHash == "" && s.Sender == "" && s.CallerID == ""
}

// ModuleResult is one detector's raw output: its normalized score plus
// an opaque detail blob
type ModuleResult struct {
	Score   float64     `json:"score"`
	Details interface{} `json:"details,omitempty"`
}

// VerdictResult is the assembled outcome of one detect call
type VerdictResult struct {
	RequestID        string                    `json:"request_id"`
	UnifiedRiskScore float64                   `json:"unified_risk_score"`
	RiskBand         RiskBand                  `json:"risk_band"`
	Action           Action                    `json:"action"`
	Confidence       float64                   `json:"confidence"`
	Contributions    map[ScoreKey]float64      `json:"contributions"`
	Modules          map[ScoreKey]ModuleResult `json:"modules"`
	Campaign         CampaignReport            `json:"campaign"`
	Attribution      Attribution               `json:"attribution"`
	ProcessingTimeMS float64                   `json:"processing_time_ms"`
	ProcessedAt      time.Time                 `json:"processed_at"`
}

// Alert is a retained record of a HIGH or CRITICAL verdict
type Alert struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	Score     float64   `json:"score"`
	Band      RiskBand  `json:"band"`
	Action    Action    `json:"action"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
