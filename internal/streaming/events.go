package streaming

import (
	"time"

	"github.com/google/uuid"

	"signalguard/internal/domain/models"
)

// EventType labels a streamed event
type EventType string

const (
	EventTypeVerdictCreated   EventType = "verdict_created"
	EventTypeAlertRaised      EventType = "alert_raised"
	EventTypeCampaignDetected EventType = "campaign_detected"
)

// Event is one real-time pipeline event pushed to subscribers
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	RequestID string          `json:"request_id,omitempty"`
	Score     float64         `json:"score,omitempty"`
	Band      models.RiskBand `json:"band,omitempty"`
	Action    models.Action   `json:"action,omitempty"`
	Summary   string          `json:"summary,omitempty"`

	// Campaign info, set on campaign_detected events
	SignalCount         int      `json:"signal_count,omitempty"`
	CorrelationStrength float64  `json:"correlation_strength,omitempty"`
	SharedEntities      []string `json:"shared_entities,omitempty"`
}

// NewVerdictEvent builds an event from a completed verdict
func NewVerdictEvent(verdict *models.VerdictResult) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      EventTypeVerdictCreated,
		Timestamp: time.Now(),
		RequestID: verdict.RequestID,
		Score:     verdict.UnifiedRiskScore,
		Band:      verdict.RiskBand,
		Action:    verdict.Action,
		Summary:   verdict.Attribution.Narrative,
	}
}

// NewAlertEvent builds an event from a raised alert
func NewAlertEvent(alert models.Alert) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      EventTypeAlertRaised,
		Timestamp: time.Now(),
		RequestID: alert.RequestID,
		Score:     alert.Score,
		Band:      alert.Band,
		Action:    alert.Action,
		Summary:   alert.Summary,
	}
}

// NewCampaignEvent builds an event from a coordinated campaign report
func NewCampaignEvent(report models.CampaignReport) *Event {
	return &Event{
		ID:                  uuid.New().String(),
		Type:                EventTypeCampaignDetected,
		Timestamp:           time.Now(),
		Summary:             report.Summary,
		SignalCount:         report.SignalCount,
		CorrelationStrength: report.CorrelationStrength,
		SharedEntities:      report.SharedEntities,
	}
}

// Subscription filters which events a client receives
type Subscription struct {
	MinBand models.RiskBand `json:"min_band,omitempty"`
	Types   []EventType     `json:"types,omitempty"`
}

var bandOrder = map[models.RiskBand]int{
	models.BandLow:      0,
	models.BandMedium:   1,
	models.BandHigh:     2,
	models.BandCritical: 3,
}

// Matches reports whether an event passes the subscription filter
func (s *Subscription) Matches(event *Event) bool {
	if s.MinBand != "" && event.Band != "" {
		if bandOrder[event.Band] < bandOrder[s.MinBand] {
			return false
		}
	}
	if len(s.Types) > 0 {
		found := false
		for _, t := range s.Types {
			if t == event.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
