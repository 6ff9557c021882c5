package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalguard/internal/config"
	"signalguard/internal/detection"
	"signalguard/internal/domain/models"
	"signalguard/pkg/logger"
)

func newTestOrchestrator() (*Orchestrator, *AlertFeed) {
	cfg := config.Default()
	log := logger.NewDefault()

	fusion := NewFusionEngine(cfg.Fusion, log)
	attribution := NewAttributionEngine(fusion.Weights(), nil, log)
	graph := NewCampaignGraph(cfg.Extraction, log)
	feed := NewAlertFeed(10)

	detectors := Detectors{
		AIText:      detection.NewAITextDetector(log),
		Credentials: detection.NewCredentialScanner(log),
		Phishing:    detection.NewPhishingDetector(log),
		Injection:   detection.NewInjectionDetector(log),
		URLs:        detection.NewURLScanner(nil, log),
		Malware:     detection.NewMalwareScanner(log),
	}

	return NewOrchestrator(fusion, attribution, graph, feed, nil, detectors, log), feed
}

func TestDetectMaliciousCombinedSignal(t *testing.T) {
	orch, feed := newTestOrchestrator()

	signal := models.Signal{
		EmailText: "URGENT: Your account will be suspended. " +
			"My password is hunter2secret.",
		URL:            "http://fake-bank.xyz",
		AttachmentName: "invoice.exe",
		Sender:         "alerts@fake-bank.xyz",
		Timestamp:      "2026-02-01T09:00:00Z",
	}

	verdict, err := orch.Detect(context.Background(), signal)
	require.NoError(t, err)

	assert.Greater(t, verdict.UnifiedRiskScore, 60.0)
	assert.Contains(t, []models.RiskBand{models.BandHigh, models.BandCritical}, verdict.RiskBand)
	assert.Contains(t, []models.Action{models.ActionEscalate, models.ActionBlock}, verdict.Action)

	// All six modules ran: four text detectors plus URL and attachment
	assert.Len(t, verdict.Modules, 6)
	assert.Equal(t, 80.0, verdict.Modules[models.ScoreMalware].Score)
	assert.GreaterOrEqual(t, verdict.Modules[models.ScoreCredential].Score, 75.0)
	assert.GreaterOrEqual(t, verdict.Modules[models.ScoreEmailPhishing].Score, 80.0)

	assert.Len(t, verdict.Contributions, 6)
	assert.NotEmpty(t, verdict.Attribution.TopFactors)
	assert.NotEmpty(t, verdict.RequestID)

	// HIGH and CRITICAL verdicts raise an alert
	require.Equal(t, 1, feed.Len())
	assert.Equal(t, verdict.RequestID, feed.List(1)[0].RequestID)
}

func TestDetectBenignEmail(t *testing.T) {
	orch, feed := newTestOrchestrator()

	signal := models.Signal{
		EmailText: "Hi team, attached are the meeting notes from yesterday. " +
			"Let me know if anything is missing. Thanks, Sam",
	}

	verdict, err := orch.Detect(context.Background(), signal)
	require.NoError(t, err)

	assert.Equal(t, models.BandLow, verdict.RiskBand)
	assert.Equal(t, models.ActionVerify, verdict.Action)
	assert.Less(t, verdict.UnifiedRiskScore, 21.0)

	// Only the four text detectors ran
	assert.Len(t, verdict.Modules, 4)
	assert.NotContains(t, verdict.Modules, models.ScoreURL)
	assert.NotContains(t, verdict.Modules, models.ScoreMalware)

	assert.Equal(t, 0, feed.Len())
}

func TestDetectEmptySignal(t *testing.T) {
	orch, feed := newTestOrchestrator()

	verdict, err := orch.Detect(context.Background(), models.Signal{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, verdict.UnifiedRiskScore)
	assert.Equal(t, models.BandLow, verdict.RiskBand)
	assert.Equal(t, models.ActionVerify, verdict.Action)
	assert.Equal(t, 1.0, verdict.Confidence)
	assert.Empty(t, verdict.Modules)

	// The graph still records the entity-less signal
	assert.Equal(t, 1, verdict.Campaign.SignalCount)
	assert.False(t, verdict.Campaign.CoordinatedCampaign)

	// Attribution still covers the full canonical key set
	assert.Len(t, verdict.Attribution.Factors, 6)

	assert.Equal(t, 0, feed.Len())
}

func TestDetectCorrelatesAcrossSignals(t *testing.T) {
	orch, _ := newTestOrchestrator()
	ctx := context.Background()

	first, err := orch.Detect(ctx, models.Signal{
		Sender:    "alerts@fake-bank.xyz",
		Timestamp: "2026-02-01T09:00:00Z",
	})
	require.NoError(t, err)
	assert.False(t, first.Campaign.CoordinatedCampaign)

	second, err := orch.Detect(ctx, models.Signal{
		URL:       "http://fake-bank.xyz/login",
		Timestamp: "2026-02-01T09:15:00Z",
	})
	require.NoError(t, err)

	assert.True(t, second.Campaign.CoordinatedCampaign)
	assert.Equal(t, 1.0, second.Campaign.CorrelationStrength)
	assert.Contains(t, second.Campaign.SharedEntities, "fake-bank.xyz")
	require.Len(t, second.Campaign.Timeline, 2)
	assert.Equal(t, "2026-02-01T09:00:00Z", second.Campaign.Timeline[0].Timestamp)
}
