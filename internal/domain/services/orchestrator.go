package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"signalguard/internal/detection"
	"signalguard/internal/domain/models"
	"signalguard/internal/streaming"
	"signalguard/pkg/logger"
)

// Detectors bundles the score producers the orchestrator drives
type Detectors struct {
	AIText      *detection.AITextDetector
	Credentials *detection.CredentialScanner
	Phishing    *detection.PhishingDetector
	Injection   *detection.InjectionDetector
	URLs        *detection.URLScanner
	Malware     *detection.MalwareScanner
}

// Orchestrator runs the full detection pipeline for one signal:
// applicable detectors, score normalization, fusion, campaign graph
// update, correlation and attribution.
type Orchestrator struct {
	fusion      *FusionEngine
	attribution *AttributionEngine
	graph       *CampaignGraph
	feed        *AlertFeed
	bus         *streaming.EventBus
	detectors   Detectors
	logger      *logger.Logger
}

// NewOrchestrator wires the pipeline. bus may be nil.
func NewOrchestrator(
	fusion *FusionEngine,
	attribution *AttributionEngine,
	graph *CampaignGraph,
	feed *AlertFeed,
	bus *streaming.EventBus,
	detectors Detectors,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		fusion:      fusion,
		attribution: attribution,
		graph:       graph,
		feed:        feed,
		bus:         bus,
		detectors:   detectors,
		logger:      log.WithComponent("orchestrator"),
	}
}

// Detect runs one signal through the pipeline. A signal with no
// populated fields is valid: no detectors run, fusion short-circuits
// to LOW and the graph still records an entity-less signal.
func (o *Orchestrator) Detect(ctx context.Context, signal models.Signal) (*models.VerdictResult, error) {
	start := time.Now()
	requestID := uuid.New().String()
	log := o.logger.WithRequestID(requestID)

	if signal.IsEmpty() {
		log.Debug().Msg("signal has no analyzable fields, detectors skipped")
	}

	raw := make(map[string]interface{})
	modules := make(map[models.ScoreKey]models.ModuleResult)

	if signal.EmailText != "" {
		ai := o.detectors.AIText.Analyze(signal.EmailText)
		raw["ai_text_score"] = ai.Score
		modules[models.ScoreAIText] = models.ModuleResult{Score: ai.Score, Details: ai}

		cred := o.detectors.Credentials.Scan(signal.EmailText)
		raw["credential_score"] = cred.Score
		modules[models.ScoreCredential] = models.ModuleResult{Score: cred.Score, Details: cred}

		phish := o.detectors.Phishing.Analyze(signal.EmailText)
		raw["email_phishing_score"] = phish.Score
		modules[models.ScoreEmailPhishing] = models.ModuleResult{Score: phish.Score, Details: phish}

		inj := o.detectors.Injection.Analyze(signal.EmailText)
		raw["injection_score"] = inj.Score
		modules[models.ScoreInjection] = models.ModuleResult{Score: inj.Score, Details: inj}
	}

	if signal.URL != "" {
		urlResult := o.detectors.URLs.Scan(ctx, signal.URL)
		raw["url_score"] = urlResult.Score
		modules[models.ScoreURL] = models.ModuleResult{Score: urlResult.Score, Details: urlResult}
	}

	if signal.AttachmentName != "" || signal.AttachmentHash != "" {
		mal := o.detectors.Malware.Scan(signal.AttachmentName, signal.AttachmentHash)
		raw["malware_score"] = mal.Score
		modules[models.ScoreMalware] = models.ModuleResult{Score: mal.Score, Details: mal}
	}

	// Fusion distinguishes "no detectors ran" from "all scores zero"
	vector := models.ScoreVector{}
	if len(raw) > 0 {
		var err error
		vector, err = NormalizeScores(raw)
		if err != nil {
			return nil, fmt.Errorf("normalize scores: %w", err)
		}
	}

	fused := o.fusion.Fuse(vector)

	payload := make(map[string]string)
	if signal.Sender != "" {
		payload["sender"] = signal.Sender
	}
	if signal.EmailText != "" {
		payload["text"] = signal.EmailText
	}
	if signal.URL != "" {
		payload["url"] = signal.URL
	}
	if signal.AttachmentHash != "" {
		payload["hash"] = signal.AttachmentHash
	}
	if signal.CallerID != "" {
		payload["caller_id"] = signal.CallerID
	}

	o.graph.AddSignal("combined", payload, signal.Timestamp)
	campaign := o.graph.Correlate()

	attrVector := vector
	if len(attrVector) == 0 {
		// Attribution always sees the full canonical key set
		attrVector, _ = NormalizeScores(nil)
	}
	attribution := o.attribution.Explain(attrVector, fused.Score)

	verdict := &models.VerdictResult{
		RequestID:        requestID,
		UnifiedRiskScore: fused.Score,
		RiskBand:         fused.Band,
		Action:           fused.Action,
		Confidence:       fused.Confidence,
		Contributions:    fused.Contributions,
		Modules:          modules,
		Campaign:         campaign,
		Attribution:      attribution,
		ProcessingTimeMS: float64(time.Since(start).Microseconds()) / 1000,
		ProcessedAt:      time.Now().UTC(),
	}

	log.Info().
		Float64("score", verdict.UnifiedRiskScore).
		Str("band", string(verdict.RiskBand)).
		Bool("coordinated", campaign.CoordinatedCampaign).
		Msg("signal processed")

	o.publish(ctx, verdict)

	return verdict, nil
}

// publish emits events and raises alerts; side effects never fail Detect
func (o *Orchestrator) publish(ctx context.Context, verdict *models.VerdictResult) {
	if o.bus != nil {
		o.bus.Publish(ctx, streaming.NewVerdictEvent(verdict))
		if verdict.Campaign.CoordinatedCampaign {
			o.bus.Publish(ctx, streaming.NewCampaignEvent(verdict.Campaign))
		}
	}

	if verdict.RiskBand != models.BandHigh && verdict.RiskBand != models.BandCritical {
		return
	}

	alert := models.Alert{
		ID:        uuid.New().String(),
		RequestID: verdict.RequestID,
		Score:     verdict.UnifiedRiskScore,
		Band:      verdict.RiskBand,
		Action:    verdict.Action,
		Summary:   verdict.Attribution.Narrative,
		CreatedAt: time.Now().UTC(),
	}
	if o.feed != nil {
		o.feed.Push(alert)
	}
	if o.bus != nil {
		o.bus.Publish(ctx, streaming.NewAlertEvent(alert))
	}
}
