package models

// ScoreKey identifies one detection module's contribution to a verdict
type ScoreKey string

const (
	ScoreCredential    ScoreKey = "credential_score"
	ScoreAIText        ScoreKey = "ai_text_score"
	ScoreMalware       ScoreKey = "malware_score"
	ScoreEmailPhishing ScoreKey = "email_phishing_score"
	ScoreURL           ScoreKey = "url_score"
	ScoreInjection     ScoreKey = "injection_score"
)

// CanonicalScoreKeys lists every key in fusion weight order
var CanonicalScoreKeys = []ScoreKey{
	ScoreCredential,
	ScoreAIText,
	ScoreMalware,
	ScoreEmailPhishing,
	ScoreURL,
	ScoreInjection,
}

// ScoreVector maps canonical score keys to values in [0,100]
type ScoreVector map[ScoreKey]float64

// RiskBand classifies a fused score
type RiskBand string

const (
	BandCritical RiskBand = "CRITICAL"
	BandHigh     RiskBand = "HIGH"
	BandMedium   RiskBand = "MEDIUM"
	BandLow      RiskBand = "LOW"
)

// Action is the recommended response for a risk band
type Action string

const (
	ActionBlock    Action = "BLOCK"
	ActionEscalate Action = "ESCALATE"
	ActionWarn     Action = "WARN"
	ActionVerify   Action = "VERIFY"
)

// ActionForBand maps each risk band to its recommended action
func ActionForBand(band RiskBand) Action {
	switch band {
	case BandCritical:
		return ActionBlock
	case BandHigh:
		return ActionEscalate
	case BandMedium:
		return ActionWarn
	default:
		return ActionVerify
	}
}

// BandForScore classifies a fused score into a risk band
func BandForScore(score float64) RiskBand {
	switch {
	case score >= 76:
		return BandCritical
	case score >= 51:
		return BandHigh
	case score >= 21:
		return BandMedium
	default:
		return BandLow
	}
}

// FusionResult is the outcome of fusing a score vector
type FusionResult struct {
	Score         float64              `json:"score"`
	Band          RiskBand             `json:"band"`
	Action        Action               `json:"action"`
	Confidence    float64              `json:"confidence"`
	Contributions map[ScoreKey]float64 `json:"contributions"`
}
