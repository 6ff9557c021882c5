package models

// Factor is one module's share of responsibility for a verdict
type Factor struct {
	Key     ScoreKey `json:"key"`
	Label   string   `json:"label"`
	Percent float64  `json:"percent"`
}

// Attribution explains which modules drove a fused verdict. Percentages
// across Factors sum to 100 whenever any factor is non-zero.
type Attribution struct {
	Factors    []Factor `json:"factors"`
	TopFactors []string `json:"top_factors"`
	Narrative  string   `json:"narrative"`
	Method     string   `json:"method"`
}

// FactorLabels maps score keys to human-readable factor names
var FactorLabels = map[ScoreKey]string{
	ScoreCredential:    "Credential Exposure",
	ScoreAIText:        "AI-Generated Text",
	ScoreMalware:       "Malware / Attachment",
	ScoreEmailPhishing: "Email Phishing",
	ScoreURL:           "Malicious URL",
	ScoreInjection:     "Prompt Injection",
}
