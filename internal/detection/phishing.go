package detection

import (
	"math"
	"regexp"
	"strings"

	"signalguard/pkg/logger"
)

// PhishingResult is the email phishing classifier's output
type PhishingResult struct {
	Score         float64  `json:"score"`
	Probability   float64  `json:"probability"`
	UrgencyHits   []string `json:"urgency_hits"`
	ActionHits    []string `json:"action_hits"`
	FinancialHits []string `json:"financial_hits"`
	URLCount      int      `json:"url_count"`
	CapsRatio     float64  `json:"caps_ratio"`
}

// PhishingDetector scores email text with weighted lexical heuristics
type PhishingDetector struct {
	urgencyWords   []string
	actionPhrases  []*regexp.Regexp
	actionNames    []string
	financialWords []string
	urlPattern     *regexp.Regexp
	logger         *logger.Logger
}

// NewPhishingDetector builds the phishing heuristic tables
func NewPhishingDetector(log *logger.Logger) *PhishingDetector {
	actionTable := []struct {
		name    string
		pattern string
	}{
		{"verify_account", `(?i)\bverify your (?:account|identity|information)\b`},
		{"click_link", `(?i)\bclick (?:here|the link|below)\b`},
		{"confirm_details", `(?i)\bconfirm your (?:details|password|payment)\b`},
		{"update_payment", `(?i)\bupdate your (?:payment|billing|card)\b`},
		{"login_now", `(?i)\b(?:log ?in|sign ?in) (?:now|immediately)\b`},
	}

	d := &PhishingDetector{
		urgencyWords: []string{
			"urgent", "immediately", "verify", "confirm", "suspend",
			"expire", "click here", "act now", "limited time", "warning",
			"alert", "security", "account", "blocked", "unauthorized",
			"suspicious", "validate", "update", "required", "action needed",
			"final warning", "compromised", "flagged",
		},
		financialWords: []string{
			"bank", "payment", "invoice", "wire transfer", "refund",
			"credit card", "billing", "tax", "password", "credential",
			"lottery", "prize", "inheritance",
		},
		urlPattern: regexp.MustCompile(`(?i)\bhttps?://[^\s<>"']+`),
		logger:     log.WithComponent("phishing-detector"),
	}
	for _, a := range actionTable {
		d.actionPhrases = append(d.actionPhrases, regexp.MustCompile(a.pattern))
		d.actionNames = append(d.actionNames, a.name)
	}
	return d
}

// Analyze scores an email body for phishing likelihood
func (d *PhishingDetector) Analyze(text string) PhishingResult {
	result := PhishingResult{
		UrgencyHits:   []string{},
		ActionHits:    []string{},
		FinancialHits: []string{},
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return result
	}

	lower := strings.ToLower(trimmed)

	for _, w := range d.urgencyWords {
		if strings.Contains(lower, w) {
			result.UrgencyHits = append(result.UrgencyHits, w)
		}
	}
	for i, re := range d.actionPhrases {
		if re.MatchString(trimmed) {
			result.ActionHits = append(result.ActionHits, d.actionNames[i])
		}
	}
	for _, w := range d.financialWords {
		if strings.Contains(lower, w) {
			result.FinancialHits = append(result.FinancialHits, w)
		}
	}

	result.URLCount = len(d.urlPattern.FindAllString(trimmed, -1))
	result.CapsRatio = capsRatio(trimmed)

	prob := 0.05
	prob += math.Min(float64(len(result.UrgencyHits))*0.25, 0.75)
	prob += math.Min(float64(len(result.ActionHits))*0.15, 0.45)
	prob += math.Min(float64(len(result.FinancialHits))*0.08, 0.24)
	prob += math.Min(float64(result.URLCount)*0.1, 0.2)
	if result.CapsRatio > 0.3 {
		prob += 0.1
	}
	if prob > 1 {
		prob = 1
	}

	result.Probability = prob
	result.Score = prob * 100

	return result
}

func capsRatio(text string) float64 {
	letters, caps := 0, 0
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			letters++
		} else if r >= 'A' && r <= 'Z' {
			letters++
			caps++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(caps) / float64(letters)
}
