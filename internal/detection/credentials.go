package detection

import (
	"regexp"
	"strings"

	"signalguard/pkg/logger"
)

// CredentialRisk ranks a credential pattern's severity
type CredentialRisk string

const (
	RiskCritical CredentialRisk = "CRITICAL"
	RiskHigh     CredentialRisk = "HIGH"
	RiskMedium   CredentialRisk = "MEDIUM"
	RiskLow      CredentialRisk = "LOW"
)

var credentialRiskScores = map[CredentialRisk]float64{
	RiskCritical: 95,
	RiskHigh:     75,
	RiskMedium:   40,
	RiskLow:      5,
}

type credentialPattern struct {
	name    string
	risk    CredentialRisk
	pattern *regexp.Regexp
}

// CredentialMatch is one detected exposed credential
type CredentialMatch struct {
	Type string         `json:"type"`
	Risk CredentialRisk `json:"risk"`
}

// CredentialResult is the scanner's output
type CredentialResult struct {
	Score       float64           `json:"score"`
	Matches     []CredentialMatch `json:"matches"`
	HighestRisk CredentialRisk    `json:"highest_risk"`
}

// CredentialScanner detects exposed secrets and credentials in text
type CredentialScanner struct {
	patterns []credentialPattern
	logger   *logger.Logger
}

// NewCredentialScanner compiles the credential pattern table
func NewCredentialScanner(log *logger.Logger) *CredentialScanner {
	return &CredentialScanner{
		patterns: []credentialPattern{
			{"private_key", RiskCritical, regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH |DSA )?PRIVATE KEY-----`)},
			{"aws_access_key", RiskCritical, regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)},
			{"openai_api_key", RiskCritical, regexp.MustCompile(`\bsk-[A-Za-z0-9]{20,}\b`)},
			{"github_token", RiskCritical, regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`)},
			{"slack_token", RiskHigh, regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`)},
			{"google_api_key", RiskHigh, regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{35}\b`)},
			{"jwt_token", RiskHigh, regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+\b`)},
			{"password_assignment", RiskHigh, regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)\s*(?:is|[:=])\s*\S{4,}`)},
			{"credit_card", RiskHigh, regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`)},
			{"ssn", RiskMedium, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
			{"generic_secret", RiskMedium, regexp.MustCompile(`(?i)\b(?:api[_-]?key|secret|token)\s*[:=]\s*['"]?[A-Za-z0-9_\-]{16,}`)},
		},
		logger: log.WithComponent("credential-scanner"),
	}
}

// Scan checks text for exposed credentials and returns a risk score
func (s *CredentialScanner) Scan(text string) CredentialResult {
	result := CredentialResult{
		Matches:     []CredentialMatch{},
		HighestRisk: RiskLow,
	}

	if strings.TrimSpace(text) == "" {
		result.Score = credentialRiskScores[RiskLow]
		return result
	}

	highest := RiskLow
	for _, p := range s.patterns {
		hits := p.pattern.FindAllString(text, -1)
		for _, hit := range hits {
			if p.name == "credit_card" && !luhnValid(hit) {
				continue
			}
			result.Matches = append(result.Matches, CredentialMatch{Type: p.name, Risk: p.risk})
			if riskRank(p.risk) > riskRank(highest) {
				highest = p.risk
			}
		}
	}

	result.HighestRisk = highest

	score := credentialRiskScores[highest]
	if len(result.Matches) > 0 {
		bonus := float64(len(result.Matches)) * 3
		if bonus > 15 {
			bonus = 15
		}
		score += bonus
	}
	if score > 100 {
		score = 100
	}
	result.Score = score

	return result
}

func riskRank(r CredentialRisk) int {
	switch r {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// luhnValid runs the Luhn checksum over the digits in a candidate card number
func luhnValid(candidate string) bool {
	var digits []int
	for _, r := range candidate {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < 13 || len(digits) > 16 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
