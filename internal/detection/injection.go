package detection

import (
	"regexp"
	"strings"

	"signalguard/pkg/logger"
)

type injectionPattern struct {
	name    string
	severe  bool
	pattern *regexp.Regexp
}

// InjectionResult is the prompt injection detector's output
type InjectionResult struct {
	Score       float64  `json:"score"`
	PatternHits []string `json:"pattern_hits"`
	Severe      bool     `json:"severe"`
}

// InjectionDetector matches known jailbreak and instruction-override
// phrasings
type InjectionDetector struct {
	patterns []injectionPattern
	logger   *logger.Logger
}

// NewInjectionDetector compiles the jailbreak pattern table
func NewInjectionDetector(log *logger.Logger) *InjectionDetector {
	return &InjectionDetector{
		patterns: []injectionPattern{
			{"ignore_instructions", true, regexp.MustCompile(`(?i)\bignore (?:all )?(?:previous|prior|above) (?:instructions|prompts|rules)\b`)},
			{"disregard_rules", true, regexp.MustCompile(`(?i)\bdisregard (?:all |your )?(?:instructions|guidelines|rules|programming)\b`)},
			{"reveal_system_prompt", true, regexp.MustCompile(`(?i)\b(?:reveal|show|print|repeat) (?:your |the )?system prompt\b`)},
			{"developer_mode", true, regexp.MustCompile(`(?i)\bdeveloper mode\b`)},
			{"dan_jailbreak", true, regexp.MustCompile(`(?i)\b(?:do anything now|\bDAN\b)`)},
			{"role_override", false, regexp.MustCompile(`(?i)\byou are (?:now|no longer)\b`)},
			{"pretend", false, regexp.MustCompile(`(?i)\bpretend (?:you are|to be)\b`)},
			{"act_as", false, regexp.MustCompile(`(?i)\bact as (?:a|an|if)\b`)},
			{"no_restrictions", false, regexp.MustCompile(`(?i)\b(?:without|no) (?:any )?(?:restrictions|limitations|filters)\b`)},
		},
		logger: log.WithComponent("injection-detector"),
	}
}

// Analyze scores text for prompt injection attempts
func (d *InjectionDetector) Analyze(text string) InjectionResult {
	result := InjectionResult{PatternHits: []string{}}

	if strings.TrimSpace(text) == "" {
		result.Score = 5
		return result
	}

	for _, p := range d.patterns {
		if p.pattern.MatchString(text) {
			result.PatternHits = append(result.PatternHits, p.name)
			if p.severe {
				result.Severe = true
			}
		}
	}

	hits := len(result.PatternHits)
	if hits == 0 {
		result.Score = 5
		return result
	}

	base := 50.0
	if hits >= 2 || result.Severe {
		base = 75.0
	}
	score := base + float64(hits)*5
	if score > 100 {
		score = 100
	}
	result.Score = score

	return result
}
