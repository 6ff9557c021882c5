package detection

import (
	"math"
	"regexp"
	"strings"

	"signalguard/pkg/logger"
)

// AITextResult is the AI-generated-text detector's output
type AITextResult struct {
	Score          float64  `json:"score"`
	Probability    float64  `json:"probability"`
	PatternHits    []string `json:"pattern_hits"`
	UniformityHint bool     `json:"uniformity_hint"`
}

// AITextDetector estimates how likely a text is machine-generated from
// phrase patterns, sentence-length uniformity and formal word density
type AITextDetector struct {
	phrases     []*regexp.Regexp
	phraseNames []string
	formalWords map[string]bool
	logger      *logger.Logger
}

// NewAITextDetector compiles the stylistic pattern table
func NewAITextDetector(log *logger.Logger) *AITextDetector {
	phraseTable := []struct {
		name    string
		pattern string
	}{
		{"as_an_ai", `(?i)\bas an ai\b`},
		{"important_to_note", `(?i)\bit(?:'s| is) (?:important|worth) (?:to note|noting)\b`},
		{"in_conclusion", `(?i)\bin conclusion\b`},
		{"furthermore", `(?i)\bfurthermore\b`},
		{"delve", `(?i)\bdelve\b`},
		{"i_hope_this_helps", `(?i)\bi hope this (?:helps|email finds you well)\b`},
		{"leverage", `(?i)\bleverage\b`},
		{"comprehensive_overview", `(?i)\bcomprehensive (?:overview|guide|solution)\b`},
	}

	d := &AITextDetector{
		formalWords: map[string]bool{
			"additionally": true, "consequently": true, "furthermore": true,
			"moreover": true, "nevertheless": true, "subsequently": true,
			"therefore": true, "utilize": true, "facilitate": true,
			"demonstrate": true, "significant": true, "crucial": true,
		},
		logger: log.WithComponent("ai-text-detector"),
	}
	for _, p := range phraseTable {
		d.phrases = append(d.phrases, regexp.MustCompile(p.pattern))
		d.phraseNames = append(d.phraseNames, p.name)
	}
	return d
}

// Analyze scores a text for machine-generation likelihood
func (d *AITextDetector) Analyze(text string) AITextResult {
	result := AITextResult{PatternHits: []string{}}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return result
	}

	prob := 0.1

	for i, re := range d.phrases {
		if re.MatchString(trimmed) {
			result.PatternHits = append(result.PatternHits, d.phraseNames[i])
		}
	}
	prob += math.Min(float64(len(result.PatternHits))*0.15, 0.45)

	// Very even sentence lengths read as generated text
	lengths := sentenceLengths(trimmed)
	if len(lengths) >= 3 {
		if cv := coefficientOfVariation(lengths); cv < 0.3 {
			prob += 0.2
			result.UniformityHint = true
		}
	}

	words := strings.Fields(strings.ToLower(trimmed))
	if len(words) > 0 {
		formal := 0
		for _, w := range words {
			if d.formalWords[strings.Trim(w, ".,;:!?")] {
				formal++
			}
		}
		density := float64(formal) / float64(len(words))
		prob += math.Min(density*4, 0.25)
	}

	if prob > 1 {
		prob = 1
	}
	result.Probability = prob
	result.Score = prob * 100

	return result
}

func sentenceLengths(text string) []float64 {
	var lengths []float64
	for _, s := range regexp.MustCompile(`[.!?]+`).Split(text, -1) {
		if n := len(strings.Fields(s)); n > 0 {
			lengths = append(lengths, float64(n))
		}
	}
	return lengths
}

func coefficientOfVariation(values []float64) float64 {
	n := float64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m := sum / n
	if m == 0 {
		return 0
	}
	varsum := 0.0
	for _, v := range values {
		d := v - m
		varsum += d * d
	}
	return math.Sqrt(varsum/n) / m
}
