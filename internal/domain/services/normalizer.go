package services

import (
	"encoding/json"
	"fmt"
	"strconv"

	"signalguard/internal/domain/models"
)

// scoreAliases maps producer-supplied key spellings onto canonical keys.
// Canonical names map to themselves so exact keys go through the same path.
var scoreAliases = map[string]models.ScoreKey{
	"credential_score":     models.ScoreCredential,
	"credential":           models.ScoreCredential,
	"credentials":          models.ScoreCredential,
	"ai_text_score":        models.ScoreAIText,
	"ai_text":              models.ScoreAIText,
	"malware_score":        models.ScoreMalware,
	"malware":              models.ScoreMalware,
	"email_phishing_score": models.ScoreEmailPhishing,
	"email_phishing":       models.ScoreEmailPhishing,
	"phishing":             models.ScoreEmailPhishing,
	"url_score":            models.ScoreURL,
	"url":                  models.ScoreURL,
	"injection_score":      models.ScoreInjection,
	"injection":            models.ScoreInjection,
}

// NormalizeScores canonicalizes a producer score map into a ScoreVector.
// Aliased keys resolve to their canonical name (last write wins on
// collision), values are coerced to float64 and clamped to [0,100], and
// every canonical key is present in the result, absent ones as 0.
// Unknown keys pass through unchanged under their own name.
func NormalizeScores(raw map[string]interface{}) (models.ScoreVector, error) {
	vector := make(models.ScoreVector, len(models.CanonicalScoreKeys))
	for _, key := range models.CanonicalScoreKeys {
		vector[key] = 0
	}

	for key, value := range raw {
		num, err := coerceFloat(value)
		if err != nil {
			return nil, fmt.Errorf("score %q: %w", key, err)
		}
		canonical, ok := scoreAliases[key]
		if !ok {
			canonical = models.ScoreKey(key)
		}
		vector[canonical] = clampScore(num)
	}

	return vector, nil
}

func coerceFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a numeric value: %v", v)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("not a numeric value: %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a numeric value: %T", value)
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
