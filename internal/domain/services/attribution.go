package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"signalguard/internal/domain/models"
	"signalguard/pkg/logger"
)

// Explainer yields per-key importances for one scored signal. Signed
// values are allowed; the engine takes absolute values.
type Explainer interface {
	FeatureImportances(scores models.ScoreVector) (map[models.ScoreKey]float64, error)
}

// ForestExplainer derives local importances from a trained forest by
// scaling each global feature importance by the signal's score on that
// feature.
type ForestExplainer struct {
	forest *RegressionForest
}

// NewForestExplainer wraps a trained regression forest
func NewForestExplainer(forest *RegressionForest) *ForestExplainer {
	return &ForestExplainer{forest: forest}
}

func (e *ForestExplainer) FeatureImportances(scores models.ScoreVector) (map[models.ScoreKey]float64, error) {
	if e.forest == nil || !e.forest.IsTrained() {
		return nil, ErrNotTrained
	}

	global := e.forest.FeatureImportance()
	out := make(map[models.ScoreKey]float64, len(models.CanonicalScoreKeys))
	for _, key := range models.CanonicalScoreKeys {
		out[key] = global[string(key)] * scores[key]
	}
	return out, nil
}

// AttributionEngine explains which modules drove a fused verdict. The
// explainer is optional; absence or failure falls back to the
// deterministic score-times-weight contribution.
type AttributionEngine struct {
	weights   map[models.ScoreKey]float64
	explainer Explainer
	logger    *logger.Logger
}

// NewAttributionEngine creates an attribution engine. explainer may be nil.
func NewAttributionEngine(weights map[models.ScoreKey]float64, explainer Explainer, log *logger.Logger) *AttributionEngine {
	return &AttributionEngine{
		weights:   weights,
		explainer: explainer,
		logger:    log.WithComponent("attribution-engine"),
	}
}

// Explain produces the percentage breakdown for a scored signal
func (e *AttributionEngine) Explain(scores models.ScoreVector, unified float64) models.Attribution {
	importances, method := e.importances(scores)

	total := 0.0
	for _, v := range importances {
		total += v
	}

	factors := make([]models.Factor, 0, len(models.CanonicalScoreKeys))
	for _, key := range models.CanonicalScoreKeys {
		pct := 0.0
		if total > 0 {
			pct = round1(importances[key] / total * 100)
		}
		factors = append(factors, models.Factor{
			Key:     key,
			Label:   models.FactorLabels[key],
			Percent: pct,
		})
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Percent > factors[j].Percent
	})

	top := []string{}
	for _, f := range factors {
		if f.Percent > 0 && len(top) < 3 {
			top = append(top, fmt.Sprintf("%s (%.0f%%)", f.Label, f.Percent))
		}
	}

	return models.Attribution{
		Factors:    factors,
		TopFactors: top,
		Narrative:  narrative(factors, unified),
		Method:     method,
	}
}

// importances returns absolute per-key importances and the method used
func (e *AttributionEngine) importances(scores models.ScoreVector) (map[models.ScoreKey]float64, string) {
	if e.explainer != nil {
		raw, err := e.explainer.FeatureImportances(scores)
		if err == nil && len(raw) > 0 {
			abs := make(map[models.ScoreKey]float64, len(raw))
			for key, v := range raw {
				abs[key] = math.Abs(v)
			}
			return abs, "model_importance"
		}
		if err != nil {
			e.logger.Warn().Err(err).Msg("explainer failed, using contribution fallback")
		}
	}

	contrib := make(map[models.ScoreKey]float64, len(models.CanonicalScoreKeys))
	for _, key := range models.CanonicalScoreKeys {
		contrib[key] = scores[key] * e.weights[key]
	}
	return contrib, "contribution"
}

func narrative(factors []models.Factor, unified float64) string {
	var significant []string
	for _, f := range factors {
		if f.Percent > 1 {
			significant = append(significant, fmt.Sprintf("%s (%.0f%%)", f.Label, f.Percent))
		}
	}

	if len(significant) == 0 {
		return fmt.Sprintf("Risk score %.1f with no significant contributing factors", unified)
	}

	return fmt.Sprintf("Risk score %.1f driven primarily by %s; contributing factors: %s",
		unified, factors[0].Label, strings.Join(significant, ", "))
}
