package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalguard/internal/config"
	"signalguard/internal/domain/models"
	"signalguard/pkg/logger"
)

type failingExplainer struct{}

func (failingExplainer) FeatureImportances(models.ScoreVector) (map[models.ScoreKey]float64, error) {
	return nil, errors.New("model unavailable")
}

type fixedExplainer struct {
	importances map[models.ScoreKey]float64
}

func (e fixedExplainer) FeatureImportances(models.ScoreVector) (map[models.ScoreKey]float64, error) {
	return e.importances, nil
}

func newTestAttribution(explainer Explainer) *AttributionEngine {
	weights := WeightTable(config.Default().Fusion.Weights)
	return NewAttributionEngine(weights, explainer, logger.NewDefault())
}

func TestExplainPercentagesSumToHundred(t *testing.T) {
	engine := newTestAttribution(nil)

	scores := models.ScoreVector{
		models.ScoreCredential:    80,
		models.ScoreAIText:        20,
		models.ScoreMalware:       95,
		models.ScoreEmailPhishing: 60,
		models.ScoreURL:           30,
		models.ScoreInjection:     10,
	}

	attrib := engine.Explain(scores, 62.3)
	require.Len(t, attrib.Factors, 6)

	sum := 0.0
	for _, f := range attrib.Factors {
		sum += f.Percent
	}
	assert.InDelta(t, 100.0, sum, 0.5)
	assert.Equal(t, "contribution", attrib.Method)
}

func TestExplainAllZeroVector(t *testing.T) {
	engine := newTestAttribution(nil)

	scores := models.ScoreVector{}
	for _, key := range models.CanonicalScoreKeys {
		scores[key] = 0
	}

	attrib := engine.Explain(scores, 0)
	require.Len(t, attrib.Factors, 6)
	for _, f := range attrib.Factors {
		assert.Equal(t, 0.0, f.Percent)
	}
	assert.Empty(t, attrib.TopFactors)
	assert.Contains(t, attrib.Narrative, "no significant contributing factors")
}

func TestExplainTopFactorsFormat(t *testing.T) {
	engine := newTestAttribution(nil)

	scores := models.ScoreVector{
		models.ScoreCredential: 90,
		models.ScoreMalware:    80,
		models.ScoreURL:        40,
	}

	attrib := engine.Explain(scores, 55.0)
	require.NotEmpty(t, attrib.TopFactors)
	assert.LessOrEqual(t, len(attrib.TopFactors), 3)

	// Highest weighted contribution is credential (90 * 0.30 = 27)
	assert.True(t, strings.HasPrefix(attrib.TopFactors[0], "Credential Exposure ("))
	for _, entry := range attrib.TopFactors {
		assert.Contains(t, entry, "%)")
	}
	assert.Contains(t, attrib.Narrative, "Credential Exposure")
}

func TestExplainFallsBackWhenExplainerFails(t *testing.T) {
	engine := newTestAttribution(failingExplainer{})

	scores := models.ScoreVector{models.ScoreCredential: 70}
	attrib := engine.Explain(scores, 21.0)

	assert.Equal(t, "contribution", attrib.Method)
	assert.Equal(t, models.ScoreCredential, attrib.Factors[0].Key)
}

func TestExplainUsesExplainerImportances(t *testing.T) {
	engine := newTestAttribution(fixedExplainer{importances: map[models.ScoreKey]float64{
		models.ScoreAIText:     -6.0, // sign must not matter
		models.ScoreCredential: 2.0,
	}})

	attrib := engine.Explain(models.ScoreVector{}, 30.0)
	assert.Equal(t, "model_importance", attrib.Method)
	assert.Equal(t, models.ScoreAIText, attrib.Factors[0].Key)
	assert.Equal(t, 75.0, attrib.Factors[0].Percent)
	assert.Equal(t, 25.0, attrib.Factors[1].Percent)
}
