package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalguard/internal/config"
	"signalguard/internal/domain/models"
	"signalguard/pkg/logger"
)

func testFusionConfig() config.FusionConfig {
	return config.Default().Fusion
}

// passthroughConfig makes the fused score equal the credential score
func passthroughConfig() config.FusionConfig {
	return config.FusionConfig{
		Weights:    config.WeightsConfig{Credential: 1.0},
		ModelBlend: 0.7,
	}
}

func TestFuseEmptyVector(t *testing.T) {
	engine := NewFusionEngine(testFusionConfig(), logger.NewDefault())

	result := engine.Fuse(models.ScoreVector{})

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, models.BandLow, result.Band)
	assert.Equal(t, models.ActionVerify, result.Action)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Empty(t, result.Contributions)
}

func TestFuseBandBoundaries(t *testing.T) {
	engine := NewFusionEngine(passthroughConfig(), logger.NewDefault())

	cases := []struct {
		score  float64
		band   models.RiskBand
		action models.Action
	}{
		{20.0, models.BandLow, models.ActionVerify},
		{21.0, models.BandMedium, models.ActionWarn},
		{50.0, models.BandMedium, models.ActionWarn},
		{51.0, models.BandHigh, models.ActionEscalate},
		{75.0, models.BandHigh, models.ActionEscalate},
		{76.0, models.BandCritical, models.ActionBlock},
	}

	for _, tc := range cases {
		result := engine.Fuse(models.ScoreVector{models.ScoreCredential: tc.score})
		assert.Equal(t, tc.score, result.Score, "score %.1f", tc.score)
		assert.Equal(t, tc.band, result.Band, "score %.1f", tc.score)
		assert.Equal(t, tc.action, result.Action, "score %.1f", tc.score)
	}
}

func TestFuseScoreAndConfidenceRanges(t *testing.T) {
	engine := NewFusionEngine(testFusionConfig(), logger.NewDefault())

	vectors := []models.ScoreVector{
		{models.ScoreCredential: 0},
		{models.ScoreCredential: 100, models.ScoreMalware: 100, models.ScoreAIText: 100,
			models.ScoreEmailPhishing: 100, models.ScoreURL: 100, models.ScoreInjection: 100},
		{models.ScoreAIText: 33.3, models.ScoreURL: 87.1},
	}

	for _, v := range vectors {
		result := engine.Fuse(v)
		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 100.0)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 1.0)
	}
}

func TestFuseConfidenceDistanceFromMidpoint(t *testing.T) {
	engine := NewFusionEngine(passthroughConfig(), logger.NewDefault())

	assert.Equal(t, 0.0, engine.Fuse(models.ScoreVector{models.ScoreCredential: 50}).Confidence)
	assert.Equal(t, 1.0, engine.Fuse(models.ScoreVector{models.ScoreCredential: 100}).Confidence)
	assert.Equal(t, 0.5, engine.Fuse(models.ScoreVector{models.ScoreCredential: 25}).Confidence)
}

func TestFuseContributionsSumToWeightedAverage(t *testing.T) {
	engine := NewFusionEngine(testFusionConfig(), logger.NewDefault())

	vector := models.ScoreVector{
		models.ScoreCredential:    50,
		models.ScoreAIText:        50,
		models.ScoreMalware:       50,
		models.ScoreEmailPhishing: 50,
		models.ScoreURL:           50,
		models.ScoreInjection:     50,
	}
	result := engine.Fuse(vector)

	sum := 0.0
	for _, c := range result.Contributions {
		sum += c
	}
	assert.Len(t, result.Contributions, len(models.CanonicalScoreKeys))
	assert.InDelta(t, result.Score, sum, 0.3)
	assert.LessOrEqual(t, sum, result.Score+0.3)
}

func TestTrainedModelFallsBackWhenUntrained(t *testing.T) {
	cfg := testFusionConfig()
	baseline := NewWeightedAverage(WeightTable(cfg.Weights))
	forest := NewRegressionForest(DefaultRegressionForestConfig(), nil, logger.NewDefault())
	model := NewTrainedModel(forest, baseline, cfg.ModelBlend, logger.NewDefault())

	vector := models.ScoreVector{models.ScoreCredential: 80, models.ScoreMalware: 60}
	assert.Equal(t, baseline.Score(vector), model.Score(vector))
}

func TestSyntheticTrainedModelStaysInRange(t *testing.T) {
	model, err := NewSyntheticTrainedModel(testFusionConfig(), logger.NewDefault())
	require.NoError(t, err)
	require.True(t, model.Forest().IsTrained())

	engine := NewFusionEngine(testFusionConfig(), logger.NewDefault())
	engine.SetScorer(model)

	for _, v := range []models.ScoreVector{
		{models.ScoreCredential: 0},
		{models.ScoreCredential: 95, models.ScoreMalware: 95, models.ScoreEmailPhishing: 90},
		{models.ScoreURL: 42},
	} {
		result := engine.Fuse(v)
		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 100.0)
	}
}

type fixedScorer struct{ value float64 }

func (f fixedScorer) Score(models.ScoreVector) float64 { return f.value }
func (f fixedScorer) Name() string                     { return "fixed" }

func TestSetScorerConcurrentWithFuse(t *testing.T) {
	engine := NewFusionEngine(testFusionConfig(), logger.NewDefault())
	vector := models.ScoreVector{models.ScoreCredential: 40}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				result := engine.Fuse(vector)
				assert.GreaterOrEqual(t, result.Score, 0.0)
				assert.LessOrEqual(t, result.Score, 100.0)
			}
		}()
	}
	for i := 0; i < 50; i++ {
		engine.SetScorer(fixedScorer{value: float64(i % 100)})
	}
	wg.Wait()
}
