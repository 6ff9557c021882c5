package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalguard/pkg/logger"
)

func TestForestPredictBeforeTraining(t *testing.T) {
	forest := NewRegressionForest(DefaultRegressionForestConfig(), nil, logger.NewDefault())

	assert.False(t, forest.IsTrained())
	_, err := forest.Predict([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestForestTrainRejectsEmptyData(t *testing.T) {
	forest := NewRegressionForest(DefaultRegressionForestConfig(), nil, logger.NewDefault())

	assert.Error(t, forest.Train(nil, nil))
	assert.Error(t, forest.Train([][]float64{{1}}, []float64{1, 2}))
}

func TestForestLearnsMonotonicTrend(t *testing.T) {
	cfg := DefaultRegressionForestConfig()
	cfg.RandomSeed = 7
	forest := NewRegressionForest(cfg, []string{"a", "b"}, logger.NewDefault())

	// Target tracks feature a; feature b is noise
	rng := rand.New(rand.NewSource(7))
	var data [][]float64
	var targets []float64
	for i := 0; i < 400; i++ {
		a := rng.Float64() * 100
		b := rng.Float64() * 100
		data = append(data, []float64{a, b})
		targets = append(targets, a)
	}
	require.NoError(t, forest.Train(data, targets))
	require.True(t, forest.IsTrained())

	low, err := forest.Predict([]float64{10, 50})
	require.NoError(t, err)
	high, err := forest.Predict([]float64{90, 50})
	require.NoError(t, err)
	assert.Greater(t, high, low)

	importance := forest.FeatureImportance()
	assert.Greater(t, importance["a"], importance["b"])

	sum := 0.0
	for _, v := range importance {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}
