package services

import (
	"math"
	"math/rand"
	"sync/atomic"

	"signalguard/internal/config"
	"signalguard/internal/domain/models"
	"signalguard/pkg/logger"
)

// Scorer produces a unified 0-100 risk estimate from a full score vector
type Scorer interface {
	Score(scores models.ScoreVector) float64
	Name() string
}

// WeightedAverage is the deterministic baseline scorer
type WeightedAverage struct {
	weights map[models.ScoreKey]float64
}

// NewWeightedAverage creates the baseline scorer from a weight table
func NewWeightedAverage(weights map[models.ScoreKey]float64) *WeightedAverage {
	return &WeightedAverage{weights: weights}
}

func (w *WeightedAverage) Score(scores models.ScoreVector) float64 {
	total := 0.0
	for key, weight := range w.weights {
		total += scores[key] * weight
	}
	return total
}

func (w *WeightedAverage) Name() string { return "weighted_average" }

// TrainedModel blends a regression forest prediction with the weighted
// average. A model failure degrades to the pure weighted average inside
// Score; callers never see the error.
type TrainedModel struct {
	forest   *RegressionForest
	baseline *WeightedAverage
	blend    float64
	logger   *logger.Logger
}

// NewTrainedModel wraps a forest around the baseline scorer. blend is the
// model's share of the final score, the baseline carries the rest.
func NewTrainedModel(forest *RegressionForest, baseline *WeightedAverage, blend float64, log *logger.Logger) *TrainedModel {
	return &TrainedModel{
		forest:   forest,
		baseline: baseline,
		blend:    blend,
		logger:   log.WithComponent("trained-model"),
	}
}

func (t *TrainedModel) Score(scores models.ScoreVector) float64 {
	base := t.baseline.Score(scores)

	if t.forest == nil || !t.forest.IsTrained() {
		return base
	}

	point := featureVector(scores)
	pred, err := t.forest.Predict(point)
	if err != nil {
		t.logger.Warn().Err(err).Msg("model prediction failed, using weighted average")
		return base
	}

	return t.blend*pred + (1-t.blend)*base
}

func (t *TrainedModel) Name() string { return "trained_model" }

// Forest exposes the wrapped model for the attribution explainer
func (t *TrainedModel) Forest() *RegressionForest { return t.forest }

// featureVector lays a score vector out in canonical key order
func featureVector(scores models.ScoreVector) []float64 {
	point := make([]float64, len(models.CanonicalScoreKeys))
	for i, key := range models.CanonicalScoreKeys {
		point[i] = scores[key]
	}
	return point
}

// FusionEngine combines a normalized score vector into a unified verdict
type FusionEngine struct {
	weights map[models.ScoreKey]float64
	scorer  atomic.Pointer[scorerRef]
	logger  *logger.Logger
}

// atomic.Pointer needs a concrete type to hold the interface value
type scorerRef struct {
	scorer Scorer
}

// NewFusionEngine creates a fusion engine with the baseline scorer
// installed. Swap in a trained scorer with SetScorer.
func NewFusionEngine(cfg config.FusionConfig, log *logger.Logger) *FusionEngine {
	weights := WeightTable(cfg.Weights)
	e := &FusionEngine{
		weights: weights,
		logger:  log.WithComponent("fusion-engine"),
	}
	e.scorer.Store(&scorerRef{scorer: NewWeightedAverage(weights)})
	return e
}

// WeightTable converts the config weight block into a per-key map
func WeightTable(w config.WeightsConfig) map[models.ScoreKey]float64 {
	return map[models.ScoreKey]float64{
		models.ScoreCredential:    w.Credential,
		models.ScoreAIText:        w.AIText,
		models.ScoreMalware:       w.Malware,
		models.ScoreEmailPhishing: w.EmailPhishing,
		models.ScoreURL:           w.URL,
		models.ScoreInjection:     w.Injection,
	}
}

// SetScorer swaps the active scorer. Safe against in-flight Fuse calls.
func (e *FusionEngine) SetScorer(s Scorer) {
	e.scorer.Store(&scorerRef{scorer: s})
	e.logger.Info().Str("scorer", s.Name()).Msg("fusion scorer replaced")
}

// Weights returns the engine's weight table
func (e *FusionEngine) Weights() map[models.ScoreKey]float64 {
	return e.weights
}

// Fuse combines a score vector into a unified risk verdict. An empty
// vector is the "nothing to analyze" terminal case, not an error.
func (e *FusionEngine) Fuse(scores models.ScoreVector) models.FusionResult {
	if len(scores) == 0 {
		return models.FusionResult{
			Score:         0.0,
			Band:          models.BandLow,
			Action:        models.ActionVerify,
			Confidence:    1.0,
			Contributions: map[models.ScoreKey]float64{},
		}
	}

	raw := e.scorer.Load().scorer.Score(scores)
	score := round1(clampScore(raw))

	band := models.BandForScore(score)

	contributions := make(map[models.ScoreKey]float64, len(models.CanonicalScoreKeys))
	for _, key := range models.CanonicalScoreKeys {
		contributions[key] = round1(scores[key] * e.weights[key])
	}

	return models.FusionResult{
		Score:         score,
		Band:          band,
		Action:        models.ActionForBand(band),
		Confidence:    round2(math.Min(math.Abs(score-50)/50, 1)),
		Contributions: contributions,
	}
}

// NewSyntheticTrainedModel trains a regression forest on generated
// samples whose targets follow the weighted-average policy, boosted when
// several modules fire together, and wraps it as a TrainedModel. Used at
// startup so the blend path works without an external training corpus.
func NewSyntheticTrainedModel(cfg config.FusionConfig, log *logger.Logger) (*TrainedModel, error) {
	weights := WeightTable(cfg.Weights)
	baseline := NewWeightedAverage(weights)

	featureNames := make([]string, len(models.CanonicalScoreKeys))
	for i, key := range models.CanonicalScoreKeys {
		featureNames[i] = string(key)
	}

	forestCfg := DefaultRegressionForestConfig()
	forestCfg.RandomSeed = 42
	forest := NewRegressionForest(forestCfg, featureNames, log)

	rng := rand.New(rand.NewSource(42))
	const samples = 600
	data := make([][]float64, samples)
	targets := make([]float64, samples)
	for i := 0; i < samples; i++ {
		point := make([]float64, len(models.CanonicalScoreKeys))
		vector := make(models.ScoreVector, len(models.CanonicalScoreKeys))
		hot := 0
		for j, key := range models.CanonicalScoreKeys {
			v := sampleModuleScore(rng)
			point[j] = v
			vector[key] = v
			if v >= 70 {
				hot++
			}
		}
		target := baseline.Score(vector)
		// Coordinated signals are worse than their weighted sum suggests
		if hot >= 2 {
			target += 8
		}
		data[i] = point
		targets[i] = clampScore(target)
	}

	if err := forest.Train(data, targets); err != nil {
		return nil, err
	}

	return NewTrainedModel(forest, baseline, cfg.ModelBlend, log), nil
}

// sampleModuleScore draws a score skewed toward the benign end, the way
// real traffic looks
func sampleModuleScore(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u < 0.6 {
		return rng.Float64() * 20
	}
	if u < 0.85 {
		return 20 + rng.Float64()*50
	}
	return 70 + rng.Float64()*30
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
