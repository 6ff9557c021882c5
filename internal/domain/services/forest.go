package services

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"signalguard/pkg/logger"
)

// ErrNotTrained is returned by Predict before Train has run
var ErrNotTrained = errors.New("forest has not been trained")

// RegressionForest is a pure-Go random forest regressor. It predicts a
// unified 0-100 risk score from a fixed-order feature vector of module
// scores, and exposes variance-reduction feature importances for the
// attribution explainer.
type RegressionForest struct {
	trees             []*regTree
	numTrees          int
	maxDepth          int
	minSamplesLeaf    int
	maxFeatures       int
	featureNames      []string
	featureImportance map[string]float64
	trained           bool
	trainingTime      time.Time
	trainingSize      int
	rng               *rand.Rand
	mu                sync.RWMutex
	logger            *logger.Logger
}

type regTree struct {
	root *regNode
}

type regNode struct {
	feature    int
	threshold  float64
	left       *regNode
	right      *regNode
	isLeaf     bool
	prediction float64
}

// RegressionForestConfig holds forest hyperparameters
type RegressionForestConfig struct {
	NumTrees       int
	MaxDepth       int
	MinSamplesLeaf int
	MaxFeatures    int
	RandomSeed     int64
}

// DefaultRegressionForestConfig returns the default hyperparameters
func DefaultRegressionForestConfig() RegressionForestConfig {
	return RegressionForestConfig{
		NumTrees:       50,
		MaxDepth:       8,
		MinSamplesLeaf: 3,
		MaxFeatures:    0, // sqrt(n_features)
		RandomSeed:     time.Now().UnixNano(),
	}
}

// NewRegressionForest creates an untrained forest
func NewRegressionForest(config RegressionForestConfig, featureNames []string, log *logger.Logger) *RegressionForest {
	if config.NumTrees <= 0 {
		config.NumTrees = 50
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = 8
	}
	if config.MinSamplesLeaf <= 0 {
		config.MinSamplesLeaf = 3
	}

	return &RegressionForest{
		numTrees:       config.NumTrees,
		maxDepth:       config.MaxDepth,
		minSamplesLeaf: config.MinSamplesLeaf,
		maxFeatures:    config.MaxFeatures,
		featureNames:   featureNames,
		rng:            rand.New(rand.NewSource(config.RandomSeed)),
		logger:         log.WithComponent("regression-forest"),
	}
}

// Train fits the forest on feature vectors and target scores
func (rf *RegressionForest) Train(data [][]float64, targets []float64) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	startTime := time.Now()
	n := len(data)
	if n == 0 || len(targets) != n {
		return errors.New("training data and targets must be non-empty and equal length")
	}

	numFeatures := len(data[0])
	if rf.maxFeatures <= 0 {
		rf.maxFeatures = int(math.Sqrt(float64(numFeatures)))
		if rf.maxFeatures < 1 {
			rf.maxFeatures = 1
		}
	}

	rf.trees = make([]*regTree, rf.numTrees)
	rf.featureImportance = make(map[string]float64)

	for i := 0; i < rf.numTrees; i++ {
		sampleData, sampleTargets := rf.bootstrapSample(data, targets)
		rf.trees[i] = &regTree{root: rf.buildNode(sampleData, sampleTargets, 0, numFeatures)}
	}

	total := 0.0
	for _, imp := range rf.featureImportance {
		total += imp
	}
	if total > 0 {
		for name := range rf.featureImportance {
			rf.featureImportance[name] /= total
		}
	}

	rf.trained = true
	rf.trainingTime = time.Now()
	rf.trainingSize = n

	rf.logger.Info().
		Int("trees", rf.numTrees).
		Int("training_size", n).
		Dur("duration", time.Since(startTime)).
		Msg("regression forest trained")

	return nil
}

// Predict returns the forest's score estimate for one feature vector
func (rf *RegressionForest) Predict(point []float64) (float64, error) {
	rf.mu.RLock()
	defer rf.mu.RUnlock()

	if !rf.trained || len(rf.trees) == 0 {
		return 0, ErrNotTrained
	}

	sum := 0.0
	for _, tree := range rf.trees {
		sum += treePredict(tree.root, point)
	}
	return sum / float64(len(rf.trees)), nil
}

// FeatureImportance returns a copy of the normalized importances
func (rf *RegressionForest) FeatureImportance() map[string]float64 {
	rf.mu.RLock()
	defer rf.mu.RUnlock()

	out := make(map[string]float64, len(rf.featureImportance))
	for name, imp := range rf.featureImportance {
		out[name] = imp
	}
	return out
}

// IsTrained reports whether Train has completed
func (rf *RegressionForest) IsTrained() bool {
	rf.mu.RLock()
	defer rf.mu.RUnlock()
	return rf.trained
}

func treePredict(node *regNode, point []float64) float64 {
	if node == nil {
		return 0
	}
	for !node.isLeaf {
		if node.feature < len(point) && point[node.feature] < node.threshold {
			node = node.left
		} else {
			node = node.right
		}
		if node == nil {
			return 0
		}
	}
	return node.prediction
}

func (rf *RegressionForest) buildNode(data [][]float64, targets []float64, depth, numFeatures int) *regNode {
	n := len(data)

	if depth >= rf.maxDepth || n <= rf.minSamplesLeaf {
		return &regNode{isLeaf: true, prediction: mean(targets)}
	}

	bestFeature, bestThreshold, bestGain := rf.findBestSplit(data, targets, numFeatures)
	if bestGain <= 0 || bestFeature < 0 {
		return &regNode{isLeaf: true, prediction: mean(targets)}
	}

	if bestFeature < len(rf.featureNames) {
		rf.featureImportance[rf.featureNames[bestFeature]] += bestGain * float64(n)
	}

	leftData, leftTargets, rightData, rightTargets := splitRegData(data, targets, bestFeature, bestThreshold)
	if len(leftData) == 0 || len(rightData) == 0 {
		return &regNode{isLeaf: true, prediction: mean(targets)}
	}

	return &regNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      rf.buildNode(leftData, leftTargets, depth+1, numFeatures),
		right:     rf.buildNode(rightData, rightTargets, depth+1, numFeatures),
	}
}

// findBestSplit searches for the split with maximum variance reduction
func (rf *RegressionForest) findBestSplit(data [][]float64, targets []float64, numFeatures int) (int, float64, float64) {
	n := len(data)
	if n == 0 || len(data[0]) == 0 {
		return -1, 0, 0
	}

	currentVar := variance(targets)

	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 0.0

	for _, feature := range rf.selectRandomFeatures(numFeatures) {
		values := make([]float64, n)
		for i, point := range data {
			values[i] = point[feature]
		}
		sort.Float64s(values)

		for i := 0; i < n-1; i++ {
			if values[i] == values[i+1] {
				continue
			}
			threshold := (values[i] + values[i+1]) / 2

			var left, right []float64
			for j, point := range data {
				if point[feature] < threshold {
					left = append(left, targets[j])
				} else {
					right = append(right, targets[j])
				}
			}
			if len(left) == 0 || len(right) == 0 {
				continue
			}

			weighted := (float64(len(left))*variance(left) + float64(len(right))*variance(right)) / float64(n)
			gain := currentVar - weighted
			if gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

func (rf *RegressionForest) selectRandomFeatures(numFeatures int) []int {
	if rf.maxFeatures >= numFeatures {
		features := make([]int, numFeatures)
		for i := range features {
			features[i] = i
		}
		return features
	}

	indices := make([]int, numFeatures)
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < rf.maxFeatures; i++ {
		j := i + rf.rng.Intn(numFeatures-i)
		indices[i], indices[j] = indices[j], indices[i]
	}
	return indices[:rf.maxFeatures]
}

func (rf *RegressionForest) bootstrapSample(data [][]float64, targets []float64) ([][]float64, []float64) {
	n := len(data)
	sampleData := make([][]float64, n)
	sampleTargets := make([]float64, n)
	for i := 0; i < n; i++ {
		idx := rf.rng.Intn(n)
		sampleData[i] = data[idx]
		sampleTargets[i] = targets[idx]
	}
	return sampleData, sampleTargets
}

func splitRegData(data [][]float64, targets []float64, feature int, threshold float64) ([][]float64, []float64, [][]float64, []float64) {
	var leftData, rightData [][]float64
	var leftTargets, rightTargets []float64
	for i, point := range data {
		if point[feature] < threshold {
			leftData = append(leftData, point)
			leftTargets = append(leftTargets, targets[i])
		} else {
			rightData = append(rightData, point)
			rightTargets = append(rightTargets, targets[i])
		}
	}
	return leftData, leftTargets, rightData, rightTargets
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(n)
}
