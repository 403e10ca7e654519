package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrInsufficientData marks a training partition that is empty or
// contains a single class; no decision boundary can be learned.
var ErrInsufficientData = errors.New("insufficient training data")

type trainerState int

const (
	stateUnfitted trainerState = iota
	stateFitting
	stateFitted
)

// Trainer performs one seeded train/holdout split, fits a tree on the
// training partition and evaluates it on the holdout. A Trainer fits
// exactly once; retraining requires a new Trainer.
type Trainer struct {
	seed      int64
	testRatio float64
	maxDepth  int

	state   trainerState
	model   *DecisionTree
	metrics Metrics
}

// Metrics are holdout diagnostics. They are not part of the artifact
// contract.
type Metrics struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	TrainRows int
	TestRows  int
}

func NewTrainer(seed int64, testRatio float64, maxDepth int) *Trainer {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	return &Trainer{seed: seed, testRatio: testRatio, maxDepth: maxDepth}
}

// Fit splits, trains and evaluates. The split is fully determined by
// the seed: the same seed over the same rows yields the same
// partitions on every run.
func (t *Trainer) Fit(features [][]float64, labels []int) (*DecisionTree, error) {
	// A Trainer is single-use even when the fit fails partway; a new
	// run takes a new Trainer.
	if t.state != stateUnfitted {
		return nil, errors.New("trainer already used")
	}
	if len(features) != len(labels) {
		return nil, errors.New("features and labels size mismatch")
	}
	t.state = stateFitting

	trainX, trainY, testX, testY := splitDataset(features, labels, t.seed, t.testRatio)
	if len(trainY) == 0 {
		return nil, fmt.Errorf("%w: empty training partition", ErrInsufficientData)
	}
	if singleClass(trainY) {
		return nil, fmt.Errorf("%w: training partition contains a single class", ErrInsufficientData)
	}

	model := NewDecisionTree(t.maxDepth)
	if err := model.Train(trainX, trainY); err != nil {
		return nil, err
	}

	t.model = model
	t.metrics = evaluate(model, testX, testY)
	t.metrics.TrainRows = len(trainY)
	t.metrics.TestRows = len(testY)
	t.state = stateFitted
	return model, nil
}

// Metrics returns the holdout diagnostics of the completed fit.
func (t *Trainer) Metrics() Metrics {
	return t.metrics
}

func splitDataset(features [][]float64, labels []int, seed int64, testRatio float64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(features))

	split := int(math.Round(float64(len(features)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, features[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}

func singleClass(labels []int) bool {
	positive, negative := countLabels(labels)
	return positive == 0 || negative == 0
}

func evaluate(model *DecisionTree, testX [][]float64, testY []int) Metrics {
	if len(testX) == 0 {
		return Metrics{}
	}

	var correct, truePositive, predictedPositive, actualPositive int
	for i, feature := range testX {
		label, _, err := model.Predict(feature)
		if err != nil {
			continue
		}
		if label == testY[i] {
			correct++
		}
		if label == 1 {
			predictedPositive++
		}
		if testY[i] == 1 {
			actualPositive++
			if label == 1 {
				truePositive++
			}
		}
	}

	m := Metrics{Accuracy: float64(correct) / float64(len(testX))}
	if predictedPositive > 0 {
		m.Precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		m.Recall = float64(truePositive) / float64(actualPositive)
	}
	return m
}
