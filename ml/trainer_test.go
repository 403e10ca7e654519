package ml

import (
	"errors"
	"testing"
)

func TestSplitDeterministic(t *testing.T) {
	features, labels := syntheticGlucoseData()

	aX, aY, aTestX, aTestY := splitDataset(features, labels, 42, 0.2)
	bX, bY, bTestX, bTestY := splitDataset(features, labels, 42, 0.2)

	if len(aX) != len(bX) || len(aTestX) != len(bTestX) {
		t.Fatalf("partition sizes differ across runs")
	}
	for i := range aX {
		if aX[i][1] != bX[i][1] || aY[i] != bY[i] {
			t.Fatalf("train partition differs at row %d", i)
		}
	}
	for i := range aTestX {
		if aTestX[i][1] != bTestX[i][1] || aTestY[i] != bTestY[i] {
			t.Fatalf("holdout partition differs at row %d", i)
		}
	}

	if len(aX)+len(aTestX) != len(features) {
		t.Fatalf("partitions do not cover the dataset")
	}
}

func TestTrainerDeterministicAcrossRuns(t *testing.T) {
	features, labels := syntheticGlucoseData()

	first, err := NewTrainer(42, 0.2, 6).Fit(features, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewTrainer(42, 0.2, 6).Fit(features, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for glucose := 80.0; glucose <= 170.0; glucose += 0.5 {
		vector := []float64{3, glucose, 70, 30, 40}
		a, _, _ := first.Predict(vector)
		b, _, _ := second.Predict(vector)
		if a != b {
			t.Fatalf("glucose %.1f: models from identical seeds disagree (%d vs %d)", glucose, a, b)
		}
	}
}

func TestTrainerRejectsSingleClass(t *testing.T) {
	features := [][]float64{{1, 100, 70, 30, 40}, {2, 110, 70, 30, 40}, {3, 120, 70, 30, 40}}
	labels := []int{0, 0, 0}

	_, err := NewTrainer(42, 0.2, 6).Fit(features, labels)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTrainerRejectsEmptyData(t *testing.T) {
	_, err := NewTrainer(42, 0.2, 6).Fit(nil, nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTrainerFitsOnce(t *testing.T) {
	features, labels := syntheticGlucoseData()

	trainer := NewTrainer(42, 0.2, 6)
	if _, err := trainer.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := trainer.Fit(features, labels); err == nil {
		t.Fatal("expected second Fit to fail")
	}
}

func TestTrainerSingleUseAfterFailedFit(t *testing.T) {
	singleClassFeatures := [][]float64{{1, 100, 70, 30, 40}, {2, 110, 70, 30, 40}, {3, 120, 70, 30, 40}}
	singleClassLabels := []int{0, 0, 0}

	trainer := NewTrainer(42, 0.2, 6)
	if _, err := trainer.Fit(singleClassFeatures, singleClassLabels); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}

	features, labels := syntheticGlucoseData()
	_, err := trainer.Fit(features, labels)
	if err == nil {
		t.Fatal("expected reuse after a failed fit to be rejected")
	}
	if errors.Is(err, ErrInsufficientData) {
		t.Fatalf("reuse rejection should not be a data error: %v", err)
	}
	if err.Error() != "trainer already used" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTrainerMetrics(t *testing.T) {
	features, labels := syntheticGlucoseData()

	trainer := NewTrainer(42, 0.2, 6)
	if _, err := trainer.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	metrics := trainer.Metrics()
	if metrics.TrainRows == 0 || metrics.TestRows == 0 {
		t.Fatalf("expected both partitions populated: %+v", metrics)
	}
	if metrics.TrainRows+metrics.TestRows != len(labels) {
		t.Fatalf("partitions do not cover the dataset: %+v", metrics)
	}
	// The classes are perfectly separable by glucose.
	if metrics.Accuracy != 1.0 {
		t.Fatalf("expected holdout accuracy 1.0, got %v", metrics.Accuracy)
	}
}
