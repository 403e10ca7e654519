package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"diapredict/dataset"
	"diapredict/db"
	"diapredict/logging"
	"diapredict/ml"
)

const defaultDatasetURL = "https://raw.githubusercontent.com/plotly/datasets/master/diabetes.csv"

func main() {
	source := flag.String("data", defaultDatasetURL, "dataset CSV location (URL or file path)")
	modelPath := flag.String("model_path", "./models/diabetes.model", "artifact output path")
	dbPath := flag.String("db", "./diapredict.db", "training run log database")
	seed := flag.Int64("seed", 42, "train/holdout split seed")
	testRatio := flag.Float64("test_ratio", 0.2, "holdout fraction")
	maxDepth := flag.Int("max_depth", 6, "max tree depth")
	logLevel := flag.String("log_level", "info", "log level")
	flag.Parse()

	logger, _ := logging.New(logging.Config{Level: *logLevel})
	defer logger.Sync()
	sugar := logger.Sugar()

	table, err := dataset.Load(*source)
	if err != nil {
		sugar.Fatalf("failed to load dataset: %v", err)
	}
	sugar.Infof("loaded %d rows from %s", table.Len(), *source)

	features, labels, err := dataset.Select(table, ml.FeatureNames(), ml.TargetColumn)
	if err != nil {
		sugar.Fatalf("failed to select features: %v", err)
	}

	trainer := ml.NewTrainer(*seed, *testRatio, *maxDepth)
	model, err := trainer.Fit(features, labels)
	if err != nil {
		sugar.Fatalf("training failed: %v", err)
	}

	metrics := trainer.Metrics()
	sugar.Infof("holdout accuracy=%.3f precision=%.3f recall=%.3f (train=%d test=%d)",
		metrics.Accuracy, metrics.Precision, metrics.Recall, metrics.TrainRows, metrics.TestRows)

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0o755); err != nil {
		sugar.Fatalf("failed to create model dir: %v", err)
	}
	if err := ml.SaveArtifact(model, *modelPath); err != nil {
		sugar.Fatalf("failed to save model artifact: %v", err)
	}

	// Run log is diagnostic only; a broken DB must not fail a run
	// that already produced a valid artifact.
	if err := logRun(*dbPath, *source, *seed, *modelPath, metrics); err != nil {
		sugar.Warnf("failed to record training run: %v", err)
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}

func logRun(dbPath, source string, seed int64, modelPath string, metrics ml.Metrics) error {
	if err := db.InitDB(dbPath); err != nil {
		return err
	}
	defer db.CloseDB()

	return db.SaveTrainingRun(db.TrainingRun{
		Dataset:      source,
		SplitSeed:    seed,
		TrainRows:    metrics.TrainRows,
		TestRows:     metrics.TestRows,
		Accuracy:     metrics.Accuracy,
		Precision:    metrics.Precision,
		Recall:       metrics.Recall,
		ArtifactPath: modelPath,
		TrainedAt:    time.Now(),
	})
}
