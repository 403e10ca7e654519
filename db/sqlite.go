package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// TrainingRun is one row of the training diagnostics log.
type TrainingRun struct {
	ID           int64
	Dataset      string
	SplitSeed    int64
	TrainRows    int
	TestRows     int
	Accuracy     float64
	Precision    float64
	Recall       float64
	ArtifactPath string
	TrainedAt    time.Time
}

// InitDB opens the SQLite database and creates the schema.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS training_runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        dataset TEXT NOT NULL,
        split_seed INTEGER NOT NULL,
        train_rows INTEGER NOT NULL,
        test_rows INTEGER NOT NULL,
        accuracy REAL,
        precision REAL,
        recall REAL,
        artifact_path TEXT NOT NULL,
        trained_at DATETIME NOT NULL
    );`
	_, err = database.Exec(query)
	return err
}

// CloseDB closes the database handle.
func CloseDB() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SaveTrainingRun appends one run to the log.
func SaveTrainingRun(run TrainingRun) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO training_runs
        (dataset, split_seed, train_rows, test_rows, accuracy, precision, recall, artifact_path, trained_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Dataset, run.SplitSeed, run.TrainRows, run.TestRows,
		run.Accuracy, run.Precision, run.Recall, run.ArtifactPath, run.TrainedAt)
	return err
}

// RecentTrainingRuns returns the latest runs, newest first.
func RecentTrainingRuns(limit int) ([]TrainingRun, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := database.Query(`
        SELECT id, dataset, split_seed, train_rows, test_rows, accuracy, precision, recall, artifact_path, trained_at
        FROM training_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []TrainingRun
	for rows.Next() {
		var run TrainingRun
		if err := rows.Scan(&run.ID, &run.Dataset, &run.SplitSeed, &run.TrainRows, &run.TestRows,
			&run.Accuracy, &run.Precision, &run.Recall, &run.ArtifactPath, &run.TrainedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
