package ml

// Classifier is a fitted binary model. Predict must not mutate any
// shared state: a loaded classifier is shared across concurrent
// requests without locking.
type Classifier interface {
	Predict(features []float64) (int, float64, error)
}
