package ml

// Sample is one row of patient measurements, the input to both the
// training and the prediction paths.
type Sample struct {
	Pregnancies   int
	Glucose       float64
	BloodPressure float64
	BMI           float64
	Age           int
}

// TargetColumn is the label column in the source dataset.
const TargetColumn = "Outcome"

// FeatureNames returns the canonical feature order. Trainer and the
// inference handlers both build vectors through this list; it is the
// single definition of the ordering and must never be duplicated.
func FeatureNames() []string {
	return []string{
		"Pregnancies",
		"Glucose",
		"BloodPressure",
		"BMI",
		"Age",
	}
}

// FeatureVector flattens a Sample into the canonical order.
func FeatureVector(s Sample) []float64 {
	return []float64{
		float64(s.Pregnancies),
		s.Glucose,
		s.BloodPressure,
		s.BMI,
		float64(s.Age),
	}
}
