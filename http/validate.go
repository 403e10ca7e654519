package http

import (
	"encoding/json"
	"math"
	"strings"

	"diapredict/ml"
)

// FieldError is one violated constraint on a predict request.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every violation found in a request, not
// just the first one.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "invalid request: " + strings.Join(names, ", ")
}

// parsePredictRequest decodes and validates a request body into a
// Sample. Each of the five fields is checked independently so the
// response enumerates all violations. The model is never consulted
// here.
func parsePredictRequest(body []byte) (ml.Sample, *ValidationError) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return ml.Sample{}, &ValidationError{Fields: []FieldError{
			{Field: "body", Reason: "must be a JSON object"},
		}}
	}

	var sample ml.Sample
	var violations []FieldError

	sample.Pregnancies, violations = intField(raw, "Pregnancies", false, violations)
	sample.Glucose, violations = floatField(raw, "Glucose", violations)
	sample.BloodPressure, violations = floatField(raw, "BloodPressure", violations)
	sample.BMI, violations = floatField(raw, "BMI", violations)
	sample.Age, violations = intField(raw, "Age", true, violations)

	if len(violations) > 0 {
		return ml.Sample{}, &ValidationError{Fields: violations}
	}
	return sample, nil
}

// Both field decoders go through a pointer so that JSON null is
// caught: unmarshalling null into a plain number is a silent no-op
// that would let a zero value through to the model.
func floatField(raw map[string]json.RawMessage, name string, violations []FieldError) (float64, []FieldError) {
	msg, ok := raw[name]
	if !ok {
		return 0, append(violations, FieldError{Field: name, Reason: "missing"})
	}
	var value *float64
	if err := json.Unmarshal(msg, &value); err != nil || value == nil {
		return 0, append(violations, FieldError{Field: name, Reason: "must be a number"})
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) || *value < 0 {
		return 0, append(violations, FieldError{Field: name, Reason: "must be non-negative"})
	}
	return *value, violations
}

func intField(raw map[string]json.RawMessage, name string, positive bool, violations []FieldError) (int, []FieldError) {
	msg, ok := raw[name]
	if !ok {
		return 0, append(violations, FieldError{Field: name, Reason: "missing"})
	}
	var value *int
	if err := json.Unmarshal(msg, &value); err != nil || value == nil {
		return 0, append(violations, FieldError{Field: name, Reason: "must be an integer"})
	}
	if positive && *value <= 0 {
		return 0, append(violations, FieldError{Field: name, Reason: "must be positive"})
	}
	if !positive && *value < 0 {
		return 0, append(violations, FieldError{Field: name, Reason: "must be non-negative"})
	}
	return *value, violations
}
