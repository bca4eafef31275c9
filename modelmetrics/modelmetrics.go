// Package modelmetrics checks the performance metrics JSON stored with predictive models.
package modelmetrics

import (
	"encoding/json"
	"errors"
	"fmt"
)

// RequiredFields must all be present for a metrics document to be valid
var RequiredFields = []string{"precision", "recall", "accuracy", "f1_score"}

// ErrMissingField is wrapped when a required field is absent
var ErrMissingField = errors.New("missing required metric field")

// PerformanceMetrics are a model's evaluation scores as fractions in [0, 1]
type PerformanceMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	Accuracy  float64 `json:"accuracy"`
	F1Score   float64 `json:"f1_score"`
}

// Percentages returns the scores scaled to percent, in RequiredFields order
func (m PerformanceMetrics) Percentages() [4]float64 {
	return [4]float64{m.Precision * 100, m.Recall * 100, m.Accuracy * 100, m.F1Score * 100}
}

// Validate reports whether raw is a JSON object carrying every required field
func Validate(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// Parse decodes raw after checking the required fields are present
func Parse(raw string) (PerformanceMetrics, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return PerformanceMetrics{}, fmt.Errorf("invalid metrics JSON: %w", err)
	}
	if fields == nil {
		return PerformanceMetrics{}, fmt.Errorf("invalid metrics JSON: not an object")
	}
	for _, key := range RequiredFields {
		if _, ok := fields[key]; !ok {
			return PerformanceMetrics{}, fmt.Errorf("%w: %s", ErrMissingField, key)
		}
	}

	var m PerformanceMetrics
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return PerformanceMetrics{}, fmt.Errorf("invalid metric value: %w", err)
	}
	return m, nil
}
