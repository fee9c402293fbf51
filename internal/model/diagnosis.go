package model

import "fmt"

// Diagnosis is the result every engine returns from a single inference.
type Diagnosis struct {
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Reasoning  []string `json:"reasoning"`
}

// NewDiagnosis copies the trace and clamps confidence to [0,1].
func NewDiagnosis(label string, confidence float64, trace []string) Diagnosis {
	switch {
	case confidence != confidence, confidence < 0:
		confidence = 0
	case confidence > 1:
		confidence = 1
	}
	reasoning := make([]string, len(trace))
	copy(reasoning, trace)
	return Diagnosis{Label: label, Confidence: confidence, Reasoning: reasoning}
}

// ErrorDiagnosis reports an evaluation fault as a zero-confidence result.
// The partial trace collected before the fault is kept.
func ErrorDiagnosis(label string, err error, trace ...string) Diagnosis {
	out := make([]string, 0, len(trace)+1)
	out = append(out, trace...)
	return NewDiagnosis(label, 0, append(out, fmt.Sprintf("Error: %v", err)))
}
