package model

import "time"

// LearningLog is one human feedback record about a diagnosis.
// Records are append-only and never read back by the engines.
type LearningLog struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	SystemUsed   string    `json:"system_used"`
	Inputs       string    `json:"inputs"`
	Diagnosis    string    `json:"diagnosis"`
	UserFeedback string    `json:"user_feedback"`
	Corrected    bool      `json:"corrected"`
}
