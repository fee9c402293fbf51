// Package store provides the learning-log sink interface and SQLite implementation.
package store

import (
	"context"

	"github.com/rcliao/expert-dx/internal/model"
)

// AppendParams holds the fields of a new learning-log record.
type AppendParams struct {
	SystemUsed   string
	Inputs       string
	Diagnosis    string
	UserFeedback string
	Corrected    bool
}

// ListParams holds parameters for listing records.
type ListParams struct {
	SystemUsed string
	Limit      int
}

// Store defines the learning-log sink. Records are append-only.
type Store interface {
	// Append stores a feedback record and returns it with ID and timestamp set.
	Append(ctx context.Context, p AppendParams) (*model.LearningLog, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// List returns records newest first.
	List(ctx context.Context, p ListParams) ([]model.LearningLog, error)

	// Search matches diagnosis and feedback text.
	Search(ctx context.Context, p SearchParams) ([]model.LearningLog, error)

	// ExportAll returns records oldest first.
	ExportAll(ctx context.Context, systemUsed string) ([]model.LearningLog, error)

	// Stats summarizes feedback per engine.
	Stats(ctx context.Context, dbPath string) (*Stats, error)

	// Close closes the store.
	Close() error
}
