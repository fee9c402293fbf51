package store

import (
	"context"

	"github.com/rcliao/expert-dx/internal/model"
)

// ExportAll returns every record oldest first, optionally filtered by engine.
func (s *SQLiteStore) ExportAll(ctx context.Context, systemUsed string) ([]model.LearningLog, error) {
	query := `SELECT id, timestamp, system_used, inputs, diagnosis, user_feedback, corrected FROM learning_logs`
	var args []interface{}
	if systemUsed != "" {
		query += ` WHERE system_used = ?`
		args = append(args, systemUsed)
	}
	query += ` ORDER BY id`

	return s.query(ctx, query, args...)
}
