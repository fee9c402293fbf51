package store

import (
	"context"
	"strings"

	"github.com/rcliao/expert-dx/internal/model"
)

// SearchParams holds parameters for searching feedback records.
type SearchParams struct {
	Query      string
	SystemUsed string
	// Corrected filters on the confirmation flag when non-nil.
	Corrected *bool
	Limit     int
}

// Search finds records whose diagnosis or feedback text matches the query substring.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.LearningLog, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	var where []string
	var args []interface{}

	if p.Query != "" {
		q := "%" + p.Query + "%"
		where = append(where, "(diagnosis LIKE ? OR user_feedback LIKE ?)")
		args = append(args, q, q)
	}
	if p.SystemUsed != "" {
		where = append(where, "system_used = ?")
		args = append(args, p.SystemUsed)
	}
	if p.Corrected != nil {
		where = append(where, "corrected = ?")
		args = append(args, *p.Corrected)
	}

	query := `SELECT id, timestamp, system_used, inputs, diagnosis, user_feedback, corrected FROM learning_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	return s.query(ctx, query, args...)
}
