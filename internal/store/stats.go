package store

import (
	"context"
	"os"
)

// Stats holds learning-log statistics.
type Stats struct {
	DBPath      string        `json:"db_path"`
	DBSizeBytes int64         `json:"db_size_bytes"`
	TotalLogs   int           `json:"total_logs"`
	Confirmed   int           `json:"confirmed"`
	Rejected    int           `json:"rejected"`
	Engines     []EngineStats `json:"engines"`
}

// EngineStats holds per-engine feedback counts.
type EngineStats struct {
	Engine    string `json:"engine"`
	Count     int    `json:"count"`
	Confirmed int    `json:"confirmed"`
}

// Stats returns learning-log statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(corrected), 0) FROM learning_logs`).Scan(&st.TotalLogs, &st.Confirmed)
	if err != nil {
		return st, err
	}
	st.Rejected = st.TotalLogs - st.Confirmed

	rows, err := s.db.QueryContext(ctx, `
		SELECT system_used, COUNT(*) AS cnt, COALESCE(SUM(corrected), 0)
		FROM learning_logs
		GROUP BY system_used ORDER BY cnt DESC, system_used`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var es EngineStats
		if err := rows.Scan(&es.Engine, &es.Count, &es.Confirmed); err != nil {
			return st, err
		}
		st.Engines = append(st.Engines, es)
	}

	return st, rows.Err()
}
