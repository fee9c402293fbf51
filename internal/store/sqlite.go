package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/rcliao/expert-dx/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		logger:  logger,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Debug("learning log opened", zap.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS learning_logs (
		id            TEXT PRIMARY KEY,
		timestamp     TEXT NOT NULL,
		system_used   TEXT NOT NULL,
		inputs        TEXT NOT NULL,
		diagnosis     TEXT NOT NULL,
		user_feedback TEXT NOT NULL DEFAULT '',
		corrected     INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_learning_logs_system ON learning_logs(system_used);
	CREATE INDEX IF NOT EXISTS idx_learning_logs_timestamp ON learning_logs(timestamp DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, p AppendParams) (*model.LearningLog, error) {
	if strings.TrimSpace(p.SystemUsed) == "" {
		return nil, fmt.Errorf("system_used is required")
	}
	if strings.TrimSpace(p.Diagnosis) == "" {
		return nil, fmt.Errorf("diagnosis is required")
	}
	if p.Inputs == "" {
		p.Inputs = "{}"
	}
	if !json.Valid([]byte(p.Inputs)) {
		return nil, fmt.Errorf("inputs must be valid JSON")
	}

	now := time.Now().UTC()
	id := s.newID(now)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO learning_logs (id, timestamp, system_used, inputs, diagnosis, user_feedback, corrected)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, now.Format(time.RFC3339Nano), p.SystemUsed, p.Inputs, p.Diagnosis, p.UserFeedback, p.Corrected)
	if err != nil {
		return nil, fmt.Errorf("insert learning log: %w", err)
	}

	s.logger.Info("feedback recorded",
		zap.String("id", id),
		zap.String("system", p.SystemUsed),
		zap.String("diagnosis", p.Diagnosis),
		zap.Bool("corrected", p.Corrected))

	return &model.LearningLog{
		ID:           id,
		Timestamp:    now,
		SystemUsed:   p.SystemUsed,
		Inputs:       p.Inputs,
		Diagnosis:    p.Diagnosis,
		UserFeedback: p.UserFeedback,
		Corrected:    p.Corrected,
	}, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM learning_logs`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.LearningLog, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	var where []string
	var args []interface{}
	if p.SystemUsed != "" {
		where = append(where, "system_used = ?")
		args = append(args, p.SystemUsed)
	}

	query := `SELECT id, timestamp, system_used, inputs, diagnosis, user_feedback, corrected FROM learning_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	return s.query(ctx, query, args...)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]model.LearningLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.LearningLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLog(row scanner) (model.LearningLog, error) {
	var l model.LearningLog
	var ts string
	var corrected int

	err := row.Scan(&l.ID, &ts, &l.SystemUsed, &l.Inputs, &l.Diagnosis, &l.UserFeedback, &corrected)
	if err != nil {
		return l, err
	}

	l.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return l, fmt.Errorf("record %s: parse timestamp: %w", l.ID, err)
	}
	l.Corrected = corrected != 0
	return l, nil
}
