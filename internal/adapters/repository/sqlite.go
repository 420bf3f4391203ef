package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/okian/matchday/internal/domain/types"
	"github.com/okian/matchday/pkg/metrics"
)

const defaultBusyTimeout = 5 * time.Second

const schema = `CREATE TABLE IF NOT EXISTS match_results (
	match_id    TEXT PRIMARY KEY,
	home_team   TEXT NOT NULL,
	away_team   TEXT NOT NULL,
	home_goals  INTEGER NOT NULL,
	away_goals  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	recorded_at INTEGER NOT NULL,
	payload     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS match_results_finished_at ON match_results (finished_at DESC);`

// SQLiteStore persists results in a sqlite file. The full result is kept as
// JSON; the listing columns are denormalized for List.
type SQLiteStore struct {
	db          *sql.DB
	busyTimeout time.Duration
	now         func() time.Time
}

// OpenSQLite opens (and creates if needed) the store at path.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrStorePath
	}
	s := &SQLiteStore{busyTimeout: defaultBusyTimeout, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		filepath.Clean(path), s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	s.db = db
	return s, nil
}

// Record implements Store.
func (s *SQLiteStore) Record(ctx context.Context, r types.Result) error { //nolint:gocritic // hugeParam: Store contract
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.MatchID == "" {
		return ErrEmptyMatchID
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result %s: %w", r.MatchID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO match_results (
		   match_id, home_team, away_team, home_goals, away_goals,
		   finished_at, recorded_at, payload
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MatchID, r.HomeTeam, r.AwayTeam, r.Score.Home, r.Score.Away,
		toMillis(r.FinishedAt), toMillis(s.now()), string(payload),
	)
	if err != nil {
		if isUniqueViolation(err) {
			metrics.RecordHandoffDuplicate()
			return nil
		}
		return fmt.Errorf("insert result %s: %w", r.MatchID, err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, matchID string) (types.Result, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM match_results WHERE match_id = ?`, matchID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Result{}, ErrNotFound
	}
	if err != nil {
		return types.Result{}, fmt.Errorf("get result %s: %w", matchID, err)
	}

	var r types.Result
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return types.Result{}, fmt.Errorf("decode result %s: %w", matchID, err)
	}
	return r, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]types.ResultSummary, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT match_id, home_team, away_team, home_goals, away_goals, finished_at
		   FROM match_results
		  ORDER BY finished_at DESC, rowid DESC
		  LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []types.ResultSummary
	for rows.Next() {
		var (
			sum      types.ResultSummary
			finished int64
		)
		if err := rows.Scan(&sum.MatchID, &sum.HomeTeam, &sum.AwayTeam,
			&sum.Score.Home, &sum.Score.Away, &finished); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		sum.FinishedAt = fromMillis(finished)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return out, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM match_results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
