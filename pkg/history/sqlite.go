package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists observations to a local SQLite database so the
// log survives restarts.
type SQLiteStore struct {
	db *sql.DB
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS observations (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id    TEXT NOT NULL,
	provider    TEXT NOT NULL,
	model       TEXT NOT NULL,
	status      TEXT NOT NULL,
	latency_ms  INTEGER NOT NULL,
	detail      TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL,
	observed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_observations_entry ON observations(entry_id, observed_at);
`

// NewSQLiteStore opens (or creates) the database at path. WAL mode
// keeps writers from blocking the occasional reader; a single
// connection avoids SQLITE_BUSY with the modernc driver.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Record(ctx context.Context, obs Observation) error {
	observedAt := obs.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO observations (entry_id, provider, model, status, latency_ms, detail, source, observed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		obs.EntryID, obs.Provider, obs.Model, obs.Status, obs.LatencyMs, obs.Detail, string(obs.Source), observedAt)
	if err != nil {
		return fmt.Errorf("record observation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Observation, error) {
	if limit <= 0 {
		limit = DefaultMaxEntries
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_id, provider, model, status, latency_ms, detail, source, observed_at
		 FROM observations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var out []Observation
	for rows.Next() {
		var obs Observation
		var source string
		if err := rows.Scan(&obs.EntryID, &obs.Provider, &obs.Model, &obs.Status,
			&obs.LatencyMs, &obs.Detail, &source, &obs.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		obs.Source = Source(source)
		out = append(out, obs)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
