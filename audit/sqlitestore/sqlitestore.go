// Package sqlitestore provides SQLite-based persistence for audit
// records.
package sqlitestore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/craftstudio/craftstudio-mcp/audit"
)

// SQLiteStore implements audit.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite-based store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables if they don't exist.
func (s *SQLiteStore) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS invocations (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    invocation_id TEXT NOT NULL,
    tool_name     TEXT NOT NULL,
    category      TEXT NOT NULL,
    action        TEXT NOT NULL,
    outcome       TEXT NOT NULL,
    duration_ms   INTEGER NOT NULL DEFAULT 0,
    timestamp     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invocations_timestamp ON invocations(timestamp);
CREATE INDEX IF NOT EXISTS idx_invocations_outcome ON invocations(outcome);
`
	_, err := s.db.Exec(schema)
	return err
}

// Add implements audit.Store.
func (s *SQLiteStore) Add(record audit.Record) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO invocations (invocation_id, tool_name, category, action, outcome, duration_ms, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.InvocationID, record.ToolName, record.Category, record.Action, record.Outcome, record.DurationMS, record.Timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get insert id: %w", err)
	}

	return id, nil
}

// Recent implements audit.Store.
func (s *SQLiteStore) Recent(limit int) ([]audit.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT id, invocation_id, tool_name, category, action, outcome, duration_ms, timestamp FROM invocations ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var r audit.Record
		if err := rows.Scan(&r.ID, &r.InvocationID, &r.ToolName, &r.Category, &r.Action, &r.Outcome, &r.DurationMS, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

// Close implements audit.Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
