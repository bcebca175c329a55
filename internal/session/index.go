// index.go maintains a SQLite catalog of capture sessions so past sessions
// can be listed without walking every session directory.
package session

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Index is the SQLite-backed session catalog.
type Index struct {
	db *sql.DB
}

// Entry is one catalog row.
type Entry struct {
	ID        string
	Dir       string
	Engine    string
	Language  string
	ModelPath string
	Platform  string
	StartedAt time.Time
	EndedAt   *time.Time
}

// OpenIndex opens (or creates) the catalog database at dbPath.
func OpenIndex(dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session index: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		dir TEXT NOT NULL,
		engine TEXT NOT NULL,
		language TEXT,
		model_path TEXT,
		platform TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create session index schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Record inserts a catalog row for a newly started session.
func (ix *Index) Record(meta Meta, dir string) error {
	_, err := ix.db.Exec(
		`INSERT OR REPLACE INTO sessions (id, dir, engine, language, model_path, platform, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		meta.ID, dir, meta.Engine, meta.Language, meta.ModelPath, meta.Platform, meta.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Finish stamps the catalog row when a session ends.
func (ix *Index) Finish(id string, endedAt time.Time) error {
	_, err := ix.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, endedAt, id)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

// List returns the most recently started sessions, newest first.
func (ix *Index) List(limit int) ([]Entry, error) {
	rows, err := ix.db.Query(
		`SELECT id, dir, engine, COALESCE(language, ''), COALESCE(model_path, ''), platform, started_at, ended_at
		 FROM sessions
		 ORDER BY started_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ended sql.NullTime
		if err := rows.Scan(&e.ID, &e.Dir, &e.Engine, &e.Language, &e.ModelPath, &e.Platform, &e.StartedAt, &ended); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if ended.Valid {
			t := ended.Time
			e.EndedAt = &t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
