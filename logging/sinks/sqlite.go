package sinks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"snake-arena/server/logging"
)

const defaultQueryLimit = 100

// Index stores events in SQLite so recent history can be queried over HTTP.
type Index struct {
	db     *sql.DB
	insert *sql.Stmt
	once   sync.Once
}

// EventQuery filters Index.Recent. Zero fields match everything.
type EventQuery struct {
	Type   string
	Actor  string
	Limit  int
	Before int64
}

// IndexedRecord is a stored event plus its row id.
type IndexedRecord struct {
	Seq int64 `json:"seq"`
	Record
}

// OpenIndex opens (creating if needed) the event database at cfg.Path.
func OpenIndex(cfg logging.IndexConfig) (*Index, error) {
	path := cfg.Path
	if path == "" {
		return nil, errors.New("sinks: empty index path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	insert, err := db.Prepare(`INSERT INTO events(tick,time,type,severity,category,actor_kind,actor_id,raw_json) VALUES(?,?,?,?,?,?,?,?)`)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db, insert: insert}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			tick INTEGER NOT NULL,
			time TEXT NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			category TEXT NOT NULL,
			actor_kind TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type_seq ON events(type, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_events_actor_seq ON events(actor_id, seq);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Write satisfies logging.Sink. The router calls it from a single worker.
func (s *Index) Write(event logging.Event) error {
	rec := NewRecord(event)
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.insert.Exec(rec.Tick, rec.Time, rec.Type, rec.Severity, rec.Category, string(rec.Actor.Kind), rec.Actor.ID, string(raw))
	return err
}

// Recent returns matching events, newest first.
func (s *Index) Recent(ctx context.Context, q EventQuery) ([]IndexedRecord, error) {
	limit := q.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultQueryLimit
	}
	var (
		where []string
		args  []any
	)
	if q.Type != "" {
		where = append(where, "type = ?")
		args = append(args, q.Type)
	}
	if q.Actor != "" {
		where = append(where, "actor_id = ?")
		args = append(args, q.Actor)
	}
	if q.Before > 0 {
		where = append(where, "seq < ?")
		args = append(args, q.Before)
	}
	query := "SELECT seq, raw_json FROM events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]IndexedRecord, 0, limit)
	for rows.Next() {
		var (
			seq int64
			raw string
		)
		if err := rows.Scan(&seq, &raw); err != nil {
			return nil, err
		}
		rec := IndexedRecord{Seq: seq}
		if err := json.Unmarshal([]byte(raw), &rec.Record); err != nil {
			return nil, fmt.Errorf("sinks: decode event %d: %w", seq, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count reports the number of stored events.
func (s *Index) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n)
	return n, err
}

// Close releases the database.
func (s *Index) Close(context.Context) error {
	var err error
	s.once.Do(func() {
		if s.insert != nil {
			_ = s.insert.Close()
		}
		err = s.db.Close()
	})
	return err
}
