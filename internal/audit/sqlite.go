package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteSink mirrors audit entries of one session into a SQLite database so
// they outlive the process.
type SQLiteSink struct {
	db        *sql.DB
	sessionID string
}

// OpenSQLite creates or opens the database at path and returns a sink that
// writes entries under sessionID.
//
// The database is configured with WAL mode and a 5-second busy timeout so
// several server processes can share one file.
func OpenSQLite(path, sessionID string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply audit schema: %w", err)
	}

	return &SQLiteSink{db: db, sessionID: sessionID}, nil
}

// Write inserts e. Re-writing an existing (session, seq) pair is an error.
func (s *SQLiteSink) Write(e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO audit_entries (session_id, seq, created_at, text) VALUES (?, ?, ?, ?)`,
		s.sessionID, e.Seq, e.Time.UnixNano(), e.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry %d: %w", e.Seq, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// openReadOnly opens an existing database without creating it.
func openReadOnly(ctx context.Context, path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}
	return db, nil
}

// ReadEntries returns the stored entries of sessionID in sequence order.
func ReadEntries(ctx context.Context, path, sessionID string) ([]Entry, error) {
	db, err := openReadOnly(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT seq, created_at, text FROM audit_entries WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created int64
		)
		if err := rows.Scan(&e.Seq, &created, &e.Text); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Time = time.Unix(0, created).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Sessions returns the IDs of every session with stored entries, most
// recently active first.
func Sessions(ctx context.Context, path string) ([]string, error) {
	db, err := openReadOnly(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT session_id FROM audit_entries GROUP BY session_id ORDER BY MAX(created_at) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
