// Package archive persists completed play transcripts locally so they
// survive the backend. One SQLite database under the client's data dir.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/emberveil/storyweave/internal/play"
)

// ErrNotFound indicates a requested transcript is missing.
var ErrNotFound = errors.New("transcript not found")

// Transcript is one archived session.
type Transcript struct {
	SessionID  string
	Title      string
	ArchivedAt time.Time
	Events     []play.Event
}

// Summary is one row of an archive listing.
type Summary struct {
	SessionID  string
	Title      string
	ArchivedAt time.Time
	EventCount int
}

// Store provides SQLite-backed persistence for archived transcripts.
type Store struct {
	sqlDB *sql.DB
	clock func() time.Time
}

// Open opens the archive database under dir, creating it if needed.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dsn := filepath.Join(dir, "archive.db") + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping archive db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, clock: time.Now}
	if err := store.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transcripts (
		session_id  TEXT PRIMARY KEY,
		title       TEXT NOT NULL DEFAULT '',
		archived_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transcript_events (
		session_id TEXT NOT NULL REFERENCES transcripts(session_id) ON DELETE CASCADE,
		idx        INTEGER NOT NULL,
		event_id   TEXT NOT NULL,
		kind       TEXT NOT NULL,
		origin     TEXT NOT NULL,
		text       TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, idx)
	);`
	if _, err := s.sqlDB.Exec(schema); err != nil {
		return fmt.Errorf("create archive tables: %w", err)
	}
	return nil
}

// SaveTranscript stores the transcript, replacing any earlier archive of
// the same session. Implements the play loop's archiver hook.
func (s *Store) SaveTranscript(sessionID, title string, events []play.Event) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	tx, err := s.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM transcripts WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("replace transcript: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO transcripts (session_id, title, archived_at) VALUES (?, ?, ?)`,
		sessionID, title, s.clock().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}
	for i, e := range events {
		if _, err := tx.Exec(
			`INSERT INTO transcript_events (session_id, idx, event_id, kind, origin, text, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sessionID, i, e.ID, string(e.Kind), string(e.Origin), e.Text, e.CreatedAt.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("insert transcript event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive transaction: %w", err)
	}
	return nil
}

// List returns archived transcripts, most recent first.
func (s *Store) List() ([]Summary, error) {
	rows, err := s.sqlDB.Query(`
		SELECT t.session_id, t.title, t.archived_at, COUNT(e.session_id)
		FROM transcripts t
		LEFT JOIN transcript_events e ON e.session_id = t.session_id
		GROUP BY t.session_id
		ORDER BY t.archived_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum        Summary
			archivedAt int64
		)
		if err := rows.Scan(&sum.SessionID, &sum.Title, &archivedAt, &sum.EventCount); err != nil {
			return nil, fmt.Errorf("scan transcript row: %w", err)
		}
		sum.ArchivedAt = time.UnixMilli(archivedAt).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Get returns one archived transcript with its events in transcript order.
func (s *Store) Get(sessionID string) (Transcript, error) {
	var (
		t          Transcript
		archivedAt int64
	)
	row := s.sqlDB.QueryRow(`SELECT session_id, title, archived_at FROM transcripts WHERE session_id = ?`, sessionID)
	if err := row.Scan(&t.SessionID, &t.Title, &archivedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transcript{}, ErrNotFound
		}
		return Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	t.ArchivedAt = time.UnixMilli(archivedAt).UTC()

	rows, err := s.sqlDB.Query(`
		SELECT event_id, kind, origin, text, created_at
		FROM transcript_events WHERE session_id = ? ORDER BY idx`, sessionID)
	if err != nil {
		return Transcript{}, fmt.Errorf("read transcript events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e         play.Event
			kind      string
			origin    string
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &kind, &origin, &e.Text, &createdAt); err != nil {
			return Transcript{}, fmt.Errorf("scan event row: %w", err)
		}
		e.Kind = play.Kind(kind)
		e.Origin = play.Origin(origin)
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		t.Events = append(t.Events, e)
	}
	return t, rows.Err()
}
