package credential

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for the keyring.
type Store struct {
	sqlDB *sql.DB
	clock func() time.Time
}

// Open opens the keyring database under dir, creating it if needed.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dsn := filepath.Join(dir, "keyring.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open keyring db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping keyring db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, clock: time.Now}
	if err := store.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate keyring: %w", err)
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
	CREATE TABLE IF NOT EXISTS keyring (
		slot         INTEGER PRIMARY KEY CHECK (slot = 1),
		access_token TEXT NOT NULL,
		username     TEXT NOT NULL DEFAULT '',
		saved_at     INTEGER NOT NULL
	);`
	if _, err := s.sqlDB.Exec(schema); err != nil {
		return fmt.Errorf("create keyring table: %w", err)
	}
	return nil
}

// Put stores the credential, replacing any previous one.
func (s *Store) Put(cred Credential) error {
	if strings.TrimSpace(cred.AccessToken) == "" {
		return fmt.Errorf("access token is required")
	}
	savedAt := cred.SavedAt
	if savedAt.IsZero() {
		savedAt = s.clock()
	}
	_, err := s.sqlDB.Exec(
		`INSERT INTO keyring (slot, access_token, username, saved_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT (slot) DO UPDATE SET
		   access_token = excluded.access_token,
		   username = excluded.username,
		   saved_at = excluded.saved_at`,
		cred.AccessToken, cred.Username, savedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

// Get returns the stored credential. A stored token whose exp claim has
// passed is reported as absent.
func (s *Store) Get() (Credential, bool, error) {
	var (
		cred    Credential
		savedAt int64
	)
	row := s.sqlDB.QueryRow(`SELECT access_token, username, saved_at FROM keyring WHERE slot = 1`)
	if err := row.Scan(&cred.AccessToken, &cred.Username, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Credential{}, false, nil
		}
		return Credential{}, false, fmt.Errorf("read credential: %w", err)
	}
	cred.SavedAt = time.UnixMilli(savedAt).UTC()

	if expired(cred.AccessToken, s.clock()) {
		return Credential{}, false, nil
	}
	return cred, true, nil
}

// Clear removes the stored credential.
func (s *Store) Clear() error {
	if _, err := s.sqlDB.Exec(`DELETE FROM keyring WHERE slot = 1`); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
