package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/forgelight/quorum/pkg/models"
)

// SQLite is a Store backed by an SQLite database file.
type SQLite struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultDBPath returns the default database location under the
// user's data directory.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "quorum", "quorum.db")
}

// OpenSQLite opens (or creates) the store at the given path, creating
// parent directories as needed. WAL mode is enabled for concurrent
// reads.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLite{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

func (s *SQLite) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS edrr_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			phase TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			payload TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_edrr_items_kind_phase ON edrr_items(kind, phase);
	`)
	if err != nil {
		return fmt.Errorf("migrate store schema: %w", err)
	}
	return nil
}

// StoreWithEDRRPhase persists the payload as JSON.
func (s *SQLite) StoreWithEDRRPhase(ctx context.Context, payload any, kind string, phase models.Phase, metadata map[string]string) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO edrr_items (kind, phase, metadata, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, kind, string(phase), string(metaJSON), string(payloadJSON), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store %s/%s: %w", kind, phase, err)
	}
	return nil
}

// RetrieveWithEDRRPhase returns the most recent item matching the
// key. Metadata matching happens after the kind/phase query since
// metadata is stored as opaque JSON.
func (s *SQLite) RetrieveWithEDRRPhase(ctx context.Context, kind string, phase models.Phase, metadata map[string]string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT metadata, payload FROM edrr_items
		WHERE kind = ? AND phase = ?
		ORDER BY id DESC
	`, kind, string(phase))
	if err != nil {
		return nil, fmt.Errorf("retrieve %s/%s: %w", kind, phase, err)
	}
	defer rows.Close()

	for rows.Next() {
		var metaJSON, payloadJSON string
		if err := rows.Scan(&metaJSON, &payloadJSON); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		var meta map[string]string
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		if !metadataSubset(meta, metadata) {
			continue
		}

		var payload map[string]any
		if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return payload, nil
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return nil, fmt.Errorf("%w: kind=%s phase=%s", ErrNotFound, kind, phase)
}

// ListWithKind returns every matching payload of the kind, newest
// first, regardless of phase.
func (s *SQLite) ListWithKind(ctx context.Context, kind string, metadata map[string]string) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT metadata, payload FROM edrr_items
		WHERE kind = ?
		ORDER BY id DESC
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var metaJSON, payloadJSON string
		if err := rows.Scan(&metaJSON, &payloadJSON); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		var meta map[string]string
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		if !metadataSubset(meta, metadata) {
			continue
		}

		var payload map[string]any
		if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		out = append(out, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}
