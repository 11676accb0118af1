// Package sqlite provides a single-slot expiring cache for the document
// list, backed by a SQLite file in the docpilot data directory.
//
// The cache exists to make cold starts cheap; it is never a correctness
// requirement. Storage failures therefore degrade to misses and no-ops.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driven"
	"github.com/docpilot-labs/docpilot-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentCache = (*Store)(nil)

// DefaultTTL is how long a cached document list stays fresh.
const DefaultTTL = 5 * time.Minute

// cacheSlot is the fixed key of the single cache row.
const cacheSlot = 1

const schema = `
CREATE TABLE IF NOT EXISTS document_cache (
	slot      INTEGER PRIMARY KEY CHECK (slot = 1),
	payload   TEXT    NOT NULL,
	cached_at INTEGER NOT NULL
);
`

// Store is a SQLite-backed document-list cache.
type Store struct {
	db  *sql.DB
	ttl time.Duration

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewStore creates a cache store at the specified data directory.
// If dataDir is empty, defaults to ~/.docpilot/data/cache.db.
func NewStore(dataDir string, ttl time.Duration) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docpilot", "data")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache table: %w", err)
	}

	return &Store{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Read returns the cached list and true on a fresh hit. Absent, expired
// or unreadable entries are misses; Read never fails.
func (s *Store) Read() ([]domain.Document, bool) {
	var payload string
	var cachedAt int64

	row := s.db.QueryRow(`SELECT payload, cached_at FROM document_cache WHERE slot = ?`, cacheSlot)
	if err := row.Scan(&payload, &cachedAt); err != nil {
		if err != sql.ErrNoRows {
			logger.Debug("cache read failed: %v", err)
		}
		return nil, false
	}

	age := s.now().Sub(time.UnixMilli(cachedAt))
	if age >= s.ttl {
		logger.Debug("cache entry expired (age %s)", age)
		return nil, false
	}

	var docs []domain.Document
	if err := json.Unmarshal([]byte(payload), &docs); err != nil {
		logger.Debug("cache decode failed: %v", err)
		return nil, false
	}
	return docs, true
}

// Write replaces the cached list, stamped with the current time.
// Failures are logged and swallowed.
func (s *Store) Write(docs []domain.Document) {
	payload, err := json.Marshal(docs)
	if err != nil {
		logger.Warn("cache encode failed: %v", err)
		return
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO document_cache (slot, payload, cached_at) VALUES (?, ?, ?)`,
		cacheSlot, string(payload), s.now().UnixMilli(),
	)
	if err != nil {
		logger.Warn("cache write failed: %v", err)
	}
}

// Clear removes the cached entry.
func (s *Store) Clear() {
	if _, err := s.db.Exec(`DELETE FROM document_cache WHERE slot = ?`, cacheSlot); err != nil {
		logger.Warn("cache clear failed: %v", err)
	}
}
