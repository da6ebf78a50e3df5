package registry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store, TraceReader and Recorder on a single
// SQLite database (pure Go driver, no CGo).
type SQLiteStore struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	mu       sync.Mutex
	initOnce sync.Once
}

// NewSQLiteStore creates a store backed by the database at dbPath.
// The parent directory is created on Init if missing.
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{dbPath: dbPath, enabled: true}
}

// DefaultStore creates a store at ~/.capsearch/registry.db.
//
// If the home directory cannot be resolved the store is disabled: reads
// return empty results and writes become no-ops (graceful degradation).
func DefaultStore() *SQLiteStore {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: failed to get home directory: %v", err)
		return &SQLiteStore{enabled: false}
	}
	return NewSQLiteStore(filepath.Join(home, ".capsearch", "registry.db"))
}

// Init opens the database and runs migrations. On failure the store is
// disabled and subsequent operations become no-ops.
func (s *SQLiteStore) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			s.enabled = false
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
	})

	return initErr
}

func (s *SQLiteStore) runMigrations() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS capabilities (
			name TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			category TEXT NOT NULL DEFAULT '',
			embedding TEXT,
			usage_count INTEGER NOT NULL DEFAULT 0,
			last_used_at TEXT,
			active INTEGER NOT NULL DEFAULT 1
		)
	`); err != nil {
		return fmt.Errorf("failed to create capabilities table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_capabilities_category
		ON capabilities(category)
	`); err != nil {
		return fmt.Errorf("failed to create category index: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trace_edges (
			a TEXT NOT NULL,
			b TEXT NOT NULL,
			weight INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (a, b)
		)
	`); err != nil {
		return fmt.Errorf("failed to create trace_edges table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS invocations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			capability TEXT NOT NULL,
			session_id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			success INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create invocations table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_invocations_session
		ON invocations(session_id)
	`); err != nil {
		return fmt.Errorf("failed to create session index: %w", err)
	}

	return nil
}

// Upsert creates or replaces a capability record. Usage statistics of an
// existing row are preserved.
func (s *SQLiteStore) Upsert(cap Capability) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tagsJSON, err := json.Marshal(cap.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	var embeddingJSON any
	if len(cap.Embedding) > 0 {
		raw, err := json.Marshal(cap.Embedding)
		if err != nil {
			return fmt.Errorf("failed to encode embedding: %w", err)
		}
		embeddingJSON = string(raw)
	}

	active := 0
	if cap.Active {
		active = 1
	}

	_, err = s.db.Exec(`
		INSERT INTO capabilities (name, description, tags, category, embedding, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			tags = excluded.tags,
			category = excluded.category,
			embedding = COALESCE(excluded.embedding, capabilities.embedding),
			active = excluded.active
	`, cap.Name, cap.Description, string(tagsJSON), cap.Category, embeddingJSON, active)
	if err != nil {
		return fmt.Errorf("failed to upsert capability %q: %w", cap.Name, err)
	}

	return nil
}

// Deactivate hides a capability from new searches.
func (s *SQLiteStore) Deactivate(name string) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`UPDATE capabilities SET active = 0 WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to deactivate %q: %w", name, err)
	}
	return nil
}

// ListActive returns all active capabilities, optionally filtered by
// category. An unknown category yields an empty slice.
func (s *SQLiteStore) ListActive(category string) ([]Capability, error) {
	if !s.enabled || s.db == nil {
		return []Capability{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT name, description, tags, category, embedding, usage_count, last_used_at, active
		FROM capabilities
		WHERE active = 1
	`
	args := []any{}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list capabilities: %w", err)
	}
	defer rows.Close()

	var caps []Capability
	for rows.Next() {
		cap, err := scanCapability(rows)
		if err != nil {
			log.Printf("Warning: failed to scan capability row: %v", err)
			continue
		}
		caps = append(caps, *cap)
	}
	if caps == nil {
		caps = []Capability{}
	}
	return caps, rows.Err()
}

// GetByName returns a capability (active or not), or nil if absent.
func (s *SQLiteStore) GetByName(name string) (*Capability, error) {
	if !s.enabled || s.db == nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT name, description, tags, category, embedding, usage_count, last_used_at, active
		FROM capabilities
		WHERE name = ?
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query capability %q: %w", name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanCapability(rows)
}

// ListCategories enumerates categories of active capabilities.
func (s *SQLiteStore) ListCategories() ([]CategoryCount, error) {
	if !s.enabled || s.db == nil {
		return []CategoryCount{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT category, COUNT(*)
		FROM capabilities
		WHERE active = 1 AND category != ''
		GROUP BY category
		ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			log.Printf("Warning: failed to scan category row: %v", err)
			continue
		}
		counts = append(counts, cc)
	}
	if counts == nil {
		counts = []CategoryCount{}
	}
	return counts, rows.Err()
}

// SaveEmbedding stores a computed embedding vector for a capability.
// The vector is serialized as JSON, matching how it is read back.
func (s *SQLiteStore) SaveEmbedding(name string, vector []float32) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}

	_, err = s.db.Exec(`UPDATE capabilities SET embedding = ? WHERE name = ?`, string(raw), name)
	if err != nil {
		log.Printf("Warning: failed to save embedding for %q: %v", name, err)
	}
	return nil
}

// EdgeWeights returns trace-edge weights incident to name. Edges are
// stored once per unordered pair (a < b), so both columns are checked.
func (s *SQLiteStore) EdgeWeights(name string) (map[string]int64, error) {
	weights := make(map[string]int64)
	if !s.enabled || s.db == nil {
		return weights, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT a, b, weight FROM trace_edges WHERE a = ? OR b = ?
	`, name, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query trace edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a, b string
		var w int64
		if err := rows.Scan(&a, &b, &w); err != nil {
			log.Printf("Warning: failed to scan trace edge: %v", err)
			continue
		}
		if a == name {
			weights[b] = w
		} else {
			weights[a] = w
		}
	}
	return weights, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	return nil
}

// scanCapability reads one capability row from either a *sql.Rows
// positioned on a row.
func scanCapability(rows *sql.Rows) (*Capability, error) {
	var cap Capability
	var tagsJSON string
	var embeddingJSON sql.NullString
	var lastUsed sql.NullString
	var active int

	if err := rows.Scan(
		&cap.Name,
		&cap.Description,
		&tagsJSON,
		&cap.Category,
		&embeddingJSON,
		&cap.UsageCount,
		&lastUsed,
		&active,
	); err != nil {
		return nil, err
	}
	cap.Active = active == 1

	if err := json.Unmarshal([]byte(tagsJSON), &cap.Tags); err != nil {
		log.Printf("Warning: failed to parse tags for %q: %v", cap.Name, err)
	}

	if embeddingJSON.Valid && embeddingJSON.String != "" {
		if err := json.Unmarshal([]byte(embeddingJSON.String), &cap.Embedding); err != nil {
			// An unreadable embedding degrades to lexical-only scoring.
			log.Printf("Warning: failed to parse embedding for %q: %v", cap.Name, err)
			cap.Embedding = nil
		}
	}

	if lastUsed.Valid && lastUsed.String != "" {
		t, err := time.Parse(time.RFC3339, lastUsed.String)
		if err == nil {
			cap.LastUsedAt = &t
		}
	}

	return &cap, nil
}

// sortedPair normalizes an undirected edge to its storage order.
func sortedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
