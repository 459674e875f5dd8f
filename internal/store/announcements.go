// Package store persists announcements and their audit trail in a local
// sqlite database and reads purchase analytics out of the shop warehouse.
//
// The announcement database is owned by this tool: a single serialized
// connection, WAL journal, busy timeout, and additive column migrations on
// open. The warehouse database is owned by the shop backend and is only ever
// read; it goes through a separate driver (see warehouse.go).
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"kitman/internal/logging"
	"kitman/internal/types"
)

// Sentinel errors callers branch on.
var (
	// ErrNotFound is returned when no announcement matches an id or prefix.
	ErrNotFound = errors.New("announcement not found")
	// ErrAmbiguousID is returned when an id prefix matches more than one
	// announcement.
	ErrAmbiguousID = errors.New("announcement id prefix is ambiguous")
)

// Filter narrows List results. Zero value means no filtering.
type Filter struct {
	Category    string // exact category match
	Server      string // only announcements assigned to this server
	EnabledOnly bool   // drop disabled announcements
}

// AnnouncementStore wraps the sqlite database holding announcements and
// their audit log. All access is serialized through a single connection;
// the mutex keeps multi-statement operations atomic from the caller's view.
type AnnouncementStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// tables holds the full current schema for new databases. Databases created
// before a column existed are upgraded in place by migrations.go.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS announcements (
		id TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'general',
		servers TEXT NOT NULL DEFAULT '[]',
		enabled INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		announcement_id TEXT NOT NULL,
		action TEXT NOT NULL,
		detail TEXT DEFAULT '',
		actor TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_announcements_category ON announcements(category)",
	"CREATE INDEX IF NOT EXISTS idx_announcements_enabled ON announcements(enabled)",
	"CREATE INDEX IF NOT EXISTS idx_audit_announcement ON audit_log(announcement_id)",
}

// NewAnnouncementStore opens (or creates) the announcement database at path
// and brings its schema up to date.
func NewAnnouncementStore(path string) (*AnnouncementStore, error) {
	log := logging.Get(logging.CategoryStore)
	log.Infof("Opening announcement store: %s", path)

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open announcement database: %w", err)
	}

	// One writer, one connection. sqlite serializes writers anyway; a single
	// connection avoids SQLITE_BUSY churn between our own goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.Debugf("Pragma failed (continuing): %s: %v", pragma, err)
		}
	}

	s := &AnnouncementStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize announcement database: %w", err)
	}

	log.Infof("Announcement store ready: %s", path)
	return s, nil
}

// initialize creates base tables, applies migrations for databases created
// by older builds, and ensures indexes. Index failures are not fatal.
func (s *AnnouncementStore) initialize() error {
	timer := logging.StartTimer(logging.CategoryStore, "initialize")
	defer timer.Stop()

	for _, ddl := range tables {
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	if err := RunMigrations(s.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log := logging.Get(logging.CategoryStore)
	for _, idx := range indexes {
		if _, err := s.db.Exec(idx); err != nil {
			log.Warnf("Failed to create index: %v", err)
		}
	}
	return nil
}

// Create inserts a new announcement. The caller owns the ID (normally from
// types.NewAnnouncement); inserting an existing ID is an error.
func (s *AnnouncementStore) Create(a types.Announcement) error {
	timer := logging.StartTimer(logging.CategoryStore, "Create")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		return errors.New("announcement id is empty")
	}
	if a.Category == "" {
		a.Category = types.DefaultCategory
	}

	servers, err := marshalServers(a.Servers)
	if err != nil {
		return fmt.Errorf("failed to encode server list: %w", err)
	}

	logging.Get(logging.CategoryStore).Debugf("Creating announcement %s category=%s body_len=%d", a.ShortID(), a.Category, len(a.Body))

	_, err = s.db.Exec(
		`INSERT INTO announcements (id, body, category, servers, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Body, a.Category, servers, a.Enabled, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Errorf("Failed to create announcement %s: %v", a.ShortID(), err)
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

// Get returns one announcement by full id. Returns ErrNotFound when the id
// does not exist.
func (s *AnnouncementStore) Get(id string) (types.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, body, category, servers, enabled, created_at, updated_at
		 FROM announcements WHERE id = ?`, id,
	)
	a, err := scanAnnouncement(row)
	if err == sql.ErrNoRows {
		return types.Announcement{}, ErrNotFound
	}
	if err != nil {
		return types.Announcement{}, fmt.Errorf("failed to load announcement: %w", err)
	}
	return a, nil
}

// List returns announcements matching the filter, newest first.
func (s *AnnouncementStore) List(f Filter) ([]types.Announcement, error) {
	timer := logging.StartTimer(logging.CategoryStore, "List")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, body, category, servers, enabled, created_at, updated_at FROM announcements`
	var conds []string
	var args []interface{}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.EnabledOnly {
		conds = append(conds, "enabled = 1")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		logging.Get(logging.CategoryStore).Errorf("Failed to list announcements: %v", err)
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var out []types.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			continue
		}
		// Server assignment lives in a JSON column; filter in Go rather than
		// depending on the json1 extension being compiled in.
		if f.Server != "" && !a.AssignedTo(f.Server) {
			continue
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("error iterating announcements: %w", err)
	}

	logging.Get(logging.CategoryStore).Debugf("Listed %d announcements (category=%q server=%q enabledOnly=%v)",
		len(out), f.Category, f.Server, f.EnabledOnly)
	return out, nil
}

// Update replaces the stored body, category, server list, and enabled flag
// for a.ID. UpdatedAt is bumped here so callers cannot forget it. Returns
// ErrNotFound when the id does not exist.
func (s *AnnouncementStore) Update(a types.Announcement) error {
	timer := logging.StartTimer(logging.CategoryStore, "Update")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Category == "" {
		a.Category = types.DefaultCategory
	}
	servers, err := marshalServers(a.Servers)
	if err != nil {
		return fmt.Errorf("failed to encode server list: %w", err)
	}

	res, err := s.db.Exec(
		`UPDATE announcements SET body = ?, category = ?, servers = ?, enabled = ?, updated_at = ?
		 WHERE id = ?`,
		a.Body, a.Category, servers, a.Enabled, time.Now().UTC(), a.ID,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Errorf("Failed to update announcement %s: %v", a.ShortID(), err)
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	logging.Get(logging.CategoryStore).Debugf("Updated announcement %s", a.ShortID())
	return nil
}

// Delete removes an announcement. Its audit rows are kept; the trail should
// survive the thing it describes.
func (s *AnnouncementStore) Delete(id string) error {
	timer := logging.StartTimer(logging.CategoryStore, "Delete")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM announcements WHERE id = ?", id)
	if err != nil {
		logging.Get(logging.CategoryStore).Errorf("Failed to delete announcement %s: %v", id, err)
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	logging.Get(logging.CategoryStore).Infof("Deleted announcement %s", id)
	return nil
}

// SetEnabled flips the enabled flag without touching the body.
func (s *AnnouncementStore) SetEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		"UPDATE announcements SET enabled = ?, updated_at = ? WHERE id = ?",
		enabled, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set enabled flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	logging.Get(logging.CategoryStore).Debugf("Announcement %s enabled=%v", id, enabled)
	return nil
}

// Assign replaces the server assignment list. An empty or nil list assigns
// the announcement to every server.
func (s *AnnouncementStore) Assign(id string, servers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := marshalServers(servers)
	if err != nil {
		return fmt.Errorf("failed to encode server list: %w", err)
	}

	res, err := s.db.Exec(
		"UPDATE announcements SET servers = ?, updated_at = ? WHERE id = ?",
		payload, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to assign servers: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	logging.Get(logging.CategoryStore).Debugf("Announcement %s assigned to %d servers", id, len(servers))
	return nil
}

// ResolveID expands an id prefix (as printed by ShortID) to the full id.
// Exact ids resolve to themselves. Returns ErrNotFound when nothing matches
// and ErrAmbiguousID when more than one announcement shares the prefix.
func (s *AnnouncementStore) ResolveID(prefix string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if prefix == "" {
		return "", ErrNotFound
	}

	var id string
	err := s.db.QueryRow("SELECT id FROM announcements WHERE id = ?", prefix).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to resolve announcement id: %w", err)
	}

	// uuids are hex and dashes, so the prefix carries no LIKE wildcards.
	rows, err := s.db.Query("SELECT id FROM announcements WHERE id LIKE ? LIMIT 2", prefix+"%")
	if err != nil {
		return "", fmt.Errorf("failed to resolve announcement id: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			continue
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to resolve announcement id: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return "", ErrAmbiguousID
	}
}

// Stats returns row counts per table for diagnostics. Tables that cannot be
// counted are skipped rather than failing the whole call.
func (s *AnnouncementStore) Stats() (map[string]int64, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Stats")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int64)
	counts := []struct {
		name  string
		query string
	}{
		{"announcements", "SELECT COUNT(*) FROM announcements"},
		{"enabled", "SELECT COUNT(*) FROM announcements WHERE enabled = 1"},
		{"audit_log", "SELECT COUNT(*) FROM audit_log"},
	}
	for _, c := range counts {
		var n int64
		if err := s.db.QueryRow(c.query).Scan(&n); err != nil {
			logging.Get(logging.CategoryStore).Debugf("Count %s failed: %v", c.name, err)
			continue
		}
		stats[c.name] = n
	}
	return stats, nil
}

// Path returns the database file path the store was opened with.
func (s *AnnouncementStore) Path() string {
	return s.dbPath
}

// Close closes the underlying database.
func (s *AnnouncementStore) Close() error {
	logging.Get(logging.CategoryStore).Infof("Closing announcement store: %s", s.dbPath)
	return s.db.Close()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAnnouncement(r rowScanner) (types.Announcement, error) {
	var a types.Announcement
	var servers string
	if err := r.Scan(&a.ID, &a.Body, &a.Category, &servers, &a.Enabled, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return types.Announcement{}, err
	}
	if servers != "" && servers != "[]" && servers != "null" {
		if err := json.Unmarshal([]byte(servers), &a.Servers); err != nil {
			logging.Get(logging.CategoryStore).Warnf("Malformed server list for %s: %v", a.ShortID(), err)
			a.Servers = nil
		}
	}
	return a, nil
}

// marshalServers encodes the assignment list as a JSON array. nil and empty
// both become "[]" so the column is always valid JSON.
func marshalServers(servers []string) (string, error) {
	if len(servers) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(servers)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
