package store

import (
	"database/sql"
	"fmt"
	"time"

	"kitman/internal/logging"
	"kitman/internal/types"
)

// =============================================================================
// AUDIT TRAIL (append-only)
// =============================================================================

// AppendAudit writes one audit row. Rows are never updated or deleted, and
// they outlive the announcement they describe. A zero CreatedAt is filled
// with the current UTC time.
func (s *AnnouncementStore) AppendAudit(e types.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO audit_log (announcement_id, action, detail, actor, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.AnnouncementID, e.Action, e.Detail, e.Actor, e.CreatedAt,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Errorf("Failed to append audit entry (%s %s): %v", e.Action, e.AnnouncementID, err)
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	logging.Get(logging.CategoryStore).Debugf("Audit: %s %s actor=%s", e.Action, e.AnnouncementID, e.Actor)
	return nil
}

// RecentAudit returns the newest audit entries across all announcements,
// newest first. A non-positive limit defaults to 50.
func (s *AnnouncementStore) RecentAudit(limit int) ([]types.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, announcement_id, action, detail, actor, created_at
		 FROM audit_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	return scanAuditRows(rows)
}

// AuditFor returns the audit history of one announcement, newest first.
// A non-positive limit defaults to 20.
func (s *AnnouncementStore) AuditFor(announcementID string, limit int) ([]types.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, announcement_id, action, detail, actor, created_at
		 FROM audit_log WHERE announcement_id = ? ORDER BY id DESC LIMIT ?`,
		announcementID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	return scanAuditRows(rows)
}

func scanAuditRows(rows *sql.Rows) ([]types.AuditEntry, error) {
	var out []types.AuditEntry
	for rows.Next() {
		var e types.AuditEntry
		if err := rows.Scan(&e.ID, &e.AnnouncementID, &e.Action, &e.Detail, &e.Actor, &e.CreatedAt); err != nil {
			continue
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("error iterating audit log: %w", err)
	}
	return out, nil
}
