package store

import (
	"database/sql"
	"fmt"

	"kitman/internal/logging"
)

// Migration defines one additive schema migration.
type Migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations lists columns added after the first release. They handle
// databases where the tables exist but were created before the column did.
// The first kitman build stored only id/body/timestamps; grouping, server
// assignment, the enabled flag, and the audit actor all arrived later.
var pendingMigrations = []Migration{
	{"announcements", "category", "TEXT NOT NULL DEFAULT 'general'"},
	{"announcements", "servers", "TEXT NOT NULL DEFAULT '[]'"},
	{"announcements", "enabled", "INTEGER NOT NULL DEFAULT 1"},
	{"audit_log", "actor", "TEXT DEFAULT ''"},
}

// RunMigrations applies schema migrations for existing databases.
func RunMigrations(db *sql.DB) error {
	timer := logging.StartTimer(logging.CategoryStore, "RunMigrations")
	defer timer.Stop()

	log := logging.Get(logging.CategoryStore)
	log.Debugf("Running schema migrations (%d pending)", len(pendingMigrations))

	appliedCount := 0
	skippedCount := 0

	for _, m := range pendingMigrations {
		// If the table doesn't exist in this DB, skip quietly.
		if !tableExists(db, m.Table) {
			skippedCount++
			continue
		}

		if columnExists(db, m.Table, m.Column) {
			skippedCount++
			continue
		}

		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		log.Debugf("Executing migration: %s", query)

		if _, err := db.Exec(query); err != nil {
			// Don't fail on migration errors - the column may already exist
			// in a different form.
			log.Warnf("Migration failed (may already exist): %s.%s: %v", m.Table, m.Column, err)
			skippedCount++
			continue
		}

		log.Infof("Migration applied: added %s.%s", m.Table, m.Column)
		appliedCount++
	}

	log.Debugf("Schema migrations complete: applied=%d, skipped=%d", appliedCount, skippedCount)
	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info.
func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

// tableExists checks if a table exists in the database.
func tableExists(db *sql.DB, table string) bool {
	var count int
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?"
	if err := db.QueryRow(query, table).Scan(&count); err != nil {
		return false
	}
	return count > 0
}
