// Package types provides shared type definitions used across kitman packages.
// This package exists to break import cycles between store, preview, and the
// console surfaces. Types here are plain data with no behavior beyond small
// accessors; parsing and rendering semantics live in internal/markup.
package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ANNOUNCEMENTS
// =============================================================================

// DefaultCategory is assigned when an announcement is created without one.
const DefaultCategory = "general"

// Announcement is one stored announcement. Body holds the raw markup string
// exactly as the operator typed it; that string is the canonical
// representation sent to game servers and is never rewritten, re-serialized,
// or normalized by this tool. Parsing happens on render only.
type Announcement struct {
	ID        string    `json:"id"`         // uuid
	Body      string    `json:"body"`       // raw markup, canonical
	Category  string    `json:"category"`   // free-form grouping, e.g. "event"
	Servers   []string  `json:"servers"`    // server identifiers this plays on; empty = all
	Enabled   bool      `json:"enabled"`    // disabled announcements are kept but never served
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC, bumped on every mutation
}

// NewAnnouncement builds an enabled announcement with a fresh uuid and UTC
// timestamps. An empty category falls back to DefaultCategory.
func NewAnnouncement(body, category string, servers []string) Announcement {
	if category == "" {
		category = DefaultCategory
	}
	now := time.Now().UTC()
	return Announcement{
		ID:        uuid.NewString(),
		Body:      body,
		Category:  category,
		Servers:   servers,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ShortID returns the first uuid group for compact display in lists.
func (a Announcement) ShortID() string {
	if len(a.ID) <= 8 {
		return a.ID
	}
	return a.ID[:8]
}

// AssignedTo reports whether the announcement plays on the given server. An
// empty assignment list means every server.
func (a Announcement) AssignedTo(server string) bool {
	if len(a.Servers) == 0 {
		return true
	}
	for _, s := range a.Servers {
		if strings.EqualFold(s, server) {
			return true
		}
	}
	return false
}

// =============================================================================
// AUDIT TRAIL
// =============================================================================

// Audit actions recorded against announcements.
const (
	AuditCreate  = "create"
	AuditUpdate  = "update"
	AuditDelete  = "delete"
	AuditEnable  = "enable"
	AuditDisable = "disable"
	AuditAssign  = "assign"
)

// AuditEntry is one append-only audit row. Entries are written by the
// console when it mutates an announcement and are never updated or deleted.
type AuditEntry struct {
	ID             int64     `json:"id"`
	AnnouncementID string    `json:"announcement_id"`
	Action         string    `json:"action"`
	Detail         string    `json:"detail"` // human-readable summary of the change
	Actor          string    `json:"actor"`  // OS username of the operator
	CreatedAt      time.Time `json:"created_at"`
}

// =============================================================================
// PURCHASE ANALYTICS
// =============================================================================

// PurchaseStat aggregates warehouse purchases for one kit over a queried
// day range. Rows are read-only; the warehouse is written by the shop
// backend.
type PurchaseStat struct {
	Kit       string  `json:"kit"`
	Purchases int64   `json:"purchases"`
	Revenue   float64 `json:"revenue"`
	Day       string  `json:"day"` // most recent YYYY-MM-DD bucket with a sale
}

// StatsSummary totals warehouse purchases over a queried day range.
type StatsSummary struct {
	Purchases int64   `json:"purchases"`
	Revenue   float64 `json:"revenue"`
	Kits      int64   `json:"kits"`      // distinct kits purchased
	FirstDay  string  `json:"first_day"` // earliest bucket in range, empty when no rows
	LastDay   string  `json:"last_day"`
}
