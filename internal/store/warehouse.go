package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"kitman/internal/logging"
	"kitman/internal/types"
)

// ErrWarehouseMissing is returned when the warehouse database file does not
// exist. The warehouse is written by the shop backend; kitman never creates
// it, so a missing file is an answerable condition, not a crash.
var ErrWarehouseMissing = errors.New("warehouse database not found")

// Warehouse reads purchase analytics from the shop backend's database.
// All queries are read-only; the file is owned by another process. It uses
// the pure-Go driver so analytics keep working on hosts where the console
// binary was built without cgo.
type Warehouse struct {
	db   *sql.DB
	path string
}

// NewWarehouse opens the warehouse database at path for reading. Returns
// ErrWarehouseMissing when the file does not exist.
func NewWarehouse(path string) (*Warehouse, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrWarehouseMissing, path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse database: %w", err)
	}

	logging.Get(logging.CategoryStore).Infof("Opened warehouse: %s", path)
	return &Warehouse{db: db, path: path}, nil
}

// TopKits returns per-kit purchase aggregates over the last days days,
// ordered by purchase count then revenue. Day is the most recent day bucket
// the kit sold in. Non-positive days defaults to 30, non-positive limit
// to 10.
func (w *Warehouse) TopKits(days, limit int) ([]types.PurchaseStat, error) {
	timer := logging.StartTimer(logging.CategoryStore, "TopKits")
	defer timer.Stop()

	if days <= 0 {
		days = 30
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := w.db.Query(
		`SELECT kit, COUNT(*) AS purchases, COALESCE(SUM(price), 0) AS revenue,
		        MAX(date(purchased_at)) AS day
		 FROM purchases
		 WHERE date(purchased_at) >= date('now', ?)
		 GROUP BY kit
		 ORDER BY purchases DESC, revenue DESC
		 LIMIT ?`,
		fmt.Sprintf("-%d days", days), limit,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Errorf("Failed to query top kits: %v", err)
		return nil, fmt.Errorf("failed to query top kits: %w", err)
	}
	defer rows.Close()

	var out []types.PurchaseStat
	for rows.Next() {
		var p types.PurchaseStat
		if err := rows.Scan(&p.Kit, &p.Purchases, &p.Revenue, &p.Day); err != nil {
			continue
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("error iterating purchases: %w", err)
	}

	logging.Get(logging.CategoryStore).Debugf("Top kits: %d rows over %d days", len(out), days)
	return out, nil
}

// Summary totals purchases over the last days days. FirstDay and LastDay are
// empty when the range holds no purchases. Non-positive days defaults to 30.
func (w *Warehouse) Summary(days int) (types.StatsSummary, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Summary")
	defer timer.Stop()

	if days <= 0 {
		days = 30
	}

	var sum types.StatsSummary
	err := w.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(price), 0), COUNT(DISTINCT kit),
		        COALESCE(MIN(date(purchased_at)), ''), COALESCE(MAX(date(purchased_at)), '')
		 FROM purchases
		 WHERE date(purchased_at) >= date('now', ?)`,
		fmt.Sprintf("-%d days", days),
	).Scan(&sum.Purchases, &sum.Revenue, &sum.Kits, &sum.FirstDay, &sum.LastDay)
	if err != nil {
		logging.Get(logging.CategoryStore).Errorf("Failed to summarize purchases: %v", err)
		return types.StatsSummary{}, fmt.Errorf("failed to summarize purchases: %w", err)
	}

	return sum, nil
}

// Path returns the warehouse file path.
func (w *Warehouse) Path() string {
	return w.path
}

// Close closes the warehouse database.
func (w *Warehouse) Close() error {
	return w.db.Close()
}
