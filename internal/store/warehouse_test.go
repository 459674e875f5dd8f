package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type purchaseRow struct {
	kit    string
	price  float64
	server string
	at     time.Time
}

// seedWarehouse builds a shop-backend style purchases table. kitman only
// ever reads this file, so tests create it with the raw driver.
func seedWarehouse(t *testing.T, rows []purchaseRow) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "warehouse.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE purchases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kit TEXT NOT NULL,
		price REAL NOT NULL,
		server TEXT DEFAULT '',
		purchased_at TEXT NOT NULL
	)`)
	require.NoError(t, err)

	for _, r := range rows {
		_, err = db.Exec(
			"INSERT INTO purchases (kit, price, server, purchased_at) VALUES (?, ?, ?, ?)",
			r.kit, r.price, r.server, r.at.UTC().Format("2006-01-02 15:04:05"),
		)
		require.NoError(t, err)
	}
	return path
}

func TestNewWarehouse_Missing(t *testing.T) {
	_, err := NewWarehouse(filepath.Join(t.TempDir(), "nope.db"))
	require.ErrorIs(t, err, ErrWarehouseMissing)
}

func TestWarehouse_TopKits(t *testing.T) {
	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)
	old := now.Add(-40 * 24 * time.Hour)

	path := seedWarehouse(t, []purchaseRow{
		{"vip", 9.99, "jb1", now},
		{"vip", 9.99, "ttt", yesterday},
		{"starter", 4.99, "jb1", yesterday},
		{"vip", 9.99, "jb1", old}, // outside the 30 day window
	})

	w, err := NewWarehouse(path)
	require.NoError(t, err)
	defer w.Close()

	got, err := w.TopKits(30, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "vip", got[0].Kit)
	assert.Equal(t, int64(2), got[0].Purchases)
	assert.InDelta(t, 19.98, got[0].Revenue, 0.001)
	assert.Equal(t, now.Format("2006-01-02"), got[0].Day)

	assert.Equal(t, "starter", got[1].Kit)
	assert.Equal(t, int64(1), got[1].Purchases)
	assert.InDelta(t, 4.99, got[1].Revenue, 0.001)

	t.Run("limit", func(t *testing.T) {
		top, err := w.TopKits(30, 1)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, "vip", top[0].Kit)
	})

	t.Run("defaults on non-positive args", func(t *testing.T) {
		top, err := w.TopKits(0, 0)
		require.NoError(t, err)
		assert.Len(t, top, 2)
	})

	t.Run("wider window includes old purchases", func(t *testing.T) {
		top, err := w.TopKits(365, 10)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, int64(3), top[0].Purchases)
	})
}

func TestWarehouse_Summary(t *testing.T) {
	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)
	old := now.Add(-40 * 24 * time.Hour)

	path := seedWarehouse(t, []purchaseRow{
		{"vip", 9.99, "jb1", now},
		{"vip", 9.99, "ttt", yesterday},
		{"starter", 4.99, "jb1", yesterday},
		{"vip", 9.99, "jb1", old},
	})

	w, err := NewWarehouse(path)
	require.NoError(t, err)
	defer w.Close()

	sum, err := w.Summary(30)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.Purchases)
	assert.InDelta(t, 24.97, sum.Revenue, 0.001)
	assert.Equal(t, int64(2), sum.Kits)
	assert.Equal(t, yesterday.Format("2006-01-02"), sum.FirstDay)
	assert.Equal(t, now.Format("2006-01-02"), sum.LastDay)

	// Widening the window picks up the old purchase.
	sum, err = w.Summary(365)
	require.NoError(t, err)
	assert.Equal(t, int64(4), sum.Purchases)
}

func TestWarehouse_Summary_Empty(t *testing.T) {
	path := seedWarehouse(t, nil)

	w, err := NewWarehouse(path)
	require.NoError(t, err)
	defer w.Close()

	sum, err := w.Summary(30)
	require.NoError(t, err)
	assert.Zero(t, sum.Purchases)
	assert.Zero(t, sum.Revenue)
	assert.Zero(t, sum.Kits)
	assert.Empty(t, sum.FirstDay)
	assert.Empty(t, sum.LastDay)
}
