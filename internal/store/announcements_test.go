package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitman/internal/types"
)

func newTestStore(t *testing.T) *AnnouncementStore {
	t.Helper()
	s, err := NewAnnouncementStore(filepath.Join(t.TempDir(), "kitman.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewAnnouncementStore_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "kitman.db")
	s, err := NewAnnouncementStore(path)
	require.NoError(t, err)
	defer s.Close()

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Contains(t, stats, "announcements")
	assert.Contains(t, stats, "audit_log")
}

func TestAnnouncementStore_CreateGet(t *testing.T) {
	s := newTestStore(t)

	a := types.NewAnnouncement(`<color=red>Grand opening!</color>`, "event", []string{"jb1", "ttt"})
	require.NoError(t, s.Create(a))

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.Body, got.Body)
	assert.Equal(t, "event", got.Category)
	assert.Equal(t, []string{"jb1", "ttt"}, got.Servers)
	assert.True(t, got.Enabled)
	assert.WithinDuration(t, a.CreatedAt, got.CreatedAt, time.Second)
	assert.WithinDuration(t, a.UpdatedAt, got.UpdatedAt, time.Second)
}

func TestAnnouncementStore_Create_DefaultsCategory(t *testing.T) {
	s := newTestStore(t)

	a := types.NewAnnouncement("hello", "", nil)
	a.Category = "" // bypass the constructor default
	require.NoError(t, s.Create(a))

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultCategory, got.Category)
}

func TestAnnouncementStore_Create_RequiresID(t *testing.T) {
	s := newTestStore(t)
	require.Error(t, s.Create(types.Announcement{Body: "no id"}))
}

func TestAnnouncementStore_Create_DuplicateID(t *testing.T) {
	s := newTestStore(t)

	a := types.NewAnnouncement("one", "", nil)
	require.NoError(t, s.Create(a))
	require.Error(t, s.Create(a))
}

func TestAnnouncementStore_Get_Missing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("no-such-id")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAnnouncementStore_List_Filters(t *testing.T) {
	s := newTestStore(t)

	event := types.NewAnnouncement("event body", "event", []string{"jb1"})
	general := types.NewAnnouncement("general body", "", nil)
	disabled := types.NewAnnouncement("disabled body", "event", nil)
	disabled.Enabled = false
	other := types.NewAnnouncement("other body", "rules", []string{"ttt", "surf"})

	for _, a := range []types.Announcement{event, general, disabled, other} {
		require.NoError(t, s.Create(a))
	}

	t.Run("all", func(t *testing.T) {
		got, err := s.List(Filter{})
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("by category", func(t *testing.T) {
		got, err := s.List(Filter{Category: "event"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("enabled only", func(t *testing.T) {
		got, err := s.List(Filter{EnabledOnly: true})
		require.NoError(t, err)
		assert.Len(t, got, 3)
		for _, a := range got {
			assert.True(t, a.Enabled)
		}
	})

	t.Run("by server", func(t *testing.T) {
		// Unassigned announcements play everywhere, so jb1 sees those too.
		got, err := s.List(Filter{Server: "jb1"})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("combined", func(t *testing.T) {
		got, err := s.List(Filter{Category: "event", Server: "jb1", EnabledOnly: true})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, event.ID, got[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		got, err := s.List(Filter{Category: "missing"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestAnnouncementStore_List_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().UTC().Add(-time.Hour)
	var ids []string
	for i := 0; i < 3; i++ {
		a := types.NewAnnouncement(fmt.Sprintf("body %d", i), "", nil)
		a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		a.UpdatedAt = a.CreatedAt
		require.NoError(t, s.Create(a))
		ids = append(ids, a.ID)
	}

	got, err := s.List(Filter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ids[2], got[0].ID)
	assert.Equal(t, ids[0], got[2].ID)
}

func TestAnnouncementStore_Update(t *testing.T) {
	s := newTestStore(t)

	a := types.NewAnnouncement("before", "event", nil)
	require.NoError(t, s.Create(a))

	a.Body = `after with <b>markup</b>`
	a.Category = "rules"
	a.Servers = []string{"surf"}
	a.Enabled = false
	require.NoError(t, s.Update(a))

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, `after with <b>markup</b>`, got.Body)
	assert.Equal(t, "rules", got.Category)
	assert.Equal(t, []string{"surf"}, got.Servers)
	assert.False(t, got.Enabled)
	assert.True(t, got.UpdatedAt.After(a.CreatedAt), "UpdatedAt should be bumped on update")
}

func TestAnnouncementStore_Update_Missing(t *testing.T) {
	s := newTestStore(t)
	a := types.NewAnnouncement("body", "", nil)
	require.ErrorIs(t, s.Update(a), ErrNotFound)
}

func TestAnnouncementStore_Delete(t *testing.T) {
	s := newTestStore(t)

	a := types.NewAnnouncement("to delete", "", nil)
	require.NoError(t, s.Create(a))
	require.NoError(t, s.Delete(a.ID))

	_, err := s.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(a.ID), ErrNotFound)
}

func TestAnnouncementStore_SetEnabled(t *testing.T) {
	s := newTestStore(t)

	a := types.NewAnnouncement("toggle me", "", nil)
	require.NoError(t, s.Create(a))

	require.NoError(t, s.SetEnabled(a.ID, false))
	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	require.NoError(t, s.SetEnabled(a.ID, true))
	got, err = s.Get(a.ID)
	require.NoError(t, err)
	assert.True(t, got.Enabled)

	assert.ErrorIs(t, s.SetEnabled("missing", true), ErrNotFound)
}

func TestAnnouncementStore_Assign(t *testing.T) {
	s := newTestStore(t)

	a := types.NewAnnouncement("assign me", "", []string{"jb1"})
	require.NoError(t, s.Create(a))

	require.NoError(t, s.Assign(a.ID, []string{"ttt", "surf"}))
	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ttt", "surf"}, got.Servers)

	// Clearing the list puts it back on every server.
	require.NoError(t, s.Assign(a.ID, nil))
	got, err = s.Get(a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Servers)
	assert.True(t, got.AssignedTo("anything"))

	assert.ErrorIs(t, s.Assign("missing", nil), ErrNotFound)
}

func TestAnnouncementStore_ResolveID(t *testing.T) {
	s := newTestStore(t)

	one := types.NewAnnouncement("one", "", nil)
	one.ID = "aaaa1111-0000-0000-0000-000000000001"
	two := types.NewAnnouncement("two", "", nil)
	two.ID = "aaaa2222-0000-0000-0000-000000000002"
	three := types.NewAnnouncement("three", "", nil)
	three.ID = "bbbb3333-0000-0000-0000-000000000003"
	for _, a := range []types.Announcement{one, two, three} {
		require.NoError(t, s.Create(a))
	}

	t.Run("exact id", func(t *testing.T) {
		id, err := s.ResolveID(one.ID)
		require.NoError(t, err)
		assert.Equal(t, one.ID, id)
	})

	t.Run("unique prefix", func(t *testing.T) {
		id, err := s.ResolveID("bbbb")
		require.NoError(t, err)
		assert.Equal(t, three.ID, id)
	})

	t.Run("short id", func(t *testing.T) {
		id, err := s.ResolveID(two.ShortID())
		require.NoError(t, err)
		assert.Equal(t, two.ID, id)
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		_, err := s.ResolveID("aaaa")
		assert.ErrorIs(t, err, ErrAmbiguousID)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := s.ResolveID("ffff")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty prefix", func(t *testing.T) {
		_, err := s.ResolveID("")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAnnouncementStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kitman.db")
	s, err := NewAnnouncementStore(path)
	require.NoError(t, err)

	a := types.NewAnnouncement("persisted", "event", []string{"jb1"})
	require.NoError(t, s.Create(a))
	require.NoError(t, s.Close())

	s2, err := NewAnnouncementStore(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Body)
	assert.Equal(t, []string{"jb1"}, got.Servers)
}

func TestAnnouncementStore_Stats(t *testing.T) {
	s := newTestStore(t)

	enabled := types.NewAnnouncement("on", "", nil)
	off := types.NewAnnouncement("off", "", nil)
	off.Enabled = false
	require.NoError(t, s.Create(enabled))
	require.NoError(t, s.Create(off))
	require.NoError(t, s.AppendAudit(types.AuditEntry{AnnouncementID: enabled.ID, Action: types.AuditCreate}))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["announcements"])
	assert.Equal(t, int64(1), stats["enabled"])
	assert.Equal(t, int64(1), stats["audit_log"])
}
