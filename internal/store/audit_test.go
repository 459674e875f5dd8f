package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitman/internal/types"
)

func TestAppendAudit_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	e := types.AuditEntry{
		AnnouncementID: "ann-1",
		Action:         types.AuditCreate,
		Detail:         "created via console",
		Actor:          "zoe",
	}
	require.NoError(t, s.AppendAudit(e))

	got, err := s.RecentAudit(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ann-1", got[0].AnnouncementID)
	assert.Equal(t, types.AuditCreate, got[0].Action)
	assert.Equal(t, "created via console", got[0].Detail)
	assert.Equal(t, "zoe", got[0].Actor)
	assert.NotZero(t, got[0].ID)
	assert.False(t, got[0].CreatedAt.IsZero(), "zero CreatedAt should be filled on append")
}

func TestRecentAudit_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	for i, action := range []string{types.AuditCreate, types.AuditUpdate, types.AuditDisable} {
		require.NoError(t, s.AppendAudit(types.AuditEntry{
			AnnouncementID: "ann-1",
			Action:         action,
			CreatedAt:      time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := s.RecentAudit(0) // default limit
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, types.AuditDisable, got[0].Action)
	assert.Equal(t, types.AuditCreate, got[2].Action)

	got, err = s.RecentAudit(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.AuditDisable, got[0].Action)
}

func TestAuditFor_FiltersByAnnouncement(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AppendAudit(types.AuditEntry{AnnouncementID: "ann-1", Action: types.AuditCreate}))
	require.NoError(t, s.AppendAudit(types.AuditEntry{AnnouncementID: "ann-2", Action: types.AuditCreate}))
	require.NoError(t, s.AppendAudit(types.AuditEntry{AnnouncementID: "ann-1", Action: types.AuditDelete}))

	got, err := s.AuditFor("ann-1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.AuditDelete, got[0].Action)
	assert.Equal(t, types.AuditCreate, got[1].Action)

	got, err = s.AuditFor("ann-3", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAudit_SurvivesDelete(t *testing.T) {
	s := newTestStore(t)

	a := types.NewAnnouncement("doomed", "", nil)
	require.NoError(t, s.Create(a))
	require.NoError(t, s.AppendAudit(types.AuditEntry{AnnouncementID: a.ID, Action: types.AuditCreate}))
	require.NoError(t, s.Delete(a.ID))
	require.NoError(t, s.AppendAudit(types.AuditEntry{AnnouncementID: a.ID, Action: types.AuditDelete}))

	got, err := s.AuditFor(a.ID, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
