package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/timesheet-engine/shift"
	"github.com/warp/timesheet-engine/timesheet"
)

func seedEntry(t *testing.T, m *Memory, id string, days ...int) {
	t.Helper()
	entry := timesheet.Entry{ID: id, TenantID: "t1", UserID: "u1", Status: timesheet.StatusPending}
	var splits []timesheet.Split
	for i, d := range days {
		start := time.Date(2025, 1, d, 8, 0, 0, 0, time.UTC)
		splits = append(splits, timesheet.Split{
			ID:         id + "-" + string(rune('a'+i)),
			TenantID:   "t1",
			EntryID:    id,
			UserID:     "u1",
			LocalDate:  shift.NewDate(2025, time.January, d),
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
			TotalHours: decimal.NewFromInt(1),
			Status:     timesheet.StatusPending,
		})
	}
	require.NoError(t, m.InsertEntry(context.Background(), entry, splits))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	boom := errors.New("boom")

	err := m.WithTx(ctx, func(tx timesheet.Store) error {
		e := timesheet.Entry{ID: "e1", TenantID: "t1"}
		s := timesheet.Split{ID: "s1", TenantID: "t1", EntryID: "e1"}
		require.NoError(t, tx.InsertEntry(ctx, e, []timesheet.Split{s}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = m.GetEntry(ctx, "e1")
	require.ErrorIs(t, err, timesheet.ErrNotFound)
	_, err = m.GetSplit(ctx, "s1")
	require.ErrorIs(t, err, timesheet.ErrNotFound)
}

func TestUpdateSplitStatus_RefusesToUnapprove(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedEntry(t, m, "e1", 10)

	require.NoError(t, m.UpdateSplitStatus(ctx, "e1-a", timesheet.SplitStatusUpdate{Status: timesheet.StatusApproved, ApprovedByID: "admin"}))

	err := m.UpdateSplitStatus(ctx, "e1-a", timesheet.SplitStatusUpdate{Status: timesheet.StatusRejected})
	require.ErrorIs(t, err, timesheet.ErrImmutableApprovedEntry)

	sp, err := m.GetSplit(ctx, "e1-a")
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusApproved, sp.Status)
	assert.Equal(t, "admin", sp.ApprovedByID)
}

func TestListSplits_OrderAndFilters(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedEntry(t, m, "e1", 12, 10)
	seedEntry(t, m, "e2", 11)

	asc, err := m.ListEntrySplits(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, 10, asc[0].LocalDate.Day)

	desc, err := m.ListSplits(ctx, timesheet.SplitFilter{TenantID: "t1"})
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.Equal(t, []int{12, 11, 10}, []int{desc[0].LocalDate.Day, desc[1].LocalDate.Day, desc[2].LocalDate.Day})

	ranged, err := m.ListSplits(ctx, timesheet.SplitFilter{
		TenantID: "t1",
		From:     shift.NewDate(2025, time.January, 11),
		To:       shift.NewDate(2025, time.January, 11),
	})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "e2", ranged[0].EntryID)

	none, err := m.ListSplits(ctx, timesheet.SplitFilter{TenantID: "t2"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestActivePolicy_LatestReplacement(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.ActivePolicy(ctx, "t1")
	require.ErrorIs(t, err, timesheet.ErrNotFound)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.ReplaceActivePolicy(ctx, timesheet.PolicyRecord{ID: "p1", TenantID: "t1", Policy: shift.DefaultPolicy(), EffectiveFrom: now}))
	require.NoError(t, m.ReplaceActivePolicy(ctx, timesheet.PolicyRecord{ID: "p2", TenantID: "t1", Policy: shift.DefaultPolicy(), EffectiveFrom: now.Add(time.Hour)}))

	p, err := m.ActivePolicy(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ID)
}

func TestQueryAudit_NewestFirstWithLimit(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for i, action := range []timesheet.AuditAction{timesheet.AuditEntryCreated, timesheet.AuditSplitApproved, timesheet.AuditEntryCreated} {
		require.NoError(t, m.AppendAudit(ctx, timesheet.AuditEntry{
			ID:       string(rune('1' + i)),
			TenantID: "t1",
			ActorID:  "u1",
			Action:   action,
		}))
	}

	got, err := m.QueryAudit(ctx, timesheet.AuditFilter{TenantID: "t1", Actions: []timesheet.AuditAction{timesheet.AuditEntryCreated}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
}
