package timesheet_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/timesheet-engine/shift"
	"github.com/warp/timesheet-engine/timesheet"
	"github.com/warp/timesheet-engine/timesheet/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const (
	tenantA = "tenant-a"
	tenantB = "tenant-b"
)

type fixture struct {
	svc   *timesheet.Service
	store *store.Memory
	clock *clockwork.FakeClock
	loc   *time.Location
}

// newFixture seeds two tenants and freezes the clock at 2025-01-20 12:00
// Helsinki time.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 20, 12, 0, 0, 0, loc))
	mem := store.NewMemory()

	mem.SaveUser(timesheet.User{ID: "emp-1", TenantID: tenantA, Name: "Emma", Role: timesheet.RoleEmployee, Status: timesheet.RecordActive, BackdateLimitDays: 7})
	mem.SaveUser(timesheet.User{ID: "emp-2", TenantID: tenantA, Name: "Eero", Role: timesheet.RoleEmployee, Status: timesheet.RecordActive, BackdateLimitDays: 7})
	mem.SaveUser(timesheet.User{ID: "emp-gone", TenantID: tenantA, Name: "Gone", Role: timesheet.RoleEmployee, Status: timesheet.RecordInactive, BackdateLimitDays: 7})
	mem.SaveUser(timesheet.User{ID: "admin-1", TenantID: tenantA, Name: "Aino", Role: timesheet.RoleCompanyAdmin, Status: timesheet.RecordActive, BackdateLimitDays: 30})
	mem.SaveUser(timesheet.User{ID: "emp-b", TenantID: tenantB, Name: "Bob", Role: timesheet.RoleEmployee, Status: timesheet.RecordActive, BackdateLimitDays: 7})

	mem.SaveWorkspace(timesheet.Workspace{ID: "ws-1", TenantID: tenantA, Name: "Site 1", Status: timesheet.RecordActive})
	mem.SaveWorkspace(timesheet.Workspace{ID: "ws-2", TenantID: tenantA, Name: "Site 2", Status: timesheet.RecordActive})
	mem.SaveWorkspace(timesheet.Workspace{ID: "ws-closed", TenantID: tenantA, Name: "Closed", Status: timesheet.RecordInactive})

	mem.SaveProject(timesheet.Project{ID: "proj-1", TenantID: tenantA, Name: "Warehouse", WorkspaceID: "ws-1", Status: timesheet.RecordActive})
	mem.SaveProject(timesheet.Project{ID: "proj-free", TenantID: tenantA, Name: "Floating", Status: timesheet.RecordActive})
	mem.SaveProject(timesheet.Project{ID: "proj-old", TenantID: tenantA, Name: "Archived", Status: timesheet.RecordInactive})
	mem.SaveProject(timesheet.Project{ID: "proj-b", TenantID: tenantB, Name: "Other", Status: timesheet.RecordActive})

	return &fixture{
		svc:   timesheet.NewService(nil, mem, clock, loc),
		store: mem,
		clock: clock,
		loc:   loc,
	}
}

func (f *fixture) at(day, hour, minute int) time.Time {
	return time.Date(2025, 1, day, hour, minute, 0, 0, f.loc)
}

// input builds an employee self-submission for proj-1.
func (f *fixture) input(start, end time.Time) timesheet.CreateEntryInput {
	return timesheet.CreateEntryInput{
		TenantID:  tenantA,
		ActorID:   "emp-1",
		ActorRole: timesheet.RoleEmployee,
		UserID:    "emp-1",
		ProjectID: "proj-1",
		Start:     start,
		End:       end,
	}
}

func (f *fixture) allSplits(t *testing.T) []timesheet.Split {
	t.Helper()
	splits, err := f.store.ListSplits(context.Background(), timesheet.SplitFilter{TenantID: tenantA})
	require.NoError(t, err)
	return splits
}

func assertHours(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, decimal.RequireFromString(want).StringFixed(2), got.StringFixed(2), msgAndArgs...)
}

func admin(splitID string, status timesheet.Status) timesheet.SetStatusInput {
	return timesheet.SetStatusInput{
		SplitID:   splitID,
		Status:    status,
		ActorID:   "admin-1",
		ActorRole: timesheet.RoleCompanyAdmin,
		TenantID:  tenantA,
	}
}

// =============================================================================
// CREATE ENTRY
// =============================================================================

func TestCreateEntry_OvernightSplitsAtLocalMidnight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// GIVEN: 22:00 on the 15th to 02:00 on the 16th, Helsinki
	res, err := f.svc.CreateEntry(ctx, f.input(f.at(15, 22, 0), f.at(16, 2, 0)))
	require.NoError(t, err)

	// THEN: Two splits, one per local date, each with two night hours
	require.Len(t, res.Splits, 2)
	first, second := res.Splits[0], res.Splits[1]

	assert.Equal(t, shift.NewDate(2025, time.January, 15), first.LocalDate)
	assert.Equal(t, shift.NewDate(2025, time.January, 16), second.LocalDate)
	assert.True(t, first.EndTime.Equal(second.StartTime))
	assert.True(t, first.StartTime.Equal(f.at(15, 22, 0)))
	assert.True(t, second.EndTime.Equal(f.at(16, 2, 0)))

	assertHours(t, "2", first.TotalHours)
	assertHours(t, "0", first.EveningHours)
	assertHours(t, "2", first.NightHours)
	assertHours(t, "2", second.TotalHours)
	assertHours(t, "2", second.NightHours)

	// AND: The parent carries the summed figures
	assertHours(t, "4", res.Entry.TotalHours)
	assertHours(t, "0", res.Entry.EveningHours)
	assertHours(t, "4", res.Entry.NightHours)
	assert.Equal(t, timesheet.StatusPending, res.Entry.Status)
	assert.Equal(t, "ws-1", res.Entry.WorkspaceID, "workspace comes from the project")
	assert.Equal(t, "emp-1", res.Entry.CreatedByID)

	for _, sp := range res.Splits {
		assert.Equal(t, res.Entry.ID, sp.EntryID)
		assert.Equal(t, timesheet.StatusPending, sp.Status)
		assert.Equal(t, time.UTC, sp.StartTime.Location())
	}

	// AND: Everything is persisted
	entry, splits, err := f.svc.EntrySplits(ctx, tenantA, res.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Entry.ID, entry.ID)
	assert.Len(t, splits, 2)
}

func TestCreateEntry_EveningAndNightHours(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CreateEntry(context.Background(), f.input(f.at(17, 17, 0), f.at(17, 23, 30)))
	require.NoError(t, err)

	require.Len(t, res.Splits, 1)
	assertHours(t, "6.5", res.Entry.TotalHours)
	assertHours(t, "4", res.Entry.EveningHours)
	assertHours(t, "1.5", res.Entry.NightHours)
}

func TestCreateEntry_ParentSumsRoundedSplits(t *testing.T) {
	f := newFixture(t)

	// GIVEN: 20 minutes either side of midnight (21:40Z-22:20Z at UTC+2)
	start := time.Date(2025, 1, 18, 21, 40, 0, 0, time.UTC)
	end := time.Date(2025, 1, 18, 22, 20, 0, 0, time.UTC)

	res, err := f.svc.CreateEntry(context.Background(), f.input(start, end))
	require.NoError(t, err)

	// THEN: Each split rounds 20 minutes to 0.33
	require.Len(t, res.Splits, 2)
	for _, sp := range res.Splits {
		assertHours(t, "0.33", sp.TotalHours)
		assertHours(t, "0", sp.EveningHours)
		assertHours(t, "0.33", sp.NightHours)
	}

	// AND: The parent is their sum, not 40 minutes rounded (0.67)
	assertHours(t, "0.66", res.Entry.TotalHours)
	assertHours(t, "0", res.Entry.EveningHours)
	assertHours(t, "0.66", res.Entry.NightHours)

	entry, _, err := f.svc.EntrySplits(context.Background(), tenantA, res.Entry.ID)
	require.NoError(t, err)
	assertHours(t, "0.66", entry.TotalHours, "persisted parent")
}

func TestCreateEntry_UsesTenantPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	policy, err := shift.ParsePolicy("16:00", "20:00", "20:00", "04:00")
	require.NoError(t, err)
	_, err = f.svc.UpdatePolicy(ctx, timesheet.UpdatePolicyInput{
		TenantID:  tenantA,
		ActorID:   "admin-1",
		ActorRole: timesheet.RoleCompanyAdmin,
		Policy:    policy,
	})
	require.NoError(t, err)

	res, err := f.svc.CreateEntry(ctx, f.input(f.at(17, 17, 0), f.at(17, 23, 30)))
	require.NoError(t, err)

	assertHours(t, "3", res.Entry.EveningHours)
	assertHours(t, "3.5", res.Entry.NightHours)
}

func TestCreateEntry_AdminSubmitsForEmployee(t *testing.T) {
	f := newFixture(t)

	in := f.input(f.at(18, 8, 0), f.at(18, 16, 0))
	in.ActorID = "admin-1"
	in.ActorRole = timesheet.RoleCompanyAdmin

	res, err := f.svc.CreateEntry(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", res.Entry.UserID)
	assert.Equal(t, "admin-1", res.Entry.CreatedByID)
}

func TestCreateEntry_ExplicitWorkspace(t *testing.T) {
	f := newFixture(t)

	// Matching the project's own workspace is fine
	in := f.input(f.at(18, 8, 0), f.at(18, 9, 0))
	in.WorkspaceID = "ws-1"
	res, err := f.svc.CreateEntry(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "ws-1", res.Entry.WorkspaceID)

	// A project without workspace accepts any active one
	in = f.input(f.at(18, 10, 0), f.at(18, 11, 0))
	in.ProjectID = "proj-free"
	in.WorkspaceID = "ws-2"
	res, err = f.svc.CreateEntry(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "ws-2", res.Entry.WorkspaceID)

	// And no workspace at all
	in = f.input(f.at(18, 12, 0), f.at(18, 13, 0))
	in.ProjectID = "proj-free"
	res, err = f.svc.CreateEntry(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, res.Entry.WorkspaceID)
}

func TestCreateEntry_BackdateLimitIsInclusive(t *testing.T) {
	f := newFixture(t)

	// Exactly seven days back
	_, err := f.svc.CreateEntry(context.Background(), f.input(f.at(13, 8, 0), f.at(13, 12, 0)))
	require.NoError(t, err)
}

func TestCreateEntry_Failures_PersistNothing(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, in *timesheet.CreateEntryInput)
		wantErr error
	}{
		{
			name: "end before start",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.Start, in.End = f.at(18, 10, 0), f.at(18, 9, 0)
			},
			wantErr: timesheet.ErrInvalidInterval,
		},
		{
			name: "zero length",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.End = in.Start
			},
			wantErr: timesheet.ErrInvalidInterval,
		},
		{
			name: "future date",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.Start, in.End = f.at(21, 8, 0), f.at(21, 10, 0)
			},
			wantErr: timesheet.ErrFutureDate,
		},
		{
			name: "second half lands tomorrow",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.Start, in.End = f.at(20, 22, 0), f.at(21, 2, 0)
			},
			wantErr: timesheet.ErrFutureDate,
		},
		{
			name: "eight days back",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.Start, in.End = f.at(12, 8, 0), f.at(12, 10, 0)
			},
			wantErr: timesheet.ErrBackdateLimitExceeded,
		},
		{
			name: "unknown user",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.UserID, in.ActorID = "nobody", "nobody"
			},
			wantErr: timesheet.ErrUserNotFound,
		},
		{
			name: "inactive user",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.UserID, in.ActorID = "emp-gone", "emp-gone"
			},
			wantErr: timesheet.ErrUserNotFound,
		},
		{
			name: "user of another tenant",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.UserID, in.ActorID = "emp-b", "emp-b"
			},
			wantErr: timesheet.ErrCrossTenant,
		},
		{
			name: "inactive project",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.ProjectID = "proj-old"
			},
			wantErr: timesheet.ErrProjectNotFound,
		},
		{
			name: "project of another tenant",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.ProjectID = "proj-b"
			},
			wantErr: timesheet.ErrProjectNotFound,
		},
		{
			name: "employee submitting for a colleague",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.UserID = "emp-2"
			},
			wantErr: timesheet.ErrForbidden,
		},
		{
			name: "workspace differs from project",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.WorkspaceID = "ws-2"
			},
			wantErr: timesheet.ErrWorkspaceMismatch,
		},
		{
			name: "inactive workspace",
			mutate: func(f *fixture, in *timesheet.CreateEntryInput) {
				in.ProjectID = "proj-free"
				in.WorkspaceID = "ws-closed"
			},
			wantErr: timesheet.ErrWorkspaceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := f.input(f.at(18, 8, 0), f.at(18, 16, 0))
			tt.mutate(f, &in)

			res, err := f.svc.CreateEntry(context.Background(), in)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)
			assert.Empty(t, f.allSplits(t))
		})
	}
}

// =============================================================================
// APPROVAL
// =============================================================================

func TestDeriveStatus(t *testing.T) {
	P, A, R := timesheet.StatusPending, timesheet.StatusApproved, timesheet.StatusRejected

	tests := []struct {
		name string
		in   []timesheet.Status
		want timesheet.Status
	}{
		{"no splits", nil, P},
		{"all pending", []timesheet.Status{P, P}, P},
		{"partly approved", []timesheet.Status{A, P}, P},
		{"all approved", []timesheet.Status{A, A}, A},
		{"one rejected wins", []timesheet.Status{A, R}, R},
		{"rejected beats pending", []timesheet.Status{P, R}, R},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, timesheet.DeriveStatus(tt.in))
		})
	}
}

func TestSetSplitStatus_ParentFollowsSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateEntry(ctx, f.input(f.at(15, 22, 0), f.at(16, 2, 0)))
	require.NoError(t, err)
	first, second := res.Splits[0].ID, res.Splits[1].ID

	entryStatus := func() *timesheet.Entry {
		e, err := f.store.GetEntry(ctx, res.Entry.ID)
		require.NoError(t, err)
		return e
	}

	// Approve one of two: parent stays pending
	sp, err := f.svc.SetSplitStatus(ctx, admin(first, timesheet.StatusApproved))
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusApproved, sp.Status)
	assert.Equal(t, "admin-1", sp.ApprovedByID)
	require.NotNil(t, sp.ApprovedAt)
	assert.Equal(t, timesheet.StatusPending, entryStatus().Status)

	// Reject the other without reason: parent rejected with default reason
	sp, err = f.svc.SetSplitStatus(ctx, admin(second, timesheet.StatusRejected))
	require.NoError(t, err)
	assert.Equal(t, timesheet.DefaultRejectionReason, sp.RejectionReason)
	parent := entryStatus()
	assert.Equal(t, timesheet.StatusRejected, parent.Status)
	assert.Equal(t, timesheet.DefaultRejectionReason, parent.RejectionReason)
	assert.Nil(t, parent.LockedAt)

	// Rejected splits can still be approved; now all approved locks the parent
	sp, err = f.svc.SetSplitStatus(ctx, admin(second, timesheet.StatusApproved))
	require.NoError(t, err)
	assert.Empty(t, sp.RejectionReason)
	parent = entryStatus()
	assert.Equal(t, timesheet.StatusApproved, parent.Status)
	assert.Empty(t, parent.RejectionReason)
	require.NotNil(t, parent.LockedAt)
	assert.True(t, parent.LockedAt.Equal(f.clock.Now()))
}

func TestSetSplitStatus_RejectReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateEntry(ctx, f.input(f.at(18, 8, 0), f.at(18, 16, 0)))
	require.NoError(t, err)

	in := admin(res.Splits[0].ID, timesheet.StatusRejected)
	in.Reason = "wrong project"
	sp, err := f.svc.SetSplitStatus(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "wrong project", sp.RejectionReason)

	e, err := f.store.GetEntry(ctx, res.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "wrong project", e.RejectionReason)
}

func TestSetSplitStatus_ApprovedIsImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateEntry(ctx, f.input(f.at(18, 8, 0), f.at(18, 16, 0)))
	require.NoError(t, err)
	id := res.Splits[0].ID

	_, err = f.svc.SetSplitStatus(ctx, admin(id, timesheet.StatusApproved))
	require.NoError(t, err)
	before, err := f.store.GetSplit(ctx, id)
	require.NoError(t, err)

	for _, target := range []timesheet.Status{timesheet.StatusRejected, timesheet.StatusPending} {
		_, err = f.svc.SetSplitStatus(ctx, admin(id, target))
		require.ErrorIs(t, err, timesheet.ErrImmutableApprovedEntry, "target %s", target)
	}

	after, err := f.store.GetSplit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	e, err := f.store.GetEntry(ctx, res.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusApproved, e.Status)
}

func TestSetSplitStatus_ReopenRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateEntry(ctx, f.input(f.at(18, 8, 0), f.at(18, 16, 0)))
	require.NoError(t, err)
	id := res.Splits[0].ID

	_, err = f.svc.SetSplitStatus(ctx, admin(id, timesheet.StatusRejected))
	require.NoError(t, err)

	sp, err := f.svc.SetSplitStatus(ctx, admin(id, timesheet.StatusPending))
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusPending, sp.Status)
	assert.Empty(t, sp.RejectionReason)

	e, err := f.store.GetEntry(ctx, res.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusPending, e.Status)
	assert.Empty(t, e.RejectionReason)
}

func TestSetSplitStatus_AccessChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateEntry(ctx, f.input(f.at(18, 8, 0), f.at(18, 16, 0)))
	require.NoError(t, err)
	id := res.Splits[0].ID

	// Employees cannot review
	in := admin(id, timesheet.StatusApproved)
	in.ActorID, in.ActorRole = "emp-1", timesheet.RoleEmployee
	_, err = f.svc.SetSplitStatus(ctx, in)
	require.ErrorIs(t, err, timesheet.ErrForbidden)

	// Other tenants do not see the split
	in = admin(id, timesheet.StatusApproved)
	in.TenantID = tenantB
	_, err = f.svc.SetSplitStatus(ctx, in)
	require.ErrorIs(t, err, timesheet.ErrNotFound)

	// Unknown status
	_, err = f.svc.SetSplitStatus(ctx, admin(id, "DONE"))
	require.ErrorIs(t, err, timesheet.ErrInvalidStatus)

	// Unknown split
	_, err = f.svc.SetSplitStatus(ctx, admin("missing", timesheet.StatusApproved))
	require.ErrorIs(t, err, timesheet.ErrNotFound)

	sp, err := f.store.GetSplit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusPending, sp.Status)
}

func TestSetSplitStatus_SuperAdminCrossesTenants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateEntry(ctx, f.input(f.at(18, 8, 0), f.at(18, 16, 0)))
	require.NoError(t, err)

	sp, err := f.svc.SetSplitStatus(ctx, timesheet.SetStatusInput{
		SplitID:   res.Splits[0].ID,
		Status:    timesheet.StatusApproved,
		ActorID:   "root",
		ActorRole: timesheet.RoleSuperAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "root", sp.ApprovedByID)
}

// =============================================================================
// POLICY
// =============================================================================

func TestUpdatePolicy_ReplacesActiveVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ActivePolicy(ctx, tenantA)
	require.ErrorIs(t, err, timesheet.ErrNotFound)

	in := timesheet.UpdatePolicyInput{TenantID: tenantA, ActorID: "admin-1", ActorRole: timesheet.RoleCompanyAdmin, Policy: shift.DefaultPolicy()}
	first, err := f.svc.UpdatePolicy(ctx, in)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	in.Policy.EveningStart = shift.MustParseClock("17:00")
	second, err := f.svc.UpdatePolicy(ctx, in)
	require.NoError(t, err)

	active, err := f.svc.ActivePolicy(ctx, tenantA)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.NotEqual(t, first.ID, active.ID)
	assert.Equal(t, "17:00", active.Policy.EveningStart.String())
	assert.True(t, active.EffectiveFrom.Equal(f.clock.Now()))

	// Other tenants are unaffected
	_, err = f.svc.ActivePolicy(ctx, tenantB)
	require.ErrorIs(t, err, timesheet.ErrNotFound)
}

func TestUpdatePolicy_AdminsOnly(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdatePolicy(context.Background(), timesheet.UpdatePolicyInput{
		TenantID:  tenantA,
		ActorID:   "emp-1",
		ActorRole: timesheet.RoleEmployee,
		Policy:    shift.DefaultPolicy(),
	})
	require.ErrorIs(t, err, timesheet.ErrForbidden)
}

func TestUpdatePolicy_ExistingEntriesKeepHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateEntry(ctx, f.input(f.at(17, 17, 0), f.at(17, 23, 30)))
	require.NoError(t, err)

	policy, err := shift.ParsePolicy("12:00", "23:00", "23:00", "05:00")
	require.NoError(t, err)
	_, err = f.svc.UpdatePolicy(ctx, timesheet.UpdatePolicyInput{TenantID: tenantA, ActorID: "admin-1", ActorRole: timesheet.RoleCompanyAdmin, Policy: policy})
	require.NoError(t, err)

	e, err := f.store.GetEntry(ctx, res.Entry.ID)
	require.NoError(t, err)
	assertHours(t, "4", e.EveningHours)
	assertHours(t, "1.5", e.NightHours)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestReport_SumsApprovedSplitsInRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	overnight, err := f.svc.CreateEntry(ctx, f.input(f.at(15, 22, 0), f.at(16, 2, 0)))
	require.NoError(t, err)
	evening, err := f.svc.CreateEntry(ctx, f.input(f.at(17, 17, 0), f.at(17, 23, 30)))
	require.NoError(t, err)
	_, err = f.svc.CreateEntry(ctx, f.input(f.at(18, 8, 0), f.at(18, 16, 0)))
	require.NoError(t, err)

	for _, sp := range append(overnight.Splits, evening.Splits...) {
		_, err := f.svc.SetSplitStatus(ctx, admin(sp.ID, timesheet.StatusApproved))
		require.NoError(t, err)
	}

	rep, err := f.svc.Report(ctx, timesheet.ReportFilter{
		TenantID: tenantA,
		UserID:   "emp-1",
		From:     shift.NewDate(2025, time.January, 16),
		To:       shift.NewDate(2025, time.January, 18),
	})
	require.NoError(t, err)

	// The 15th is out of range and the 18th is still pending
	require.Len(t, rep.Rows, 2)
	assert.Equal(t, shift.NewDate(2025, time.January, 17), rep.Rows[0].LocalDate, "newest first")
	assertHours(t, "8.5", rep.Totals.TotalHours)
	assertHours(t, "4", rep.Totals.EveningHours)
	assertHours(t, "3.5", rep.Totals.NightHours)
}

func TestReport_RequiresOrderedRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Report(context.Background(), timesheet.ReportFilter{TenantID: tenantA})
	require.ErrorIs(t, err, timesheet.ErrInvalidFilter)

	_, err = f.svc.Report(context.Background(), timesheet.ReportFilter{
		TenantID: tenantA,
		From:     shift.NewDate(2025, time.January, 18),
		To:       shift.NewDate(2025, time.January, 16),
	})
	require.ErrorIs(t, err, timesheet.ErrInvalidFilter)
}

func TestListSplits_TenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateEntry(ctx, f.input(f.at(18, 8, 0), f.at(18, 16, 0)))
	require.NoError(t, err)

	mine, err := f.svc.ListSplits(ctx, timesheet.SplitFilter{TenantID: tenantA})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.svc.ListSplits(ctx, timesheet.SplitFilter{TenantID: tenantB})
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, _, err = f.svc.EntrySplits(ctx, tenantB, mine[0].EntryID)
	require.ErrorIs(t, err, timesheet.ErrNotFound)

	_, err = f.svc.ListSplits(ctx, timesheet.SplitFilter{Status: "LATE"})
	require.ErrorIs(t, err, timesheet.ErrInvalidStatus)
}
