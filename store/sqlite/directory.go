package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/warp/timesheet-engine/shift"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// DIRECTORY WRITES (seeding and admin tooling)
// =============================================================================

// SaveUser inserts or replaces a user.
func (s *Store) SaveUser(ctx context.Context, u timesheet.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.read().exec(ctx, builder.
		Insert("users").
		Columns("id", "tenant_id", "name", "email", "role", "status", "backdate_limit_days").
		Values(u.ID, u.TenantID, u.Name, nullString(u.Email), string(u.Role), string(orActive(u.Status)), u.BackdateLimitDays).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			tenant_id = excluded.tenant_id,
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			status = excluded.status,
			backdate_limit_days = excluded.backdate_limit_days`))
	if err != nil {
		return fmt.Errorf("save user %s: %w", u.ID, err)
	}
	return nil
}

// SaveWorkspace inserts or replaces a workspace.
func (s *Store) SaveWorkspace(ctx context.Context, w timesheet.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.read().exec(ctx, builder.
		Insert("workspaces").
		Columns("id", "tenant_id", "name", "status").
		Values(w.ID, w.TenantID, w.Name, string(orActive(w.Status))).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			tenant_id = excluded.tenant_id,
			name = excluded.name,
			status = excluded.status`))
	if err != nil {
		return fmt.Errorf("save workspace %s: %w", w.ID, err)
	}
	return nil
}

// SaveProject inserts or replaces a project.
func (s *Store) SaveProject(ctx context.Context, p timesheet.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.read().exec(ctx, builder.
		Insert("projects").
		Columns("id", "tenant_id", "name", "workspace_id", "status").
		Values(p.ID, p.TenantID, p.Name, nullString(p.WorkspaceID), string(orActive(p.Status))).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			tenant_id = excluded.tenant_id,
			name = excluded.name,
			workspace_id = excluded.workspace_id,
			status = excluded.status`))
	if err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	return nil
}

func orActive(s timesheet.RecordStatus) timesheet.RecordStatus {
	if s == "" {
		return timesheet.RecordActive
	}
	return s
}

// =============================================================================
// DIRECTORY READS
// =============================================================================

func (qs queries) GetUser(ctx context.Context, id string) (*timesheet.User, error) {
	row, err := qs.queryRow(ctx, builder.
		Select("id", "tenant_id", "name", "COALESCE(email, '')", "role", "status", "backdate_limit_days").
		From("users").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	var u timesheet.User
	err = row.Scan(&u.ID, &u.TenantID, &u.Name, &u.Email, &u.Role, &u.Status, &u.BackdateLimitDays)
	if noRows(err) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

func (qs queries) GetProject(ctx context.Context, tenantID, id string) (*timesheet.Project, error) {
	row, err := qs.queryRow(ctx, builder.
		Select("id", "tenant_id", "name", "COALESCE(workspace_id, '')", "status").
		From("projects").
		Where(sq.Eq{"id": id, "tenant_id": tenantID}))
	if err != nil {
		return nil, err
	}

	var p timesheet.Project
	err = row.Scan(&p.ID, &p.TenantID, &p.Name, &p.WorkspaceID, &p.Status)
	if noRows(err) {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return &p, nil
}

func (qs queries) GetWorkspace(ctx context.Context, tenantID, id string) (*timesheet.Workspace, error) {
	row, err := qs.queryRow(ctx, builder.
		Select("id", "tenant_id", "name", "status").
		From("workspaces").
		Where(sq.Eq{"id": id, "tenant_id": tenantID}))
	if err != nil {
		return nil, err
	}

	var w timesheet.Workspace
	err = row.Scan(&w.ID, &w.TenantID, &w.Name, &w.Status)
	if noRows(err) {
		return nil, notFound("workspace", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get workspace %s: %w", id, err)
	}
	return &w, nil
}

// =============================================================================
// SHIFT POLICIES
// =============================================================================

func (qs queries) ActivePolicy(ctx context.Context, tenantID string) (*timesheet.PolicyRecord, error) {
	row, err := qs.queryRow(ctx, builder.
		Select("id", "tenant_id", "evening_start", "evening_end", "night_start", "night_end", "effective_from", "is_active").
		From("shift_policies").
		Where(sq.Eq{"tenant_id": tenantID, "is_active": 1}).
		OrderBy("effective_from DESC").
		Limit(1))
	if err != nil {
		return nil, err
	}

	var (
		rec                    timesheet.PolicyRecord
		evS, evE, nS, nE, from string
	)
	err = row.Scan(&rec.ID, &rec.TenantID, &evS, &evE, &nS, &nE, &from, &rec.IsActive)
	if noRows(err) {
		return nil, notFound("policy for tenant", tenantID)
	}
	if err != nil {
		return nil, fmt.Errorf("get active policy: %w", err)
	}

	if rec.Policy, err = shift.ParsePolicy(evS, evE, nS, nE); err != nil {
		return nil, fmt.Errorf("stored policy %s: %w", rec.ID, err)
	}
	if rec.EffectiveFrom, err = parseTime(from); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (qs queries) ReplaceActivePolicy(ctx context.Context, p timesheet.PolicyRecord) error {
	_, err := qs.exec(ctx, builder.
		Update("shift_policies").
		Set("is_active", 0).
		Where(sq.Eq{"tenant_id": p.TenantID, "is_active": 1}))
	if err != nil {
		return fmt.Errorf("deactivate policy: %w", err)
	}

	_, err = qs.exec(ctx, builder.
		Insert("shift_policies").
		Columns("id", "tenant_id", "evening_start", "evening_end", "night_start", "night_end", "effective_from", "is_active").
		Values(p.ID, p.TenantID,
			p.Policy.EveningStart.String(), p.Policy.EveningEnd.String(),
			p.Policy.NightStart.String(), p.Policy.NightEnd.String(),
			formatTime(p.EffectiveFrom), 1))
	if err != nil {
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}
