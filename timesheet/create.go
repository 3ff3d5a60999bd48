package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/warp/timesheet-engine/shift"
)

// CreateEntryInput is a request to log one work interval.
type CreateEntryInput struct {
	TenantID    string
	ActorID     string
	ActorRole   Role
	UserID      string
	ProjectID   string
	WorkspaceID string // optional
	Start       time.Time
	End         time.Time
	Notes       string
}

// CreateEntryResult is the persisted parent and its splits in chronological
// order.
type CreateEntryResult struct {
	Entry  Entry
	Splits []Split
}

// CreateEntry validates the request, splits the interval at local midnights,
// guards every local date, computes shift hours and persists the parent and
// splits atomically. Validation is fail-fast; nothing is written unless
// every step succeeds.
func (s *Service) CreateEntry(ctx context.Context, in CreateEntryInput) (*CreateEntryResult, error) {
	user, err := s.store.GetUser(ctx, in.UserID)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("user %s: %w", in.UserID, ErrUserNotFound)
	case err != nil:
		return nil, fmt.Errorf("get user: %w", err)
	case user.Status != RecordActive:
		return nil, fmt.Errorf("user %s: %w", in.UserID, ErrUserNotFound)
	case user.TenantID != in.TenantID:
		return nil, fmt.Errorf("user %s: %w", in.UserID, ErrCrossTenant)
	}

	project, err := s.store.GetProject(ctx, in.TenantID, in.ProjectID)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("project %s: %w", in.ProjectID, ErrProjectNotFound)
	case err != nil:
		return nil, fmt.Errorf("get project: %w", err)
	case project.Status != RecordActive:
		return nil, fmt.Errorf("project %s: %w", in.ProjectID, ErrProjectNotFound)
	}

	if !in.ActorRole.CanSubmitFor(in.ActorID, in.UserID) {
		return nil, fmt.Errorf("employees can only create their own entries: %w", ErrForbidden)
	}

	workspaceID, err := s.resolveWorkspace(ctx, in.TenantID, in.WorkspaceID, project)
	if err != nil {
		return nil, err
	}

	policy, err := s.effectivePolicy(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}

	segments, err := shift.Split(in.Start, in.End, s.loc)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckSegments(segments, user.BackdateLimitDays); err != nil {
		return nil, err
	}

	now := s.now()
	entry := Entry{
		ID:          s.newID(),
		TenantID:    in.TenantID,
		UserID:      in.UserID,
		CreatedByID: in.ActorID,
		ProjectID:   in.ProjectID,
		WorkspaceID: workspaceID,
		StartTime:   in.Start.UTC(),
		EndTime:     in.End.UTC(),
		Status:      StatusPending,
		Notes:       in.Notes,
		CreatedAt:   now,
	}

	splits := make([]Split, 0, len(segments))
	var total shift.Summary
	for _, seg := range segments {
		hours := shift.Summarize(seg, policy, s.loc)
		total = total.Add(hours)

		splits = append(splits, Split{
			ID:           s.newID(),
			TenantID:     in.TenantID,
			EntryID:      entry.ID,
			UserID:       in.UserID,
			ProjectID:    in.ProjectID,
			LocalDate:    seg.LocalDate,
			StartTime:    seg.Start,
			EndTime:      seg.End,
			TotalHours:   hours.TotalHours,
			EveningHours: hours.EveningHours,
			NightHours:   hours.NightHours,
			Status:       StatusPending,
			Notes:        in.Notes,
			CreatedAt:    now,
		})
	}

	// Parent totals are sums of the already rounded split figures.
	total = total.Round()
	entry.TotalHours = total.TotalHours
	entry.EveningHours = total.EveningHours
	entry.NightHours = total.NightHours

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.InsertEntry(ctx, entry, splits); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "time entry created",
		slog.String("tenant_id", in.TenantID),
		slog.String("entry_id", entry.ID),
		slog.String("user_id", in.UserID),
		slog.Int("splits", len(splits)),
		slog.String("total_hours", entry.TotalHours.StringFixed(2)),
	)

	return &CreateEntryResult{Entry: entry, Splits: splits}, nil
}

// resolveWorkspace picks the explicit workspace, else the project's own,
// else none, and checks the result is an active workspace of the tenant.
func (s *Service) resolveWorkspace(ctx context.Context, tenantID, explicitID string, project *Project) (string, error) {
	if explicitID != "" && project.WorkspaceID != "" && explicitID != project.WorkspaceID {
		return "", fmt.Errorf("workspace %s, project workspace %s: %w",
			explicitID, project.WorkspaceID, ErrWorkspaceMismatch)
	}

	resolved := explicitID
	if resolved == "" {
		resolved = project.WorkspaceID
	}
	if resolved == "" {
		return "", nil
	}

	ws, err := s.store.GetWorkspace(ctx, tenantID, resolved)
	switch {
	case errors.Is(err, ErrNotFound):
		return "", fmt.Errorf("workspace %s: %w", resolved, ErrWorkspaceNotFound)
	case err != nil:
		return "", fmt.Errorf("get workspace: %w", err)
	case ws.Status != RecordActive:
		return "", fmt.Errorf("workspace %s: %w", resolved, ErrWorkspaceNotFound)
	}
	return resolved, nil
}

// effectivePolicy returns the tenant's active policy, or the default one
// when the tenant has none yet.
func (s *Service) effectivePolicy(ctx context.Context, tenantID string) (shift.Policy, error) {
	rec, err := s.store.ActivePolicy(ctx, tenantID)
	if errors.Is(err, ErrNotFound) {
		s.log.DebugContext(ctx, "no active policy, using default", slog.String("tenant_id", tenantID))
		return shift.DefaultPolicy(), nil
	}
	if err != nil {
		return shift.Policy{}, fmt.Errorf("get active policy: %w", err)
	}
	return rec.Policy, nil
}
