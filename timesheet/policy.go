package timesheet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/warp/timesheet-engine/shift"
)

// ActivePolicy returns the tenant's active policy record. It wraps
// ErrNotFound when the tenant never stored one; entry creation then falls
// back to shift.DefaultPolicy.
func (s *Service) ActivePolicy(ctx context.Context, tenantID string) (*PolicyRecord, error) {
	rec, err := s.store.ActivePolicy(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("active policy for %s: %w", tenantID, err)
	}
	return rec, nil
}

// UpdatePolicyInput is a request to replace a tenant's shift policy.
type UpdatePolicyInput struct {
	TenantID  string
	ActorID   string
	ActorRole Role
	Policy    shift.Policy
}

// UpdatePolicy stores a new policy version effective now and deactivates
// the previous one. Existing entries keep the hours computed under the
// policy that was active when they were created.
func (s *Service) UpdatePolicy(ctx context.Context, in UpdatePolicyInput) (*PolicyRecord, error) {
	if !in.ActorRole.IsAdmin() {
		return nil, fmt.Errorf("only admins can change policies: %w", ErrForbidden)
	}
	for _, c := range []shift.ClockTime{in.Policy.EveningStart, in.Policy.EveningEnd, in.Policy.NightStart, in.Policy.NightEnd} {
		if c < 0 || c.Minutes() >= 24*60 {
			return nil, fmt.Errorf("%w: %d minutes", ErrInvalidClockTime, c.Minutes())
		}
	}

	rec := PolicyRecord{
		ID:            s.newID(),
		TenantID:      in.TenantID,
		Policy:        in.Policy,
		EffectiveFrom: s.now(),
		IsActive:      true,
	}

	err := s.store.WithTx(ctx, func(tx Store) error {
		return tx.ReplaceActivePolicy(ctx, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("replace policy: %w", err)
	}

	s.log.InfoContext(ctx, "shift policy updated",
		slog.String("tenant_id", in.TenantID),
		slog.String("policy_id", rec.ID),
		slog.String("evening", in.Policy.EveningStart.String()+"-"+in.Policy.EveningEnd.String()),
		slog.String("night", in.Policy.NightStart.String()+"-"+in.Policy.NightEnd.String()),
	)

	return &rec, nil
}
