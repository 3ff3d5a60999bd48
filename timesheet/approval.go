package timesheet

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultRejectionReason is recorded when a reviewer rejects without a
// reason.
const DefaultRejectionReason = "Rejected"

// DeriveStatus computes a parent entry's status from its splits:
// APPROVED iff all are approved, REJECTED if any is rejected, otherwise
// PENDING. An entry with no splits is PENDING.
func DeriveStatus(statuses []Status) Status {
	// Deliberately not APPROVED: an entry with nothing approved is never
	// locked. Creation always writes at least one split.
	if len(statuses) == 0 {
		return StatusPending
	}

	allApproved := true
	for _, st := range statuses {
		if st == StatusRejected {
			return StatusRejected
		}
		if st != StatusApproved {
			allApproved = false
		}
	}
	if allApproved {
		return StatusApproved
	}
	return StatusPending
}

// SetStatusInput is a review action on a single split.
type SetStatusInput struct {
	SplitID   string
	Status    Status
	ActorID   string
	ActorRole Role
	// TenantID scopes the lookup; empty means any tenant (super admins).
	TenantID string
	Reason   string
}

// SetSplitStatus moves a split to a new status and re-derives its parent
// entry from all sibling splits, in one transaction.
//
// An approved split can only be re-approved (a no-op apart from the
// approval stamp); any other transition fails with
// ErrImmutableApprovedEntry and nothing is written.
func (s *Service) SetSplitStatus(ctx context.Context, in SetStatusInput) (*Split, error) {
	if !in.ActorRole.IsAdmin() {
		return nil, fmt.Errorf("only admins can approve or reject entries: %w", ErrForbidden)
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}

	now := s.now()
	var updated Split
	var parent EntryStatusUpdate

	err := s.store.WithTx(ctx, func(tx Store) error {
		split, err := tx.GetSplit(ctx, in.SplitID)
		if err != nil {
			return fmt.Errorf("split %s: %w", in.SplitID, err)
		}
		if in.TenantID != "" && split.TenantID != in.TenantID {
			return fmt.Errorf("split %s: %w", in.SplitID, ErrNotFound)
		}
		if split.Status == StatusApproved && in.Status != StatusApproved {
			return fmt.Errorf("split %s: %w", in.SplitID, ErrImmutableApprovedEntry)
		}

		update := SplitStatusUpdate{Status: in.Status}
		switch in.Status {
		case StatusApproved:
			update.ApprovedByID = in.ActorID
			update.ApprovedAt = &now
		case StatusRejected:
			update.RejectionReason = reasonOrDefault(in.Reason)
		}

		if err := tx.UpdateSplitStatus(ctx, split.ID, update); err != nil {
			return fmt.Errorf("update split: %w", err)
		}
		updated = update.Apply(*split)

		siblings, err := tx.ListEntrySplits(ctx, split.EntryID)
		if err != nil {
			return fmt.Errorf("list sibling splits: %w", err)
		}
		statuses := make([]Status, len(siblings))
		for i, sib := range siblings {
			statuses[i] = sib.Status
		}

		parent = EntryStatusUpdate{Status: DeriveStatus(statuses)}
		switch parent.Status {
		case StatusApproved:
			parent.LockedAt = &now
		case StatusRejected:
			parent.RejectionReason = reasonOrDefault(in.Reason)
		}

		if err := tx.UpdateEntryStatus(ctx, split.EntryID, parent); err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "split status updated",
		slog.String("split_id", updated.ID),
		slog.String("entry_id", updated.EntryID),
		slog.String("status", string(updated.Status)),
		slog.String("entry_status", string(parent.Status)),
		slog.String("actor_id", in.ActorID),
	)

	return &updated, nil
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return DefaultRejectionReason
	}
	return reason
}
