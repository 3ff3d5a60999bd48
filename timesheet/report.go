package timesheet

import (
	"context"
	"fmt"

	"github.com/warp/timesheet-engine/shift"
)

// ListSplits returns the splits matching f, newest local date first.
func (s *Service) ListSplits(ctx context.Context, f SplitFilter) ([]Split, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}
	splits, err := s.store.ListSplits(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	return splits, nil
}

// EntrySplits returns a parent entry and its splits in chronological order.
// tenantID scopes the lookup; empty means any tenant.
func (s *Service) EntrySplits(ctx context.Context, tenantID, entryID string) (*Entry, []Split, error) {
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, nil, fmt.Errorf("entry %s: %w", entryID, err)
	}
	if tenantID != "" && entry.TenantID != tenantID {
		return nil, nil, fmt.Errorf("entry %s: %w", entryID, ErrNotFound)
	}
	splits, err := s.store.ListEntrySplits(ctx, entryID)
	if err != nil {
		return nil, nil, fmt.Errorf("list entry splits: %w", err)
	}
	return entry, splits, nil
}

// ReportFilter selects approved splits for a payroll report. From and To
// are inclusive local dates and both required.
type ReportFilter struct {
	TenantID string
	UserID   string
	From     shift.Date
	To       shift.Date
}

// Report holds the approved splits of a range and their summed hours.
type Report struct {
	Totals shift.Summary
	Rows   []Split
}

// Report returns the approved splits in the range with their summed hours.
func (s *Service) Report(ctx context.Context, f ReportFilter) (*Report, error) {
	if f.From.IsZero() || f.To.IsZero() || f.From.After(f.To) {
		return nil, ErrInvalidFilter
	}

	rows, err := s.store.ListSplits(ctx, SplitFilter{
		TenantID: f.TenantID,
		UserID:   f.UserID,
		Status:   StatusApproved,
		From:     f.From,
		To:       f.To,
	})
	if err != nil {
		return nil, fmt.Errorf("list approved splits: %w", err)
	}

	items := make([]shift.Summary, len(rows))
	for i, r := range rows {
		items[i] = r.Hours()
	}

	return &Report{Totals: shift.Aggregate(items), Rows: rows}, nil
}
