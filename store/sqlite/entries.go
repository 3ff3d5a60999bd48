package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/warp/timesheet-engine/shift"
	"github.com/warp/timesheet-engine/timesheet"
)

var entryColumns = []string{
	"id", "tenant_id", "user_id", "created_by_id", "project_id", "workspace_id",
	"start_time", "end_time", "total_hours", "evening_hours", "night_hours",
	"status", "notes", "rejection_reason", "locked_at", "created_at",
}

var splitColumns = []string{
	"id", "tenant_id", "entry_id", "user_id", "project_id", "local_date",
	"start_time", "end_time", "total_hours", "evening_hours", "night_hours",
	"status", "notes", "approved_by_id", "approved_at", "rejection_reason", "created_at",
}

// =============================================================================
// ENTRIES
// =============================================================================

func (qs queries) InsertEntry(ctx context.Context, e timesheet.Entry, splits []timesheet.Split) error {
	_, err := qs.exec(ctx, builder.
		Insert("time_entries").
		Columns(entryColumns...).
		Values(
			e.ID, e.TenantID, e.UserID, e.CreatedByID, e.ProjectID, nullString(e.WorkspaceID),
			formatTime(e.StartTime), formatTime(e.EndTime),
			e.TotalHours, e.EveningHours, e.NightHours,
			string(e.Status), nullString(e.Notes), nullString(e.RejectionReason),
			formatNullTime(e.LockedAt), formatTime(e.CreatedAt),
		))
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("entry %s already exists", e.ID)
		}
		return fmt.Errorf("insert entry: %w", err)
	}

	if len(splits) == 0 {
		return nil
	}

	insert := builder.Insert("time_entry_splits").Columns(splitColumns...)
	for _, sp := range splits {
		insert = insert.Values(
			sp.ID, sp.TenantID, sp.EntryID, sp.UserID, sp.ProjectID, sp.LocalDate.String(),
			formatTime(sp.StartTime), formatTime(sp.EndTime),
			sp.TotalHours, sp.EveningHours, sp.NightHours,
			string(sp.Status), nullString(sp.Notes), nullString(sp.ApprovedByID),
			formatNullTime(sp.ApprovedAt), nullString(sp.RejectionReason), formatTime(sp.CreatedAt),
		)
	}
	if _, err := qs.exec(ctx, insert); err != nil {
		return fmt.Errorf("insert splits: %w", err)
	}
	return nil
}

func (qs queries) GetEntry(ctx context.Context, id string) (*timesheet.Entry, error) {
	row, err := qs.queryRow(ctx, builder.
		Select(entryColumns...).
		From("time_entries").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	e, err := scanEntry(row)
	if noRows(err) {
		return nil, notFound("entry", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	return &e, nil
}

func (qs queries) UpdateEntryStatus(ctx context.Context, id string, u timesheet.EntryStatusUpdate) error {
	res, err := qs.exec(ctx, builder.
		Update("time_entries").
		Set("status", string(u.Status)).
		Set("rejection_reason", nullString(u.RejectionReason)).
		Set("locked_at", formatNullTime(u.LockedAt)).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("update entry %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("entry", id)
	}
	return nil
}

func scanEntry(row scanner) (timesheet.Entry, error) {
	var (
		e                        timesheet.Entry
		workspace, notes, reason sql.NullString
		lockedAt                 sql.NullString
		start, end, created      string
	)
	err := row.Scan(
		&e.ID, &e.TenantID, &e.UserID, &e.CreatedByID, &e.ProjectID, &workspace,
		&start, &end, &e.TotalHours, &e.EveningHours, &e.NightHours,
		&e.Status, &notes, &reason, &lockedAt, &created,
	)
	if err != nil {
		return e, err
	}

	e.WorkspaceID = workspace.String
	e.Notes = notes.String
	e.RejectionReason = reason.String
	if e.StartTime, err = parseTime(start); err != nil {
		return e, err
	}
	if e.EndTime, err = parseTime(end); err != nil {
		return e, err
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return e, err
	}
	e.LockedAt, err = parseNullTime(lockedAt)
	return e, err
}

// =============================================================================
// SPLITS
// =============================================================================

func (qs queries) GetSplit(ctx context.Context, id string) (*timesheet.Split, error) {
	row, err := qs.queryRow(ctx, builder.
		Select(splitColumns...).
		From("time_entry_splits").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	sp, err := scanSplit(row)
	if noRows(err) {
		return nil, notFound("split", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get split %s: %w", id, err)
	}
	return &sp, nil
}

// UpdateSplitStatus only touches an APPROVED row when re-approving it.
func (qs queries) UpdateSplitStatus(ctx context.Context, id string, u timesheet.SplitStatusUpdate) error {
	update := builder.
		Update("time_entry_splits").
		Set("status", string(u.Status)).
		Set("approved_by_id", nullString(u.ApprovedByID)).
		Set("approved_at", formatNullTime(u.ApprovedAt)).
		Set("rejection_reason", nullString(u.RejectionReason)).
		Where(sq.Eq{"id": id})
	if u.Status != timesheet.StatusApproved {
		update = update.Where(sq.NotEq{"status": string(timesheet.StatusApproved)})
	}

	res, err := qs.exec(ctx, update)
	if err != nil {
		return fmt.Errorf("update split %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Nothing matched: either the split is gone or it is approved.
	if _, err := qs.GetSplit(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("split %s: %w", id, timesheet.ErrImmutableApprovedEntry)
}

func (qs queries) ListEntrySplits(ctx context.Context, entryID string) ([]timesheet.Split, error) {
	return qs.listSplits(ctx, builder.
		Select(splitColumns...).
		From("time_entry_splits").
		Where(sq.Eq{"entry_id": entryID}).
		OrderBy("local_date ASC", "start_time ASC"))
}

func (qs queries) ListSplits(ctx context.Context, f timesheet.SplitFilter) ([]timesheet.Split, error) {
	query := builder.
		Select(splitColumns...).
		From("time_entry_splits").
		OrderBy("local_date DESC", "start_time DESC")

	if f.TenantID != "" {
		query = query.Where(sq.Eq{"tenant_id": f.TenantID})
	}
	if f.UserID != "" {
		query = query.Where(sq.Eq{"user_id": f.UserID})
	}
	if f.Status != "" {
		query = query.Where(sq.Eq{"status": string(f.Status)})
	}
	if !f.From.IsZero() {
		query = query.Where(sq.GtOrEq{"local_date": f.From.String()})
	}
	if !f.To.IsZero() {
		query = query.Where(sq.LtOrEq{"local_date": f.To.String()})
	}

	return qs.listSplits(ctx, query)
}

func (qs queries) listSplits(ctx context.Context, b sq.SelectBuilder) ([]timesheet.Split, error) {
	rows, err := qs.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	defer rows.Close()

	var out []timesheet.Split
	for rows.Next() {
		sp, err := scanSplit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func scanSplit(row scanner) (timesheet.Split, error) {
	var (
		sp                             timesheet.Split
		notes, approvedBy, reason      sql.NullString
		approvedAt                     sql.NullString
		localDate, start, end, created string
	)
	err := row.Scan(
		&sp.ID, &sp.TenantID, &sp.EntryID, &sp.UserID, &sp.ProjectID, &localDate,
		&start, &end, &sp.TotalHours, &sp.EveningHours, &sp.NightHours,
		&sp.Status, &notes, &approvedBy, &approvedAt, &reason, &created,
	)
	if err != nil {
		return sp, err
	}

	sp.Notes = notes.String
	sp.ApprovedByID = approvedBy.String
	sp.RejectionReason = reason.String
	if sp.LocalDate, err = shift.ParseDate(localDate); err != nil {
		return sp, fmt.Errorf("stored local date %q: %w", localDate, err)
	}
	if sp.StartTime, err = parseTime(start); err != nil {
		return sp, err
	}
	if sp.EndTime, err = parseTime(end); err != nil {
		return sp, err
	}
	if sp.CreatedAt, err = parseTime(created); err != nil {
		return sp, err
	}
	sp.ApprovedAt, err = parseNullTime(approvedAt)
	return sp, err
}
