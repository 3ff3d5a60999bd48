package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// AUDIT LOG (timesheet.AuditLog)
// =============================================================================

// AppendAudit records an audit entry. Entries are never updated or deleted.
func (s *Store) AppendAudit(ctx context.Context, e timesheet.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var details sql.NullString
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := s.read().exec(ctx, builder.
		Insert("audit_logs").
		Columns("id", "tenant_id", "actor_id", "action", "entity", "entity_id", "details_json", "at").
		Values(e.ID, e.TenantID, e.ActorID, string(e.Action), e.Entity, e.EntityID, details, formatTime(e.At)))
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// QueryAudit returns matching entries, newest first.
func (s *Store) QueryAudit(ctx context.Context, f timesheet.AuditFilter) ([]timesheet.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := builder.
		Select("id", "tenant_id", "actor_id", "action", "entity", "entity_id", "details_json", "at").
		From("audit_logs").
		OrderBy("at DESC", "id DESC")

	if f.TenantID != "" {
		query = query.Where(sq.Eq{"tenant_id": f.TenantID})
	}
	if f.ActorID != "" {
		query = query.Where(sq.Eq{"actor_id": f.ActorID})
	}
	if len(f.Actions) > 0 {
		actions := make([]string, len(f.Actions))
		for i, a := range f.Actions {
			actions[i] = string(a)
		}
		query = query.Where(sq.Eq{"action": actions})
	}
	if f.Limit > 0 {
		query = query.Limit(uint64(f.Limit))
	}

	rows, err := s.read().query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	var out []timesheet.AuditEntry
	for rows.Next() {
		var (
			e       timesheet.AuditEntry
			details sql.NullString
			at      string
		)
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &details, &at); err != nil {
			return nil, err
		}
		if details.Valid {
			if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
				return nil, fmt.Errorf("audit %s details: %w", e.ID, err)
			}
		}
		if e.At, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
