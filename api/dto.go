/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Hour figures leave
  the API as numbers with at most two decimals; internally they stay
  decimal.Decimal.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Entries:  EntryDTO, SplitDTO, CreateEntryRequest, CreateEntryResponse
  Approval: SetStatusRequest
  Reports:  ReportResponse, HoursDTO
  Policies: PolicyDTO, UpdatePolicyRequest
  Audit:    AuditEntryDTO

VALIDATION:
  Validation is done in handlers and the timesheet service, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - timesheet/types.go: Domain types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/shift"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// ENTRIES
// =============================================================================

// CreateEntryRequest accepts either absolute instants (start_time/end_time)
// or a local date with wall-clock times. An end clock not after the start
// clock means the next day.
type CreateEntryRequest struct {
	TenantID    string     `json:"tenant_id,omitempty"`
	UserID      string     `json:"user_id,omitempty"`
	ProjectID   string     `json:"project_id"`
	WorkspaceID string     `json:"workspace_id,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	LocalDate   string     `json:"local_date,omitempty"`
	StartClock  string     `json:"start_clock,omitempty"`
	EndClock    string     `json:"end_clock,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

func (r CreateEntryRequest) isLocalForm() bool {
	return r.LocalDate != "" || r.StartClock != "" || r.EndClock != ""
}

type EntryDTO struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenant_id"`
	UserID          string     `json:"user_id"`
	CreatedByID     string     `json:"created_by_id"`
	ProjectID       string     `json:"project_id"`
	WorkspaceID     string     `json:"workspace_id,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	TotalHours      float64    `json:"total_hours"`
	EveningHours    float64    `json:"evening_hours"`
	NightHours      float64    `json:"night_hours"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	LockedAt        *time.Time `json:"locked_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type SplitDTO struct {
	ID              string     `json:"id"`
	EntryID         string     `json:"entry_id"`
	TenantID        string     `json:"tenant_id"`
	UserID          string     `json:"user_id"`
	ProjectID       string     `json:"project_id"`
	LocalDate       shift.Date `json:"local_date"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	TotalHours      float64    `json:"total_hours"`
	EveningHours    float64    `json:"evening_hours"`
	NightHours      float64    `json:"night_hours"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	ApprovedByID    string     `json:"approved_by_id,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

type CreateEntryResponse struct {
	Entry  EntryDTO   `json:"entry"`
	Splits []SplitDTO `json:"splits"`
}

// =============================================================================
// APPROVAL
// =============================================================================

type SetStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// =============================================================================
// REPORTS
// =============================================================================

type HoursDTO struct {
	TotalHours   float64 `json:"total_hours"`
	EveningHours float64 `json:"evening_hours"`
	NightHours   float64 `json:"night_hours"`
}

type ReportResponse struct {
	From   shift.Date `json:"start_date"`
	To     shift.Date `json:"end_date"`
	Totals HoursDTO   `json:"totals"`
	Rows   []SplitDTO `json:"rows"`
}

// =============================================================================
// POLICIES
// =============================================================================

type PolicyDTO struct {
	ID            string          `json:"id,omitempty"`
	EveningStart  shift.ClockTime `json:"evening_start"`
	EveningEnd    shift.ClockTime `json:"evening_end"`
	NightStart    shift.ClockTime `json:"night_start"`
	NightEnd      shift.ClockTime `json:"night_end"`
	EffectiveFrom *time.Time      `json:"effective_from,omitempty"`
	// IsDefault is true when the tenant has not stored a policy yet.
	IsDefault bool `json:"is_default"`
}

type UpdatePolicyRequest struct {
	EveningStart string `json:"evening_start"`
	EveningEnd   string `json:"evening_end"`
	NightStart   string `json:"night_start"`
	NightEnd     string `json:"night_end"`
}

// =============================================================================
// AUDIT
// =============================================================================

type AuditEntryDTO struct {
	ID       string         `json:"id"`
	TenantID string         `json:"tenant_id"`
	ActorID  string         `json:"actor_id"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entity_id"`
	Details  map[string]any `json:"details,omitempty"`
	At       time.Time      `json:"at"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func hours(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toEntryDTO(e timesheet.Entry) EntryDTO {
	return EntryDTO{
		ID:              e.ID,
		TenantID:        e.TenantID,
		UserID:          e.UserID,
		CreatedByID:     e.CreatedByID,
		ProjectID:       e.ProjectID,
		WorkspaceID:     e.WorkspaceID,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		TotalHours:      hours(e.TotalHours),
		EveningHours:    hours(e.EveningHours),
		NightHours:      hours(e.NightHours),
		Status:          string(e.Status),
		Notes:           e.Notes,
		RejectionReason: e.RejectionReason,
		LockedAt:        e.LockedAt,
		CreatedAt:       e.CreatedAt,
	}
}

func toSplitDTO(s timesheet.Split) SplitDTO {
	return SplitDTO{
		ID:              s.ID,
		EntryID:         s.EntryID,
		TenantID:        s.TenantID,
		UserID:          s.UserID,
		ProjectID:       s.ProjectID,
		LocalDate:       s.LocalDate,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		TotalHours:      hours(s.TotalHours),
		EveningHours:    hours(s.EveningHours),
		NightHours:      hours(s.NightHours),
		Status:          string(s.Status),
		Notes:           s.Notes,
		ApprovedByID:    s.ApprovedByID,
		ApprovedAt:      s.ApprovedAt,
		RejectionReason: s.RejectionReason,
	}
}

func toSplitDTOs(splits []timesheet.Split) []SplitDTO {
	out := make([]SplitDTO, len(splits))
	for i, s := range splits {
		out[i] = toSplitDTO(s)
	}
	return out
}

func toHoursDTO(s shift.Summary) HoursDTO {
	return HoursDTO{
		TotalHours:   hours(s.TotalHours),
		EveningHours: hours(s.EveningHours),
		NightHours:   hours(s.NightHours),
	}
}

func toPolicyDTO(p shift.Policy) PolicyDTO {
	return PolicyDTO{
		EveningStart: p.EveningStart,
		EveningEnd:   p.EveningEnd,
		NightStart:   p.NightStart,
		NightEnd:     p.NightEnd,
	}
}

func toAuditDTO(e timesheet.AuditEntry) AuditEntryDTO {
	return AuditEntryDTO{
		ID:       e.ID,
		TenantID: e.TenantID,
		ActorID:  e.ActorID,
		Action:   string(e.Action),
		Entity:   e.Entity,
		EntityID: e.EntityID,
		Details:  e.Details,
		At:       e.At,
	}
}
