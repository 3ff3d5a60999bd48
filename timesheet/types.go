/*
Package timesheet implements time entries, their per-day splits and the
approval workflow on top of the shift math.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entry: what the employee submitted (possibly spanning midnight)
  - Split: one local-calendar-day piece of an Entry; the unit of approval
  - Role: closed set of actor roles with a capability check
  - User / Project / Workspace: the tenant directory records the
    orchestrator validates against

DERIVED DATA:
  An Entry's status and hour totals are never edited directly. Hours are
  fixed at creation as the sum of its splits; status is re-derived from all
  sibling splits after every approval action (see approval.go).

SEE ALSO:
  - service.go: Service construction
  - create.go: Entry creation orchestrator
  - approval.go: Split status transitions
  - store.go: Persistence interfaces
*/
package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/shift"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the approval state of a split or an entry.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// RecordStatus marks directory records as usable or retired.
type RecordStatus string

const (
	RecordActive   RecordStatus = "ACTIVE"
	RecordInactive RecordStatus = "INACTIVE"
)

// =============================================================================
// ROLES
// =============================================================================

type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleCompanyAdmin Role = "COMPANY_ADMIN"
	RoleEmployee     Role = "EMPLOYEE"
)

// ParseRole accepts only the known roles.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleEmployee:
		return r, true
	}
	return "", false
}

// IsAdmin reports whether the role may act on other users' time and review
// entries.
func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleCompanyAdmin
}

// CrossTenant reports whether the role may act on any tenant.
func (r Role) CrossTenant() bool {
	return r == RoleSuperAdmin
}

// CanSubmitFor reports whether an actor may submit time for userID.
// Employees may only submit their own time.
func (r Role) CanSubmitFor(actorID, userID string) bool {
	return r.IsAdmin() || actorID == userID
}

// =============================================================================
// DIRECTORY RECORDS
// =============================================================================

type User struct {
	ID                string
	TenantID          string
	Name              string
	Email             string
	Role              Role
	Status            RecordStatus
	BackdateLimitDays int
}

type Project struct {
	ID          string
	TenantID    string
	Name        string
	WorkspaceID string // empty when the project is not tied to a workspace
	Status      RecordStatus
}

type Workspace struct {
	ID       string
	TenantID string
	Name     string
	Status   RecordStatus
}

// PolicyRecord is a persisted shift policy version.
type PolicyRecord struct {
	ID            string
	TenantID      string
	Policy        shift.Policy
	EffectiveFrom time.Time
	IsActive      bool
}

// =============================================================================
// ENTRIES AND SPLITS
// =============================================================================

// Entry is the parent record of one submission.
type Entry struct {
	ID              string
	TenantID        string
	UserID          string
	CreatedByID     string
	ProjectID       string
	WorkspaceID     string
	StartTime       time.Time
	EndTime         time.Time
	TotalHours      decimal.Decimal
	EveningHours    decimal.Decimal
	NightHours      decimal.Decimal
	Status          Status
	Notes           string
	RejectionReason string
	LockedAt        *time.Time
	CreatedAt       time.Time
}

// Hours returns the entry's hour figures.
func (e Entry) Hours() shift.Summary {
	return shift.Summary{TotalHours: e.TotalHours, EveningHours: e.EveningHours, NightHours: e.NightHours}
}

// Split is one local-day piece of an Entry.
type Split struct {
	ID              string
	TenantID        string
	EntryID         string
	UserID          string
	ProjectID       string
	LocalDate       shift.Date
	StartTime       time.Time
	EndTime         time.Time
	TotalHours      decimal.Decimal
	EveningHours    decimal.Decimal
	NightHours      decimal.Decimal
	Status          Status
	Notes           string
	ApprovedByID    string
	ApprovedAt      *time.Time
	RejectionReason string
	CreatedAt       time.Time
}

// Hours returns the split's hour figures.
func (s Split) Hours() shift.Summary {
	return shift.Summary{TotalHours: s.TotalHours, EveningHours: s.EveningHours, NightHours: s.NightHours}
}

// SplitStatusUpdate is the full set of review fields written on a split.
type SplitStatusUpdate struct {
	Status          Status
	ApprovedByID    string
	ApprovedAt      *time.Time
	RejectionReason string
}

// Apply returns a copy of s with the update applied.
func (u SplitStatusUpdate) Apply(s Split) Split {
	s.Status = u.Status
	s.ApprovedByID = u.ApprovedByID
	s.ApprovedAt = u.ApprovedAt
	s.RejectionReason = u.RejectionReason
	return s
}

// EntryStatusUpdate is the set of derived fields written on an entry.
type EntryStatusUpdate struct {
	Status          Status
	RejectionReason string
	LockedAt        *time.Time
}

// Apply returns a copy of e with the update applied.
func (u EntryStatusUpdate) Apply(e Entry) Entry {
	e.Status = u.Status
	e.RejectionReason = u.RejectionReason
	e.LockedAt = u.LockedAt
	return e
}

// =============================================================================
// QUERIES
// =============================================================================

// SplitFilter selects splits for listing. Zero fields do not filter.
type SplitFilter struct {
	TenantID string
	UserID   string
	Status   Status
	From     shift.Date
	To       shift.Date
}
