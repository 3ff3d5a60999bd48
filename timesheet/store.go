/*
store.go - Persistence interfaces for entries, splits and the directory

PURPOSE:
  Defines the boundary between the timesheet core and the database. The
  core never holds a global client: every operation receives the store it
  should use, and transactional work receives a transaction-scoped Store.

KEY INTERFACES:
  Store:    Reads of the directory and policies, writes of entries/splits
  TxStore:  Store plus WithTx for atomic multi-row writes
  AuditLog: Append-only record of who did what when

ATOMIC GROUPS:
  An Entry and its Splits are one consistency group. Creation writes the
  parent and all children inside one WithTx; approval writes one split and
  the re-derived parent inside one WithTx.

NOT FOUND:
  Lookups return an error wrapping ErrNotFound when the record is absent.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - timesheet/store/memory.go: In-memory for testing

SEE ALSO:
  - create.go, approval.go: the transactional callers
*/
package timesheet

import (
	"context"
	"time"
)

// =============================================================================
// STORE
// =============================================================================

// Store is the persistence the core reads and writes through.
type Store interface {
	// Directory lookups. Project and workspace lookups are tenant scoped.
	GetUser(ctx context.Context, id string) (*User, error)
	GetProject(ctx context.Context, tenantID, id string) (*Project, error)
	GetWorkspace(ctx context.Context, tenantID, id string) (*Workspace, error)

	// ActivePolicy returns the tenant's active shift policy.
	ActivePolicy(ctx context.Context, tenantID string) (*PolicyRecord, error)

	// ReplaceActivePolicy deactivates the tenant's current policy and
	// stores p as the new active one.
	ReplaceActivePolicy(ctx context.Context, p PolicyRecord) error

	// InsertEntry persists a parent entry and its splits in the given order.
	InsertEntry(ctx context.Context, entry Entry, splits []Split) error

	GetEntry(ctx context.Context, id string) (*Entry, error)
	UpdateEntryStatus(ctx context.Context, id string, u EntryStatusUpdate) error

	GetSplit(ctx context.Context, id string) (*Split, error)

	// UpdateSplitStatus writes review fields. It must refuse, with
	// ErrImmutableApprovedEntry, to move an APPROVED split to another status.
	UpdateSplitStatus(ctx context.Context, id string, u SplitStatusUpdate) error

	// ListEntrySplits returns a parent's splits ordered by local date, then
	// start time.
	ListEntrySplits(ctx context.Context, entryID string) ([]Split, error)

	// ListSplits returns splits matching f ordered by local date, then start
	// time, newest first.
	ListSplits(ctx context.Context, f SplitFilter) ([]Split, error)
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// AUDIT LOG
// =============================================================================

// AuditEntry records who did what when.
type AuditEntry struct {
	ID       string
	TenantID string
	ActorID  string
	Action   AuditAction
	Entity   string
	EntityID string
	Details  map[string]any
	At       time.Time
}

type AuditAction string

const (
	AuditEntryCreated  AuditAction = "TIME_ENTRY_CREATE"
	AuditSplitApproved AuditAction = "TIME_ENTRY_APPROVE"
	AuditSplitRejected AuditAction = "TIME_ENTRY_REJECT"
	AuditSplitReopened AuditAction = "TIME_ENTRY_REOPEN"
	AuditPolicyUpdated AuditAction = "POLICY_UPDATE"
)

// AuditLog stores audit entries. Append-only.
type AuditLog interface {
	AppendAudit(ctx context.Context, entry AuditEntry) error
	QueryAudit(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
}

// AuditFilter selects audit entries, newest first. Zero fields do not
// filter; Limit 0 means no limit.
type AuditFilter struct {
	TenantID string
	ActorID  string
	Actions  []AuditAction
	Limit    int
}
