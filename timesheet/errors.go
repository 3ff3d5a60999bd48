/*
errors.go - Error taxonomy for the timesheet core

PURPOSE:
  Every validation failure of the orchestrator and the approval state
  machine is a distinct sentinel so callers can map it with errors.Is.
  Date-policy failures come from the shift package and are re-exported
  here for convenience.

ERROR CATEGORIES:
  1. Lookup errors     - user/project/workspace/split missing or inactive
  2. Access errors     - cross-tenant, forbidden
  3. Validation errors - bad interval, dates, workspace mismatch
  4. Conflict errors   - approved splits are immutable

SEE ALSO:
  - shift/errors.go: interval and date-policy errors
  - api/errors.go: HTTP status mapping
*/
package timesheet

import (
	"errors"

	"github.com/warp/timesheet-engine/shift"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is the generic "no such record" error returned by stores.
	ErrNotFound = errors.New("not found")

	ErrUserNotFound      = errors.New("user not found or inactive")
	ErrProjectNotFound   = errors.New("project not found or inactive")
	ErrWorkspaceNotFound = errors.New("workspace not found or inactive")

	// ErrCrossTenant is returned when a referenced user belongs to another
	// tenant than the one the request runs in.
	ErrCrossTenant = errors.New("user does not belong to this tenant")

	// ErrForbidden is returned when the actor's role does not allow the
	// operation.
	ErrForbidden = errors.New("forbidden")

	// ErrWorkspaceMismatch is returned when an explicit workspace differs
	// from the project's own workspace.
	ErrWorkspaceMismatch = errors.New("project is not linked to the selected workspace")

	// ErrImmutableApprovedEntry is returned when trying to move an approved
	// split to any other status.
	ErrImmutableApprovedEntry = errors.New("approved entries are immutable")

	// ErrInvalidStatus is returned for status values outside the known set.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidFilter is returned for report requests without a proper
	// date range.
	ErrInvalidFilter = errors.New("start and end dates are required and must be ordered")
)

// Re-exported from shift so handlers only need one package for mapping.
var (
	ErrInvalidInterval       = shift.ErrInvalidInterval
	ErrInvalidClockTime      = shift.ErrInvalidClockTime
	ErrFutureDate            = shift.ErrFutureDate
	ErrBackdateLimitExceeded = shift.ErrBackdateLimitExceeded
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidClockTime) ||
		errors.Is(err, ErrFutureDate) ||
		errors.Is(err, ErrBackdateLimitExceeded) ||
		errors.Is(err, ErrWorkspaceMismatch) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidFilter)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrWorkspaceNotFound)
}

// IsForbidden returns true for access violations.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrCrossTenant)
}

// IsConflict returns true when the request conflicts with stored state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrImmutableApprovedEntry)
}
