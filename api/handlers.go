/*
handlers.go - HTTP API handlers for the timesheet engine

PURPOSE:
  Exposes the timesheet service via REST API. Handles HTTP request/response,
  JSON serialization, identity scoping and audit logging, and delegates to
  timesheet.Service for everything else.

ENDPOINTS:
  Entries:
    GET    /api/time-entries               List splits (filters: user_id,
                                           status, start_date, end_date)
    POST   /api/time-entries               Create entry (instant or local form)
    GET    /api/time-entries/{id}/splits   Entry with its splits
    PATCH  /api/time-entries/{id}/status   Approve/reject/reopen one split

  Reports:
    GET    /api/reports                    Approved hours in a date range

  Policies:
    GET    /api/policies                   Active shift policy
    PATCH  /api/policies                   Replace shift policy (admin)

  Audit:
    GET    /api/audit-logs                 Recent audit entries (admin)

SCOPING:
  Every request runs in the caller's tenant. Super admins may pass
  tenant_id to act on another tenant, or omit it on reads to see all.
  Employees only ever see and submit their own time: user_id parameters
  are replaced with the caller's id.

AUDIT:
  Successful writes append an audit entry. A failed audit append is
  logged and does not fail the request.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing or invalid token
  - 403: Role or tenant violations
  - 404: Resource not found
  - 409: Approved entries are immutable
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - errors.go: Status mapping
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/warp/timesheet-engine/shift"
	"github.com/warp/timesheet-engine/timesheet"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 500
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	svc   *timesheet.Service
	audit timesheet.AuditLog
	clock clockwork.Clock
	log   *slog.Logger
}

// NewHandler creates a handler. A nil clock means the real clock.
func NewHandler(log *slog.Logger, svc *timesheet.Service, audit timesheet.AuditLog, clock clockwork.Clock) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, audit: audit, clock: clock, log: log.With("component", "api")}
}

// =============================================================================
// HEALTH
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

// ListEntries returns splits, newest local date first.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	q := r.URL.Query()

	filter := timesheet.SplitFilter{
		TenantID: readTenant(id, q.Get("tenant_id")),
		UserID:   scopedUser(id, q.Get("user_id")),
		Status:   timesheet.Status(q.Get("status")),
	}
	var err error
	if filter.From, err = optionalDate(q.Get("start_date")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date", err)
		return
	}
	if filter.To, err = optionalDate(q.Get("end_date")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date", err)
		return
	}

	splits, err := h.svc.ListSplits(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSplitDTOs(splits))
}

// CreateEntry logs a work interval for the caller or, for admins, for any
// user of the tenant.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "project_id is required", nil)
		return
	}

	tenantID := writeTenant(id, req.TenantID)
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	userID := scopedUser(id, req.UserID)
	if userID == "" {
		userID = id.UserID
	}

	start, end, err := h.interval(req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.svc.CreateEntry(r.Context(), timesheet.CreateEntryInput{
		TenantID:    tenantID,
		ActorID:     id.UserID,
		ActorRole:   id.Role,
		UserID:      userID,
		ProjectID:   req.ProjectID,
		WorkspaceID: req.WorkspaceID,
		Start:       start,
		End:         end,
		Notes:       req.Notes,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.record(r, timesheet.AuditEntry{
		TenantID: tenantID,
		ActorID:  id.UserID,
		Action:   timesheet.AuditEntryCreated,
		Entity:   "time_entry",
		EntityID: res.Entry.ID,
		Details: map[string]any{
			"user_id":     userID,
			"split_count": len(res.Splits),
			"start_time":  res.Entry.StartTime,
			"end_time":    res.Entry.EndTime,
		},
	})

	writeJSON(w, http.StatusCreated, CreateEntryResponse{
		Entry:  toEntryDTO(res.Entry),
		Splits: toSplitDTOs(res.Splits),
	})
}

// GetEntrySplits returns a parent entry and its splits in chronological
// order.
func (h *Handler) GetEntrySplits(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	entryID := chi.URLParam(r, "id")

	entry, splits, err := h.svc.EntrySplits(r.Context(), readTenant(id, ""), entryID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !id.Role.IsAdmin() && entry.UserID != id.UserID {
		h.writeServiceError(w, r, fmt.Errorf("entry %s: %w", entryID, timesheet.ErrNotFound))
		return
	}

	writeJSON(w, http.StatusOK, CreateEntryResponse{
		Entry:  toEntryDTO(*entry),
		Splits: toSplitDTOs(splits),
	})
}

// SetStatus approves, rejects or reopens one split. {id} is the split id.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	splitID := chi.URLParam(r, "id")

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	status := timesheet.Status(req.Status)
	split, err := h.svc.SetSplitStatus(r.Context(), timesheet.SetStatusInput{
		SplitID:   splitID,
		Status:    status,
		ActorID:   id.UserID,
		ActorRole: id.Role,
		TenantID:  readTenant(id, ""),
		Reason:    req.Reason,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	action := timesheet.AuditSplitReopened
	switch status {
	case timesheet.StatusApproved:
		action = timesheet.AuditSplitApproved
	case timesheet.StatusRejected:
		action = timesheet.AuditSplitRejected
	}
	h.record(r, timesheet.AuditEntry{
		TenantID: split.TenantID,
		ActorID:  id.UserID,
		Action:   action,
		Entity:   "time_entry_split",
		EntityID: split.ID,
		Details: map[string]any{
			"entry_id": split.EntryID,
			"reason":   split.RejectionReason,
		},
	})

	writeJSON(w, http.StatusOK, toSplitDTO(*split))
}

// =============================================================================
// REPORTS
// =============================================================================

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	q := r.URL.Query()

	from, err := optionalDate(q.Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date", err)
		return
	}
	to, err := optionalDate(q.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date", err)
		return
	}

	rep, err := h.svc.Report(r.Context(), timesheet.ReportFilter{
		TenantID: readTenant(id, q.Get("tenant_id")),
		UserID:   scopedUser(id, q.Get("user_id")),
		From:     from,
		To:       to,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{
		From:   from,
		To:     to,
		Totals: toHoursDTO(rep.Totals),
		Rows:   toSplitDTOs(rep.Rows),
	})
}

// =============================================================================
// POLICIES
// =============================================================================

// GetPolicy returns the tenant's active policy, or the default one with
// is_default set.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	tenantID := writeTenant(id, r.URL.Query().Get("tenant_id"))

	rec, err := h.svc.ActivePolicy(r.Context(), tenantID)
	if timesheet.IsNotFound(err) {
		dto := toPolicyDTO(shift.DefaultPolicy())
		dto.IsDefault = true
		writeJSON(w, http.StatusOK, dto)
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	dto := toPolicyDTO(rec.Policy)
	dto.ID = rec.ID
	dto.EffectiveFrom = &rec.EffectiveFrom
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req UpdatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	policy, err := shift.ParsePolicy(req.EveningStart, req.EveningEnd, req.NightStart, req.NightEnd)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	tenantID := writeTenant(id, r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	rec, err := h.svc.UpdatePolicy(r.Context(), timesheet.UpdatePolicyInput{
		TenantID:  tenantID,
		ActorID:   id.UserID,
		ActorRole: id.Role,
		Policy:    policy,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.record(r, timesheet.AuditEntry{
		TenantID: tenantID,
		ActorID:  id.UserID,
		Action:   timesheet.AuditPolicyUpdated,
		Entity:   "shift_policy",
		EntityID: rec.ID,
		Details: map[string]any{
			"evening_start": req.EveningStart,
			"evening_end":   req.EveningEnd,
			"night_start":   req.NightStart,
			"night_end":     req.NightEnd,
		},
	})

	dto := toPolicyDTO(rec.Policy)
	dto.ID = rec.ID
	dto.EffectiveFrom = &rec.EffectiveFrom
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// AUDIT
// =============================================================================

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	q := r.URL.Query()

	limit := defaultAuditLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = min(n, maxAuditLimit)
	}

	filter := timesheet.AuditFilter{
		TenantID: readTenant(id, q.Get("tenant_id")),
		ActorID:  q.Get("actor_id"),
		Limit:    limit,
	}
	if action := q.Get("action"); action != "" {
		filter.Actions = []timesheet.AuditAction{timesheet.AuditAction(action)}
	}

	entries, err := h.audit.QueryAudit(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	out := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = toAuditDTO(e)
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// HELPERS
// =============================================================================

func identity(r *http.Request) Identity {
	id, _ := IdentityFrom(r.Context())
	return id
}

// readTenant scopes reads: the caller's tenant, or for super admins the
// requested one (empty meaning all tenants).
func readTenant(id Identity, requested string) string {
	if id.Role.CrossTenant() {
		return requested
	}
	return id.TenantID
}

// writeTenant scopes writes: super admins default to their own tenant when
// none is requested.
func writeTenant(id Identity, requested string) string {
	if id.Role.CrossTenant() && requested != "" {
		return requested
	}
	return id.TenantID
}

// scopedUser pins employees to themselves.
func scopedUser(id Identity, requested string) string {
	if !id.Role.IsAdmin() {
		return id.UserID
	}
	return requested
}

// interval resolves the request's time range to UTC instants. The local
// form is read in the service zone and may not start in the future.
func (h *Handler) interval(req CreateEntryRequest) (time.Time, time.Time, error) {
	if !req.isLocalForm() {
		if req.StartTime == nil || req.EndTime == nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_time and end_time are required", errBadRequest)
		}
		return req.StartTime.UTC(), req.EndTime.UTC(), nil
	}

	date, err := shift.ParseDate(req.LocalDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: local_date: %v", errBadRequest, err)
	}
	from, err := shift.ParseClock(req.StartClock)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_clock: %w", err)
	}
	to, err := shift.ParseClock(req.EndClock)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_clock: %w", err)
	}

	start, end := shift.LocalInterval(date, from, to, h.svc.Location())
	if err := h.svc.Guard().CheckNotFuture(start); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func optionalDate(raw string) (shift.Date, error) {
	if raw == "" {
		return shift.Date{}, nil
	}
	return shift.ParseDate(raw)
}

// record appends an audit entry for a completed write.
func (h *Handler) record(r *http.Request, e timesheet.AuditEntry) {
	e.ID = uuid.NewString()
	e.At = h.clock.Now().UTC()
	if err := h.audit.AppendAudit(r.Context(), e); err != nil {
		h.log.WarnContext(r.Context(), "audit append failed",
			slog.String("action", string(e.Action)),
			slog.String("entity_id", e.EntityID),
			slog.String("error", err.Error()),
		)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
