// Package store provides an in-memory timesheet.TxStore.
package store

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps everything in maps guarded by one RWMutex. WithTx holds the
// write lock for the whole callback and restores a snapshot on error, so
// readers never observe a half-applied group.
type Memory struct {
	mu sync.RWMutex
	st *state
}

var (
	_ timesheet.TxStore  = (*Memory)(nil)
	_ timesheet.AuditLog = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{st: newState()}
}

// =============================================================================
// SEEDING
// =============================================================================

func (m *Memory) SaveUser(u timesheet.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.users[u.ID] = u
}

func (m *Memory) SaveProject(p timesheet.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.projects[p.ID] = p
}

func (m *Memory) SaveWorkspace(w timesheet.Workspace) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.workspaces[w.ID] = w
}

// =============================================================================
// timesheet.Store
// =============================================================================

func (m *Memory) GetUser(ctx context.Context, id string) (*timesheet.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.GetUser(ctx, id)
}

func (m *Memory) GetProject(ctx context.Context, tenantID, id string) (*timesheet.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.GetProject(ctx, tenantID, id)
}

func (m *Memory) GetWorkspace(ctx context.Context, tenantID, id string) (*timesheet.Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.GetWorkspace(ctx, tenantID, id)
}

func (m *Memory) ActivePolicy(ctx context.Context, tenantID string) (*timesheet.PolicyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ActivePolicy(ctx, tenantID)
}

func (m *Memory) ReplaceActivePolicy(ctx context.Context, p timesheet.PolicyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.ReplaceActivePolicy(ctx, p)
}

func (m *Memory) InsertEntry(ctx context.Context, e timesheet.Entry, splits []timesheet.Split) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.InsertEntry(ctx, e, splits)
}

func (m *Memory) GetEntry(ctx context.Context, id string) (*timesheet.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.GetEntry(ctx, id)
}

func (m *Memory) UpdateEntryStatus(ctx context.Context, id string, u timesheet.EntryStatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.UpdateEntryStatus(ctx, id, u)
}

func (m *Memory) GetSplit(ctx context.Context, id string) (*timesheet.Split, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.GetSplit(ctx, id)
}

func (m *Memory) UpdateSplitStatus(ctx context.Context, id string, u timesheet.SplitStatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.UpdateSplitStatus(ctx, id, u)
}

func (m *Memory) ListEntrySplits(ctx context.Context, entryID string) ([]timesheet.Split, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListEntrySplits(ctx, entryID)
}

func (m *Memory) ListSplits(ctx context.Context, f timesheet.SplitFilter) ([]timesheet.Split, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListSplits(ctx, f)
}

// WithTx runs fn against the live state under the write lock and rolls
// back to a snapshot if fn fails.
func (m *Memory) WithTx(_ context.Context, fn func(timesheet.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	if err := fn(m.st); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

// =============================================================================
// timesheet.AuditLog
// =============================================================================

func (m *Memory) AppendAudit(_ context.Context, e timesheet.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.audit = append(m.st.audit, e)
	return nil
}

func (m *Memory) QueryAudit(_ context.Context, f timesheet.AuditFilter) ([]timesheet.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []timesheet.AuditEntry
	for i := len(m.st.audit) - 1; i >= 0; i-- {
		e := m.st.audit[i]
		if f.TenantID != "" && e.TenantID != f.TenantID {
			continue
		}
		if f.ActorID != "" && e.ActorID != f.ActorID {
			continue
		}
		if len(f.Actions) > 0 && !containsAction(f.Actions, e.Action) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func containsAction(actions []timesheet.AuditAction, a timesheet.AuditAction) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

// =============================================================================
// STATE - unlocked implementation shared by Memory and its transactions
// =============================================================================

type state struct {
	users      map[string]timesheet.User
	projects   map[string]timesheet.Project
	workspaces map[string]timesheet.Workspace
	policies   map[string][]timesheet.PolicyRecord // by tenant, oldest first
	entries    map[string]timesheet.Entry
	splits     map[string]timesheet.Split
	audit      []timesheet.AuditEntry
}

func newState() *state {
	return &state{
		users:      make(map[string]timesheet.User),
		projects:   make(map[string]timesheet.Project),
		workspaces: make(map[string]timesheet.Workspace),
		policies:   make(map[string][]timesheet.PolicyRecord),
		entries:    make(map[string]timesheet.Entry),
		splits:     make(map[string]timesheet.Split),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:      maps.Clone(s.users),
		projects:   maps.Clone(s.projects),
		workspaces: maps.Clone(s.workspaces),
		policies:   make(map[string][]timesheet.PolicyRecord, len(s.policies)),
		entries:    maps.Clone(s.entries),
		splits:     maps.Clone(s.splits),
		audit:      append([]timesheet.AuditEntry(nil), s.audit...),
	}
	for k, v := range s.policies {
		c.policies[k] = append([]timesheet.PolicyRecord(nil), v...)
	}
	return c
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, timesheet.ErrNotFound)
}

func (s *state) GetUser(_ context.Context, id string) (*timesheet.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (s *state) GetProject(_ context.Context, tenantID, id string) (*timesheet.Project, error) {
	p, ok := s.projects[id]
	if !ok || p.TenantID != tenantID {
		return nil, notFound("project", id)
	}
	return &p, nil
}

func (s *state) GetWorkspace(_ context.Context, tenantID, id string) (*timesheet.Workspace, error) {
	w, ok := s.workspaces[id]
	if !ok || w.TenantID != tenantID {
		return nil, notFound("workspace", id)
	}
	return &w, nil
}

func (s *state) ActivePolicy(_ context.Context, tenantID string) (*timesheet.PolicyRecord, error) {
	var active *timesheet.PolicyRecord
	for i := range s.policies[tenantID] {
		p := s.policies[tenantID][i]
		if p.IsActive && (active == nil || p.EffectiveFrom.After(active.EffectiveFrom)) {
			active = &p
		}
	}
	if active == nil {
		return nil, notFound("policy for tenant", tenantID)
	}
	return active, nil
}

func (s *state) ReplaceActivePolicy(_ context.Context, p timesheet.PolicyRecord) error {
	versions := s.policies[p.TenantID]
	for i := range versions {
		versions[i].IsActive = false
	}
	p.IsActive = true
	s.policies[p.TenantID] = append(versions, p)
	return nil
}

func (s *state) InsertEntry(_ context.Context, e timesheet.Entry, splits []timesheet.Split) error {
	if _, exists := s.entries[e.ID]; exists {
		return fmt.Errorf("entry %s already exists", e.ID)
	}
	for _, sp := range splits {
		if _, exists := s.splits[sp.ID]; exists {
			return fmt.Errorf("split %s already exists", sp.ID)
		}
	}
	s.entries[e.ID] = e
	for _, sp := range splits {
		s.splits[sp.ID] = sp
	}
	return nil
}

func (s *state) GetEntry(_ context.Context, id string) (*timesheet.Entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, notFound("entry", id)
	}
	return &e, nil
}

func (s *state) UpdateEntryStatus(_ context.Context, id string, u timesheet.EntryStatusUpdate) error {
	e, ok := s.entries[id]
	if !ok {
		return notFound("entry", id)
	}
	s.entries[id] = u.Apply(e)
	return nil
}

func (s *state) GetSplit(_ context.Context, id string) (*timesheet.Split, error) {
	sp, ok := s.splits[id]
	if !ok {
		return nil, notFound("split", id)
	}
	return &sp, nil
}

func (s *state) UpdateSplitStatus(_ context.Context, id string, u timesheet.SplitStatusUpdate) error {
	sp, ok := s.splits[id]
	if !ok {
		return notFound("split", id)
	}
	if sp.Status == timesheet.StatusApproved && u.Status != timesheet.StatusApproved {
		return fmt.Errorf("split %s: %w", id, timesheet.ErrImmutableApprovedEntry)
	}
	s.splits[id] = u.Apply(sp)
	return nil
}

func (s *state) ListEntrySplits(_ context.Context, entryID string) ([]timesheet.Split, error) {
	var out []timesheet.Split
	for _, sp := range s.splits {
		if sp.EntryID == entryID {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return chronological(out[i], out[j]) })
	return out, nil
}

func (s *state) ListSplits(_ context.Context, f timesheet.SplitFilter) ([]timesheet.Split, error) {
	var out []timesheet.Split
	for _, sp := range s.splits {
		if matches(sp, f) {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return chronological(out[j], out[i]) })
	return out, nil
}

func matches(sp timesheet.Split, f timesheet.SplitFilter) bool {
	switch {
	case f.TenantID != "" && sp.TenantID != f.TenantID:
		return false
	case f.UserID != "" && sp.UserID != f.UserID:
		return false
	case f.Status != "" && sp.Status != f.Status:
		return false
	case !f.From.IsZero() && sp.LocalDate.Before(f.From):
		return false
	case !f.To.IsZero() && sp.LocalDate.After(f.To):
		return false
	}
	return true
}

func chronological(a, b timesheet.Split) bool {
	if a.LocalDate != b.LocalDate {
		return a.LocalDate.Before(b.LocalDate)
	}
	return a.StartTime.Before(b.StartTime)
}
