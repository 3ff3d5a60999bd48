/*
Package sqlite provides a SQLite-backed implementation of the timesheet
storage interfaces.

PURPOSE:
  Implements timesheet.TxStore and timesheet.AuditLog on SQLite. Queries
  are built with squirrel; the schema is versioned with goose migrations
  embedded in the binary.

INTERFACES IMPLEMENTED:
  timesheet.Store:    Directory lookups, entries, splits, policies
  timesheet.TxStore:  Store plus WithTx
  timesheet.AuditLog: Append-only audit trail

KEY TABLES:
  users, workspaces, projects: Tenant directory
  shift_policies:              Policy versions, one active per tenant
  time_entries:                Parent entries (derived hours and status)
  time_entry_splits:           Per-local-day pieces; the unit of approval
  audit_logs:                  Who did what when

IMMUTABILITY:
  UpdateSplitStatus is a conditional UPDATE that only matches an APPROVED
  row when the new status is APPROVED too. A review racing an approval
  therefore fails with ErrImmutableApprovedEntry instead of overwriting it.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single database connection.
  Code running inside WithTx must only use the Store it is handed.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging) and a busy
  timeout so concurrent readers from other processes don't fail.

USAGE:
  store, err := sqlite.New("./data/timesheet.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := timesheet.NewService(logger, store, nil, loc)

MIGRATION:
  Schema is migrated on New(). The `migrate` command runs the same
  migrations explicitly and reports the version.

SEE ALSO:
  - timesheet/store.go: Interface definitions
  - timesheet/store/memory.go: In-memory implementation for testing
  - migrations/: goose SQL files
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/warp/timesheet-engine/timesheet"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// builder emits "?" placeholders, which is what go-sqlite3 expects.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ timesheet.TxStore  = (*Store)(nil)
	_ timesheet.AuditLog = (*Store)(nil)
)

// New opens (creating if needed) the database at dbPath and migrates it.
// Use ":memory:" for a private in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if _, err := store.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func dsn(dbPath string) string {
	if dbPath == ":memory:" {
		// Named so every pooled connection sees the same database.
		return "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	}
	return dbPath + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies pending migrations and returns the resulting schema
// version.
func (s *Store) Migrate(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return 0, err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, migrations)
	if err != nil {
		return 0, fmt.Errorf("goose new provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}
	return provider.GetDBVersion(ctx)
}

// =============================================================================
// LOCKED ACCESS (timesheet.Store)
// =============================================================================

func (s *Store) read() queries { return queries{q: s.db} }

func (s *Store) GetUser(ctx context.Context, id string) (*timesheet.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetUser(ctx, id)
}

func (s *Store) GetProject(ctx context.Context, tenantID, id string) (*timesheet.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetProject(ctx, tenantID, id)
}

func (s *Store) GetWorkspace(ctx context.Context, tenantID, id string) (*timesheet.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetWorkspace(ctx, tenantID, id)
}

func (s *Store) ActivePolicy(ctx context.Context, tenantID string) (*timesheet.PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ActivePolicy(ctx, tenantID)
}

func (s *Store) GetEntry(ctx context.Context, id string) (*timesheet.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetEntry(ctx, id)
}

func (s *Store) GetSplit(ctx context.Context, id string) (*timesheet.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetSplit(ctx, id)
}

func (s *Store) ListEntrySplits(ctx context.Context, entryID string) ([]timesheet.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListEntrySplits(ctx, entryID)
}

func (s *Store) ListSplits(ctx context.Context, f timesheet.SplitFilter) ([]timesheet.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListSplits(ctx, f)
}

// Multi-statement writes always run in their own transaction.

func (s *Store) ReplaceActivePolicy(ctx context.Context, p timesheet.PolicyRecord) error {
	return s.WithTx(ctx, func(tx timesheet.Store) error {
		return tx.ReplaceActivePolicy(ctx, p)
	})
}

func (s *Store) InsertEntry(ctx context.Context, e timesheet.Entry, splits []timesheet.Split) error {
	return s.WithTx(ctx, func(tx timesheet.Store) error {
		return tx.InsertEntry(ctx, e, splits)
	})
}

func (s *Store) UpdateEntryStatus(ctx context.Context, id string, u timesheet.EntryStatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().UpdateEntryStatus(ctx, id, u)
}

func (s *Store) UpdateSplitStatus(ctx context.Context, id string, u timesheet.SplitStatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().UpdateSplitStatus(ctx, id, u)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store timesheet.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(queries{q: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries holds the unlocked statements shared by Store and its
// transactions.
type queries struct {
	q querier
}

var _ timesheet.Store = queries{}

func (qs queries) exec(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return qs.q.ExecContext(ctx, query, args...)
}

func (qs queries) queryRow(ctx context.Context, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return qs.q.QueryRowContext(ctx, query, args...), nil
}

func (qs queries) query(ctx context.Context, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return qs.q.QueryContext(ctx, query, args...)
}

// =============================================================================
// HELPERS
// =============================================================================

// timeLayout is fixed-width so TEXT columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type scanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, timesheet.ErrNotFound)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func noRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
