package timesheet

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/warp/timesheet-engine/shift"
)

// Service is the timesheet core. It is safe for concurrent use as long as
// the store is.
type Service struct {
	store TxStore
	clock clockwork.Clock
	loc   *time.Location
	guard *shift.Guard
	log   *slog.Logger
	newID func() string
}

// NewService creates a Service that splits and guards entries in loc.
// A nil clock means the real wall clock.
func NewService(log *slog.Logger, store TxStore, clock clockwork.Clock, loc *time.Location) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store: store,
		clock: clock,
		loc:   loc,
		guard: shift.NewGuard(clock, loc),
		log:   log.With("service", "timesheet"),
		newID: uuid.NewString,
	}
}

// Location returns the zone entries are split in.
func (s *Service) Location() *time.Location { return s.loc }

// Guard returns the backdate/future guard bound to the service clock.
func (s *Service) Guard() *shift.Guard { return s.guard }

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}
