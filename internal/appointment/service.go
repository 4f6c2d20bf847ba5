package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var ErrSlotUnavailable = errors.New("slot is not offered for this selection")

type Service struct {
	store    *Store
	composer *Composer
	slots    SlotProvider
	metrics  Metrics
	log      *zap.Logger
	now      func() time.Time
}

type ServiceOption func(*Service)

// WithClock replaces the clock used to split upcoming from past.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService wires the booking flow. Unless WithClock is given, "now" is the
// wall clock in the store's location, so segments agree with the sort order.
func NewService(store *Store, composer *Composer, slots SlotProvider, metrics Metrics, log *zap.Logger, opts ...ServiceOption) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:    store,
		composer: composer,
		slots:    slots,
		metrics:  metrics,
		log:      log,
		now:      func() time.Time { return time.Now().In(store.Location()) },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// List returns the records visible under state.
func (s *Service) List(state FilterState) []Record {
	return FilterAt(s.store.List(), state, s.now())
}

func (s *Service) Get(id string) (Record, error) {
	r, ok := s.store.Get(id)
	if !ok {
		return Record{}, ErrAppointmentNotFound
	}
	return r, nil
}

// Sessions returns the bookable sessions for q.
func (s *Service) Sessions(ctx context.Context, q SlotQuery) ([]SlotSession, error) {
	sessions, err := AvailableSlots(ctx, s.slots, q)
	if err != nil {
		return nil, fmt.Errorf("load slot sessions: %w", err)
	}
	return sessions, nil
}

// Book validates the form, checks the slot is still offered, composes the
// record and adds it to the store.
func (s *Service) Book(ctx context.Context, form BookingForm) (Record, error) {
	if err := form.Validate(); err != nil {
		return Record{}, err
	}

	sessions, err := s.Sessions(ctx, form.slotQuery())
	if err != nil {
		return Record{}, err
	}
	if !OffersSlot(sessions, form.Slot) {
		return Record{}, ErrSlotUnavailable
	}

	rec, err := s.composer.Compose(ctx, form)
	if err != nil {
		return Record{}, err
	}

	if err := s.store.Add(rec); err != nil {
		return Record{}, fmt.Errorf("add appointment: %w", err)
	}

	s.metrics.ObserveBooking(string(rec.Status))
	s.log.Info("appointment booked",
		zap.String("appointment_id", rec.ID),
		zap.String("date", rec.Schedule.Date),
		zap.String("start", rec.Schedule.StartTime),
		zap.String("status", string(rec.Status)),
	)

	return rec, nil
}

// Cancel deletes a single appointment.
func (s *Service) Cancel(id string) error {
	if s.store.RemoveByID(id) == 0 {
		return ErrAppointmentNotFound
	}
	s.log.Info("appointment deleted", zap.String("appointment_id", id))
	return nil
}

// CancelMany deletes every listed appointment and reports how many existed.
func (s *Service) CancelMany(ids []string) int {
	removed := s.store.RemoveByIDs(ids)
	if removed > 0 {
		s.log.Info("appointments deleted", zap.Int("requested", len(ids)), zap.Int("removed", removed))
	}
	return removed
}
