package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultPersistTimeout = 5 * time.Second

// Store is the authoritative in-memory list of appointments, kept sorted by
// schedule after every Add. Each effective mutation hands a full snapshot
// to the sink in the background; sink failures never undo a mutation.
type Store struct {
	mu      sync.RWMutex
	records []Record

	sink     Sink
	log      *zap.Logger
	metrics  Metrics
	loc      *time.Location
	timeout  time.Duration
	inflight sync.WaitGroup
}

type StoreOption func(*Store)

func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

func WithMetrics(m Metrics) StoreOption {
	return func(s *Store) { s.metrics = m }
}

// WithLocation sets the zone schedules are interpreted in when sorting.
func WithLocation(loc *time.Location) StoreOption {
	return func(s *Store) { s.loc = loc }
}

func WithPersistTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.timeout = d }
}

// NewStore creates a store seeded with records. A nil sink disables
// persistence.
func NewStore(sink Sink, seed []Record, opts ...StoreOption) *Store {
	s := &Store{
		records: cloneRecords(seed),
		sink:    sink,
		log:     zap.NewNop(),
		metrics: nopMetrics{},
		loc:     time.Local,
		timeout: defaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

// Load seeds the store from the sink. A missing snapshot leaves the store
// untouched and is not an error.
func (s *Store) Load(ctx context.Context) error {
	if s.sink == nil {
		return nil
	}

	raw, err := s.sink.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	records, err := DecodeSnapshot(raw)
	if err != nil {
		return err
	}

	s.ReplaceAll(records)
	s.log.Info("appointments loaded from snapshot", zap.Int("count", len(records)))
	return nil
}

// Add appends r and re-sorts the whole list by schedule.
func (s *Store) Add(r Record) error {
	s.mu.Lock()
	for _, existing := range s.records {
		if existing.ID == r.ID {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
	}

	updated := make([]Record, 0, len(s.records)+1)
	updated = append(updated, s.records...)
	updated = append(updated, cloneRecord(r))
	sortBySchedule(updated, s.loc)
	s.records = updated
	snapshot := cloneRecords(updated)
	s.mu.Unlock()

	s.metrics.ObserveMutation("add")
	s.persist(snapshot)
	return nil
}

// RemoveByID deletes the record with id and reports how many were removed.
func (s *Store) RemoveByID(id string) int {
	return s.remove("remove", func(r Record) bool { return r.ID == id })
}

// RemoveByIDs deletes every record whose id is in ids.
func (s *Store) RemoveByIDs(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return s.remove("remove_many", func(r Record) bool {
		_, ok := set[r.ID]
		return ok
	})
}

func (s *Store) remove(op string, match func(Record) bool) int {
	s.mu.Lock()
	updated := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if !match(r) {
			updated = append(updated, r)
		}
	}
	removed := len(s.records) - len(updated)
	if removed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.records = updated
	snapshot := cloneRecords(updated)
	s.mu.Unlock()

	s.metrics.ObserveMutation(op)
	s.persist(snapshot)
	return removed
}

// ReplaceAll swaps in records as-is: no sorting and no persistence, since
// the records normally come from the sink itself.
func (s *Store) ReplaceAll(records []Record) {
	s.mu.Lock()
	s.records = cloneRecords(records)
	s.mu.Unlock()
	s.metrics.ObserveMutation("replace_all")
}

// List returns a copy of the current records in store order.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records)
}

func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return cloneRecord(r), true
		}
	}
	return Record{}, false
}

// Location is the zone schedules are interpreted in.
func (s *Store) Location() *time.Location {
	return s.loc
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Wait blocks until every snapshot write started so far has returned.
func (s *Store) Wait() {
	s.inflight.Wait()
}

func (s *Store) persist(records []Record) {
	if s.sink == nil {
		return
	}

	data, err := EncodeSnapshot(records)
	if err != nil {
		s.log.Warn("unable to encode appointments snapshot", zap.Error(err))
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		err := s.sink.Write(ctx, data)
		s.metrics.ObservePersist(time.Since(start), err)
		if err != nil {
			s.log.Warn("unable to persist appointments snapshot",
				zap.Int("count", len(records)),
				zap.Error(err),
			)
		}
	}()
}

// EncodeSnapshot renders records in the format every sink stores: a JSON
// array indented with two spaces.
func EncodeSnapshot(records []Record) ([]byte, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func DecodeSnapshot(raw []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return records, nil
}

// sortBySchedule orders records by start instant. The sort is stable, so
// equal instants keep insertion order, and records whose schedule does not
// parse go last.
func sortBySchedule(records []Record, loc *time.Location) {
	type keyed struct {
		at  time.Time
		ok  bool
		rec Record
	}

	keys := make([]keyed, len(records))
	for i, r := range records {
		at, ok := ScheduleDateTime(r.Schedule, loc)
		keys[i] = keyed{at: at, ok: ok, rec: r}
	}

	slices.SortStableFunc(keys, func(a, b keyed) int {
		switch {
		case a.ok && b.ok:
			return a.at.Compare(b.at)
		case a.ok:
			return -1
		case b.ok:
			return 1
		}
		return 0
	})

	for i, k := range keys {
		records[i] = k.rec
	}
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = cloneRecord(r)
	}
	return out
}
