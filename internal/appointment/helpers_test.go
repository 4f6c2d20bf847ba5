package appointment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hackgods/clinic-appointments/internal/catalog"
)

// ---------- Helpers ----------

type memorySink struct {
	mu       sync.Mutex
	writes   int
	last     []byte
	stored   []byte
	writeErr error
	readErr  error
}

func (m *memorySink) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.last = append([]byte(nil), data...)
	if m.writeErr != nil {
		return m.writeErr
	}
	m.stored = m.last
	return nil
}

func (m *memorySink) Read(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.stored == nil {
		return nil, ErrSnapshotNotFound
	}
	return m.stored, nil
}

func (m *memorySink) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

var errSinkDown = errors.New("sink down")

type countingMetrics struct {
	mu        sync.Mutex
	mutations map[string]int
	bookings  map[string]int
	failures  int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{mutations: map[string]int{}, bookings: map[string]int{}}
}

func (c *countingMetrics) ObserveMutation(op string) {
	c.mu.Lock()
	c.mutations[op]++
	c.mu.Unlock()
}

func (c *countingMetrics) ObserveBooking(status string) {
	c.mu.Lock()
	c.bookings[status]++
	c.mu.Unlock()
}

func (c *countingMetrics) ObservePersist(_ time.Duration, err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	c.failures++
	c.mu.Unlock()
}

func newTestCatalog() *catalog.StaticProvider {
	return catalog.NewStaticProvider(catalog.Catalog{
		Patients: []catalog.Patient{
			{Value: "p-jane", Label: "Jane Doe", Contact: "555-0100"},
			{Value: "p-mad", Label: "Madonna", Initials: "MX"},
		},
		Doctors: []catalog.Doctor{
			{Value: "d-smith", Label: "Dr. Smith", Clinic: "Downtown"},
			{Value: "d-lee", Label: "Dr. Lee"},
		},
		Services: []catalog.Service{
			{Value: "s-consult", Label: "Consultation", Description: "follow-up, routine", Charge: &catalog.Charge{Amount: 50, Currency: "CAD"}, DurationMinutes: 30},
			{Value: "s-long", Label: "Long Session", Description: "", DurationMinutes: 45},
			{Value: "s-bare", Label: "Bare"},
		},
	})
}

func rec(id, date, start string) Record {
	return Record{
		ID:       id,
		Patient:  PatientRef{Name: "Jane Doe", Initials: "JD"},
		Schedule: Schedule{Date: date, StartTime: start, EndTime: AddMinutes(start, 30)},
		Provider: "Dr. Smith",
		Service:  "Consultation",
		Status:   StatusBooked,
	}
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
