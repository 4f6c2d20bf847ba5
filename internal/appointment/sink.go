package appointment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSnapshotNotFound    = errors.New("appointment snapshot not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDuplicateID         = errors.New("appointment id already exists")
)

// Sink mirrors the store to external storage. It holds a cache of the
// in-memory list, never the source of truth.
type Sink interface {
	// Write replaces the stored snapshot with data, a JSON array of records.
	Write(ctx context.Context, data []byte) error
	// Read returns the last snapshot or ErrSnapshotNotFound.
	Read(ctx context.Context) ([]byte, error)
}

// Metrics receives store activity. A nil Metrics is replaced by a no-op.
type Metrics interface {
	ObserveMutation(op string)
	ObserveBooking(status string)
	ObservePersist(d time.Duration, err error)
}

type nopMetrics struct{}

func (nopMetrics) ObserveMutation(string) {}
func (nopMetrics) ObserveBooking(string) {}
func (nopMetrics) ObservePersist(time.Duration, error) {}
