package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/config"
)

func TestFileSink_ReadMissing(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "none.json"))
	if _, err := sink.Read(context.Background()); !errors.Is(err, appointment.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestFileSink_WriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "appointments.json")
	sink := NewFileSink(path)
	ctx := context.Background()

	if err := sink.Write(ctx, []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := sink.Write(ctx, []byte(`[{"id":"b"}]`)); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := sink.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `[{"id":"b"}]` {
		t.Errorf("expected last write to win, got %s", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestFileSink_StoreRoundTrip(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "appointments.json"))

	store := appointment.NewStore(sink, nil)
	r := appointment.Record{
		ID:       "a",
		Patient:  appointment.PatientRef{Name: "Jane Doe", Initials: "JD"},
		Schedule: appointment.Schedule{Date: "2025-01-15", StartTime: "10:00", EndTime: "10:30"},
		Status:   appointment.StatusBooked,
	}
	if err := store.Add(r); err != nil {
		t.Fatalf("add: %v", err)
	}
	store.Wait()

	reloaded := appointment.NewStore(sink, nil)
	if err := reloaded.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, ok := reloaded.Get("a")
	if !ok || got.Patient.Name != "Jane Doe" {
		t.Errorf("record not restored: %+v", got)
	}
}

func TestNopSink(t *testing.T) {
	var s NopSink
	if err := s.Write(context.Background(), []byte("x")); err != nil {
		t.Errorf("write: %v", err)
	}
	if _, err := s.Read(context.Background()); !errors.Is(err, appointment.ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestOpen_FileAndNone(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snap.json")

	b, closeFn, err := Open(ctx, config.Config{StorageBackend: config.BackendFile, SnapshotPath: path}, zap.NewNop())
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	defer closeFn()
	if fs, ok := b.(*FileSink); !ok || fs.Path() != path {
		t.Errorf("expected file sink at %s, got %T", path, b)
	}
	if err := b.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}

	b, _, err = Open(ctx, config.Config{StorageBackend: config.BackendNone}, zap.NewNop())
	if err != nil {
		t.Fatalf("open none: %v", err)
	}
	if _, ok := b.(NopSink); !ok {
		t.Errorf("expected NopSink, got %T", b)
	}
}
