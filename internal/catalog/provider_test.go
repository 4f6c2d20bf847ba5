package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestService_Duration(t *testing.T) {
	var nilService *Service
	if got := nilService.Duration(); got != DefaultDurationMinutes {
		t.Errorf("nil service duration = %d, want %d", got, DefaultDurationMinutes)
	}

	s := &Service{DurationMinutes: 45}
	if got := s.Duration(); got != 45 {
		t.Errorf("duration = %d, want 45", got)
	}

	s.DurationMinutes = 0
	if got := s.Duration(); got != DefaultDurationMinutes {
		t.Errorf("zero duration = %d, want default", got)
	}
}

func TestStaticProvider_Find(t *testing.T) {
	p := NewStaticProvider(Catalog{
		Patients: []Patient{{Value: "p1", Label: "Jane Doe"}},
		Doctors:  []Doctor{{Value: "d1", Label: "Dr. Who", Clinic: "Tardis"}},
		Services: []Service{{Value: "s1", Label: "Checkup"}},
	})
	ctx := context.Background()

	patient, err := FindPatient(ctx, p, "p1")
	if err != nil || patient == nil || patient.Label != "Jane Doe" {
		t.Fatalf("FindPatient = %+v, %v", patient, err)
	}

	doctor, err := FindDoctor(ctx, p, "d1")
	if err != nil || doctor == nil || doctor.Clinic != "Tardis" {
		t.Fatalf("FindDoctor = %+v, %v", doctor, err)
	}

	missing, err := FindService(ctx, p, "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown service, got %+v", missing)
	}
}

func TestStaticProvider_ReturnsCopies(t *testing.T) {
	p := NewStaticProvider(Catalog{Patients: []Patient{{Value: "p1", Label: "A"}}})

	list, _ := p.ListPatients(context.Background())
	list[0].Label = "changed"

	again, _ := p.ListPatients(context.Background())
	if again[0].Label != "A" {
		t.Errorf("provider state leaked through returned slice: %q", again[0].Label)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	c := Generate(42, 5, 2)

	if err := Save(path, c); err != nil {
		t.Fatalf("save: %v", err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	patients, _ := p.ListPatients(context.Background())
	if len(patients) != 5 {
		t.Errorf("expected 5 patients, got %d", len(patients))
	}
	services, _ := p.ListServices(context.Background())
	if len(services) != len(c.Services) {
		t.Errorf("expected %d services, got %d", len(c.Services), len(services))
	}
}

func TestLoadFile_EmptyPath(t *testing.T) {
	if _, err := LoadFile(""); !errors.Is(err, ErrEmptyCatalogPath) {
		t.Errorf("expected ErrEmptyCatalogPath, got %v", err)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(7, 3, 3)
	b := Generate(7, 3, 3)

	for i := range a.Patients {
		if a.Patients[i] != b.Patients[i] {
			t.Fatalf("patient %d differs between runs: %+v vs %+v", i, a.Patients[i], b.Patients[i])
		}
	}
	for _, d := range a.Doctors {
		if d.Clinic == "" {
			t.Errorf("doctor %s has no clinic", d.Value)
		}
	}
}

func TestOpen_FallsBackToFixtures(t *testing.T) {
	p, err := Open("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	doctors, _ := p.ListDoctors(context.Background())
	if len(doctors) != 6 {
		t.Errorf("expected 6 fixture doctors, got %d", len(doctors))
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing catalog file")
	}
}
