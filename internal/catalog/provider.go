package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrEmptyCatalogPath = errors.New("catalog path is empty")

// Provider is the read-only source of booking options.
type Provider interface {
	ListPatients(ctx context.Context) ([]Patient, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)
	ListServices(ctx context.Context) ([]Service, error)
}

// StaticProvider serves a fixed catalog held in memory. It is never mutated
// after construction, so it is safe for concurrent readers.
type StaticProvider struct {
	catalog Catalog
}

func NewStaticProvider(c Catalog) *StaticProvider {
	return &StaticProvider{catalog: Catalog{
		Patients: append([]Patient(nil), c.Patients...),
		Doctors:  append([]Doctor(nil), c.Doctors...),
		Services: append([]Service(nil), c.Services...),
	}}
}

func (p *StaticProvider) ListPatients(_ context.Context) ([]Patient, error) {
	return append([]Patient(nil), p.catalog.Patients...), nil
}

func (p *StaticProvider) ListDoctors(_ context.Context) ([]Doctor, error) {
	return append([]Doctor(nil), p.catalog.Doctors...), nil
}

func (p *StaticProvider) ListServices(_ context.Context) ([]Service, error) {
	return append([]Service(nil), p.catalog.Services...), nil
}

// LoadFile reads a catalog JSON document written by Save (or by hand).
func LoadFile(path string) (*StaticProvider, error) {
	if path == "" {
		return nil, ErrEmptyCatalogPath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	return NewStaticProvider(c), nil
}

// Open loads the catalog at path, or generates the bundled fixture catalog
// when path is empty.
func Open(path string) (*StaticProvider, error) {
	if path == "" {
		return NewStaticProvider(Generate(FixtureSeed, 24, 6)), nil
	}
	return LoadFile(path)
}

// Save writes c as indented JSON to path.
func Save(path string, c Catalog) error {
	if path == "" {
		return ErrEmptyCatalogPath
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// FindPatient returns the patient whose value equals key.
func FindPatient(ctx context.Context, p Provider, key string) (*Patient, error) {
	patients, err := p.ListPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	for i := range patients {
		if patients[i].Value == key {
			return &patients[i], nil
		}
	}
	return nil, nil
}

// FindDoctor returns the doctor whose value equals key.
func FindDoctor(ctx context.Context, p Provider, key string) (*Doctor, error) {
	doctors, err := p.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	for i := range doctors {
		if doctors[i].Value == key {
			return &doctors[i], nil
		}
	}
	return nil, nil
}

// FindService returns the service whose value equals key.
func FindService(ctx context.Context, p Provider, key string) (*Service, error) {
	services, err := p.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	for i := range services {
		if services[i].Value == key {
			return &services[i], nil
		}
	}
	return nil, nil
}
