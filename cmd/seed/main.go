package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/catalog"
	"github.com/hackgods/clinic-appointments/internal/config"
	"github.com/hackgods/clinic-appointments/internal/logger"
	"github.com/hackgods/clinic-appointments/internal/snapshot"
)

type seedOptions struct {
	catalogPath  string
	patients     int
	doctors      int
	appointments int
	seed         uint64
	days         int
}

func main() {
	opts := seedOptions{}

	rootCmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a fixture catalog and a booked appointment snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.catalogPath, "catalog", "", "catalog output path (default CATALOG_PATH or data/catalog.json)")
	flags.IntVar(&opts.patients, "patients", 40, "number of patients to generate")
	flags.IntVar(&opts.doctors, "doctors", 8, "number of doctors to generate")
	flags.IntVar(&opts.appointments, "appointments", 60, "number of appointments to book")
	flags.Uint64Var(&opts.seed, "seed", catalog.FixtureSeed, "random seed")
	flags.IntVar(&opts.days, "days", 30, "appointments are spread this many days either side of today")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runSeed(ctx context.Context, opts seedOptions) error {
	if opts.patients < 1 || opts.doctors < 1 {
		return errors.New("--patients and --doctors must be at least 1")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	path := opts.catalogPath
	if path == "" {
		path = cfg.CatalogPath
	}
	if path == "" {
		path = "data/catalog.json"
	}

	c := catalog.Generate(opts.seed, opts.patients, opts.doctors)
	if err := catalog.Save(path, c); err != nil {
		return err
	}
	log.Info("catalog written",
		zap.String("path", path),
		zap.Int("patients", len(c.Patients)),
		zap.Int("doctors", len(c.Doctors)),
		zap.Int("services", len(c.Services)),
	)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	backend, closeBackend, err := snapshot.Open(connectCtx, cfg, log)
	cancel()
	if err != nil {
		return err
	}
	defer closeBackend()

	records, err := composeAppointments(ctx, c, opts, time.Now().In(cfg.Location))
	if err != nil {
		return err
	}

	// Sorted in memory without a sink, then written once.
	store := appointment.NewStore(nil, nil, appointment.WithLocation(cfg.Location))
	for _, r := range records {
		if err := store.Add(r); err != nil {
			log.Warn("skipping appointment", zap.String("appointment_id", r.ID), zap.Error(err))
		}
	}

	if err := writeSnapshot(ctx, backend, store.List()); err != nil {
		return err
	}

	log.Info("seed complete", zap.Int("appointments", store.Len()), zap.String("backend", cfg.StorageBackend))
	return nil
}

func composeAppointments(ctx context.Context, c catalog.Catalog, opts seedOptions, now time.Time) ([]appointment.Record, error) {
	f := gofakeit.New(opts.seed)
	composer := appointment.NewComposer(catalog.NewStaticProvider(c))
	statuses := appointment.FormStatusOptions

	sessions, err := appointment.DefaultSlots.Sessions(ctx, appointment.SlotQuery{})
	if err != nil {
		return nil, err
	}

	records := make([]appointment.Record, 0, opts.appointments)
	for i := 0; i < opts.appointments; i++ {
		day := now.AddDate(0, 0, f.Number(-opts.days, opts.days))
		session := sessions[f.Number(0, len(sessions)-1)]

		form := appointment.BookingForm{
			Doctor:  c.Doctors[f.Number(0, len(c.Doctors)-1)].Value,
			Patient: c.Patients[f.Number(0, len(c.Patients)-1)].Value,
			Service: c.Services[f.Number(0, len(c.Services)-1)].Value,
			Date:    appointment.TodayISO(day),
			Slot:    session.Slots[f.Number(0, len(session.Slots)-1)],
			Status:  appointment.AppointmentStatus(statuses[f.Number(0, len(statuses)-1)].Value),
		}

		r, err := composer.Compose(ctx, form)
		if err != nil {
			return nil, fmt.Errorf("compose appointment %d: %w", i, err)
		}
		r.ID = fmt.Sprintf("seed-%04d", i+1)
		r.PaymentMode = f.RandomString([]string{"Manual", "Card", "Insurance"})
		records = append(records, r)
	}
	return records, nil
}

// writeSnapshot writes synchronously so the command exits only once the
// data has landed.
func writeSnapshot(ctx context.Context, sink appointment.Sink, records []appointment.Record) error {
	data, err := appointment.EncodeSnapshot(records)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sink.Write(writeCtx, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
