package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/config"
	"github.com/hackgods/clinic-appointments/internal/export"
	"github.com/hackgods/clinic-appointments/internal/logger"
	"github.com/hackgods/clinic-appointments/internal/snapshot"
)

const defaultExportDir = "exports"

type exportOptions struct {
	formats []string
	segment string
	date    string
	status  string
	patient string
	doctor  string
	every   time.Duration
}

func main() {
	opts := exportOptions{}

	rootCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored appointment list to the configured target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringSliceVar(&opts.formats, "format", []string{string(export.KindCSV)}, "formats to write: csv, excel, pdf, print")
	flags.StringVar(&opts.segment, "segment", string(appointment.SegmentAll), "all, Upcoming or past")
	flags.StringVar(&opts.date, "date", "", "only appointments on this YYYY-MM-DD date")
	flags.StringVar(&opts.status, "status", appointment.StatusAll, "only appointments with this status")
	flags.StringVar(&opts.patient, "patient", appointment.StatusAll, "only appointments for this patient name")
	flags.StringVar(&opts.doctor, "doctor", appointment.StatusAll, "only appointments with this provider")
	flags.DurationVar(&opts.every, "every", 0, "repeat the export on this interval until interrupted")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// parse validates the flags before any backend is touched.
func (o exportOptions) parse() ([]export.Kind, appointment.FilterState, error) {
	if len(o.formats) == 0 {
		return nil, appointment.FilterState{}, errors.New("at least one --format is required")
	}

	kinds := make([]export.Kind, 0, len(o.formats))
	seen := make(map[export.Kind]bool, len(o.formats))
	for _, f := range o.formats {
		k, err := export.ParseKind(f)
		if err != nil {
			return nil, appointment.FilterState{}, err
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}

	segment, err := appointment.ParseSegment(o.segment)
	if err != nil {
		return nil, appointment.FilterState{}, err
	}

	return kinds, appointment.FilterState{
		Segment: segment,
		Date:    appointment.SanitizeDateInput(o.date),
		Status:  o.status,
		Patient: o.patient,
		Doctor:  o.doctor,
	}, nil
}

func runExport(ctx context.Context, opts exportOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	kinds, state, err := opts.parse()
	if err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	backend, closeBackend, err := snapshot.Open(connectCtx, cfg, log)
	cancel()
	if err != nil {
		return err
	}
	defer closeBackend()

	target, err := export.NewTarget(ctx, cfg.ExportDir, export.S3Config(cfg.S3), log)
	if err != nil {
		return fmt.Errorf("open export target: %w", err)
	}
	if target == nil {
		target = export.NewDirTarget(defaultExportDir)
	}

	job := &exportJob{
		sink:   backend,
		target: target,
		state:  state,
		kinds:  kinds,
		loc:    cfg.Location,
		log:    log,
	}

	log.Info("export starting",
		zap.Strings("formats", opts.formats),
		zap.String("segment", string(state.Segment)),
		zap.Duration("every", opts.every),
	)

	// Run once at startup
	job.runOnce(ctx)
	if opts.every <= 0 {
		return nil
	}

	ticker := time.NewTicker(opts.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received, stopping export loop")
			return nil
		case <-ticker.C:
			job.runOnce(ctx)
		}
	}
}

type exportJob struct {
	sink   appointment.Sink
	target export.Target
	state  appointment.FilterState
	kinds  []export.Kind
	loc    *time.Location
	log    *zap.Logger
}

// runOnce reloads the snapshot so each run sees writes made by the server
// since the last one.
func (j *exportJob) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	store := appointment.NewStore(j.sink, nil, appointment.WithLogger(j.log), appointment.WithLocation(j.loc))
	if err := store.Load(runCtx); err != nil {
		j.log.Error("export run failed", zap.Error(err))
		return
	}

	now := time.Now().In(j.loc)
	records := appointment.FilterAt(store.List(), j.state, now)
	if len(records) == 0 {
		j.log.Info("no appointments to export", zap.String("segment", string(j.state.Segment)))
		return
	}

	rows := export.BuildRows(records)
	title := export.Title(j.state.Segment)
	for _, kind := range j.kinds {
		data, err := kind.Render(rows, title)
		if err != nil {
			j.log.Error("render export", zap.String("format", string(kind)), zap.Error(err))
			continue
		}

		name := export.FileName(kind, j.state.Segment, now)
		location, err := j.target.Save(runCtx, name, kind.ContentType(), data)
		if err != nil {
			j.log.Error("save export", zap.String("file", name), zap.Error(err))
			continue
		}
		j.log.Info("export written", zap.String("location", location), zap.Int("rows", len(rows)))
	}

	j.log.Info("export run complete", zap.Duration("took", time.Since(start)))
}
