package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/clinic-appointments/internal/api"
	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/catalog"
	"github.com/hackgods/clinic-appointments/internal/config"
	"github.com/hackgods/clinic-appointments/internal/export"
	"github.com/hackgods/clinic-appointments/internal/logger"
	"github.com/hackgods/clinic-appointments/internal/metrics"
	"github.com/hackgods/clinic-appointments/internal/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("api-server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	log.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("storage_backend", cfg.StorageBackend),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancelConnect := context.WithTimeout(rootCtx, 10*time.Second)
	backend, closeBackend, err := snapshot.Open(connectCtx, cfg, log)
	cancelConnect()
	if err != nil {
		return fmt.Errorf("open snapshot backend: %w", err)
	}
	defer closeBackend()

	provider, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	collector := metrics.NewCollector(nil)

	store := appointment.NewStore(backend, nil,
		appointment.WithLogger(log),
		appointment.WithMetrics(collector),
		appointment.WithLocation(cfg.Location),
		appointment.WithPersistTimeout(cfg.PersistTimeout),
	)

	loadCtx, cancelLoad := context.WithTimeout(rootCtx, 10*time.Second)
	if err := store.Load(loadCtx); err != nil {
		log.Warn("starting with an empty appointment list", zap.Error(err))
	}
	cancelLoad()

	svc := appointment.NewService(store, appointment.NewComposer(provider), appointment.DefaultSlots, collector, log)

	target, err := export.NewTarget(rootCtx, cfg.ExportDir, export.S3Config(cfg.S3), log)
	if err != nil {
		log.Warn("export target unavailable, exports will only be streamed", zap.Error(err))
		target = nil
	}

	router := api.NewRouter(api.RouterConfig{
		Service:    svc,
		Catalog:    provider,
		Target:     target,
		Letterhead: export.Letterhead(cfg.Clinic),
		Metrics:    collector,
		Deps:       map[string]api.Pinger{"snapshot": backend},
		Log:        log,
		Location:   cfg.Location,
		Env:        cfg.Env,
		Version:    cfg.Version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.Int("appointments", store.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
	}

	// Let in-flight snapshot writes land before the backend is closed.
	store.Wait()
	log.Info("api-server stopped")
	return nil
}
