package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/catalog"
	"github.com/hackgods/clinic-appointments/internal/export"
	"github.com/hackgods/clinic-appointments/internal/metrics"
)

type RouterConfig struct {
	Service    *appointment.Service
	Catalog    catalog.Provider
	Target     export.Target // optional; exports are only streamed when nil
	Letterhead export.Letterhead
	Metrics    *metrics.Collector
	Deps       map[string]Pinger
	Log        *zap.Logger
	Location   *time.Location
	Env        string
	Version    string
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	h := &handlers{
		svc:        cfg.Service,
		catalog:    cfg.Catalog,
		target:     cfg.Target,
		letterhead: cfg.Letterhead,
		metrics:    cfg.Metrics,
		log:        cfg.Log,
		now:        func() time.Time { return time.Now().In(loc) },
	}

	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log, cfg.Metrics))

	// Health endpoints
	health := NewHealthHandler(cfg.Deps, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/patients", h.listPatients)
		r.Get("/doctors", h.listDoctors)
		r.Get("/services", h.listServices)
	})

	r.Get("/slots", h.listSlots)

	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", h.listAppointments)
		r.Post("/", h.createAppointment)
		r.Get("/export", h.exportAppointments)
		r.Post("/bulk-delete", h.bulkDelete)
		r.Get("/{id}", h.getAppointment)
		r.Delete("/{id}", h.deleteAppointment)
		r.Get("/{id}/print", h.printAppointment)
	})

	return r
}
