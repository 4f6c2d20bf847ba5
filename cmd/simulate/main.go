package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-appointments/internal/api"
	"github.com/hackgods/clinic-appointments/internal/catalog"
	"github.com/hackgods/clinic-appointments/internal/config"
	"github.com/hackgods/clinic-appointments/internal/logger"
)

type simOptions struct {
	baseURL     string
	duration    time.Duration
	workers     int
	bookRatio   float64
	cancelRatio float64
	readRatio   float64
	seed        uint64
}

// normalize scales the ratios so they sum to one.
func (o *simOptions) normalize() error {
	if o.workers <= 0 {
		return errors.New("--workers must be > 0")
	}
	if o.duration <= 0 {
		return errors.New("--duration must be > 0")
	}
	if o.bookRatio < 0 || o.cancelRatio < 0 || o.readRatio < 0 {
		return errors.New("ratios must not be negative")
	}
	total := o.bookRatio + o.cancelRatio + o.readRatio
	if total == 0 {
		return errors.New("at least one ratio must be positive")
	}
	o.bookRatio /= total
	o.cancelRatio /= total
	o.readRatio /= total
	return nil
}

// pool holds catalog values fetched once and the ids booked during the run.
type pool struct {
	patients []catalog.Patient
	doctors  []catalog.Doctor
	services []catalog.Service

	mu  sync.RWMutex
	ids []string
}

func (p *pool) addID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
}

// takeID removes and returns a booked id so two workers never cancel the
// same appointment.
func (p *pool) takeID(f *gofakeit.Faker) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.ids) == 0 {
		return "", false
	}
	i := f.Number(0, len(p.ids)-1)
	id := p.ids[i]
	p.ids = slices.Delete(p.ids, i, i+1)
	return id, true
}

func (p *pool) peekID(f *gofakeit.Faker) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.ids) == 0 {
		return "", false
	}
	return p.ids[f.Number(0, len(p.ids)-1)], true
}

type opStats struct {
	total     atomic.Int64
	success   atomic.Int64
	conflict  atomic.Int64
	failed    atomic.Int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (s *opStats) record(latency time.Duration, status int, err error) {
	s.total.Add(1)
	switch {
	case err != nil:
		s.failed.Add(1)
	case status >= 200 && status < 300:
		s.success.Add(1)
	case status == http.StatusConflict:
		s.conflict.Add(1)
	default:
		s.failed.Add(1)
	}

	s.mu.Lock()
	s.latencies = append(s.latencies, latency)
	s.mu.Unlock()
}

// summary returns avg, p50, p95 and max latency.
func (s *opStats) summary() (avg, p50, p95, max time.Duration) {
	s.mu.Lock()
	latencies := slices.Clone(s.latencies)
	s.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0
	}
	slices.Sort(latencies)

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	n := len(latencies)
	return sum / time.Duration(n), latencies[n*50/100], latencies[min(n*95/100, n-1)], latencies[n-1]
}

type simulator struct {
	opts   simOptions
	pool   *pool
	client *http.Client
	log    *zap.Logger

	book   opStats
	cancel opStats
	get    opStats
	list   opStats
}

func main() {
	opts := simOptions{}

	rootCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive concurrent booking, cancel and read traffic against the api-server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd.Context(), opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.baseURL, "url", "http://localhost:8080", "api-server base URL")
	flags.DurationVar(&opts.duration, "duration", 30*time.Second, "how long to generate traffic")
	flags.IntVar(&opts.workers, "workers", 10, "concurrent workers")
	flags.Float64Var(&opts.bookRatio, "book-ratio", 0.4, "share of requests that book")
	flags.Float64Var(&opts.cancelRatio, "cancel-ratio", 0.1, "share of requests that cancel")
	flags.Float64Var(&opts.readRatio, "read-ratio", 0.5, "share of requests that read")
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed, 0 picks one from the clock")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runSimulation(ctx context.Context, opts simOptions) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	if opts.seed == 0 {
		opts.seed = uint64(time.Now().UnixNano())
	}
	opts.baseURL = strings.TrimRight(opts.baseURL, "/")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sim := &simulator{
		opts:   opts,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}

	loadCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	sim.pool, err = sim.loadPool(loadCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	log.Info("simulation starting",
		zap.String("url", opts.baseURL),
		zap.Duration("duration", opts.duration),
		zap.Int("workers", opts.workers),
		zap.Int("patients", len(sim.pool.patients)),
		zap.Int("doctors", len(sim.pool.doctors)),
	)

	sim.run(ctx)
	sim.printReport(os.Stdout)
	return nil
}

func (s *simulator) loadPool(ctx context.Context) (*pool, error) {
	p := &pool{}
	if err := s.getJSON(ctx, "/catalog/patients", &p.patients); err != nil {
		return nil, err
	}
	if err := s.getJSON(ctx, "/catalog/doctors", &p.doctors); err != nil {
		return nil, err
	}
	if err := s.getJSON(ctx, "/catalog/services", &p.services); err != nil {
		return nil, err
	}
	if len(p.patients) == 0 || len(p.doctors) == 0 || len(p.services) == 0 {
		return nil, errors.New("catalog is empty, run the seed command first")
	}
	return p, nil
}

func (s *simulator) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.opts.workers; i++ {
		wg.Add(1)
		go func(worker uint64) {
			defer wg.Done()
			s.worker(ctx, gofakeit.New(s.opts.seed+worker))
		}(uint64(i))
	}
	wg.Wait()
	s.log.Info("simulation complete")
}

func (s *simulator) worker(ctx context.Context, f *gofakeit.Faker) {
	for ctx.Err() == nil {
		r := f.Float64()
		switch {
		case r < s.opts.bookRatio:
			s.doBook(ctx, f)
		case r < s.opts.bookRatio+s.opts.cancelRatio:
			s.doCancel(ctx, f)
		case f.Bool():
			s.doGet(ctx, f)
		default:
			s.doList(ctx, f)
		}
	}
}

func (s *simulator) doBook(ctx context.Context, f *gofakeit.Faker) {
	p := s.pool
	req := api.BookAppointmentRequest{
		Doctor:  p.doctors[f.Number(0, len(p.doctors)-1)].Value,
		Patient: p.patients[f.Number(0, len(p.patients)-1)].Value,
		Service: p.services[f.Number(0, len(p.services)-1)].Value,
		Date:    time.Now().AddDate(0, 0, f.Number(0, 14)).Format(time.DateOnly),
	}

	q := url.Values{"doctor": {req.Doctor}, "patient": {req.Patient}, "service": {req.Service}, "date": {req.Date}}
	var sessions []api.SlotSessionResponse
	if err := s.getJSON(ctx, "/slots?"+q.Encode(), &sessions); err != nil || len(sessions) == 0 {
		return
	}
	session := sessions[f.Number(0, len(sessions)-1)]
	if len(session.Slots) == 0 {
		return
	}
	req.Slot = session.Slots[f.Number(0, len(session.Slots)-1)].Start

	body, _ := json.Marshal(req)
	var created api.AppointmentResponse
	status, latency, err := s.do(ctx, http.MethodPost, "/appointments", bytes.NewReader(body), &created)
	s.book.record(latency, status, err)
	if err == nil && status == http.StatusCreated && created.ID != "" {
		p.addID(created.ID)
	}
}

func (s *simulator) doCancel(ctx context.Context, f *gofakeit.Faker) {
	id, ok := s.pool.takeID(f)
	if !ok {
		return
	}
	status, latency, err := s.do(ctx, http.MethodDelete, "/appointments/"+url.PathEscape(id), nil, nil)
	s.cancel.record(latency, status, err)
}

func (s *simulator) doGet(ctx context.Context, f *gofakeit.Faker) {
	id, ok := s.pool.peekID(f)
	if !ok {
		return
	}
	status, latency, err := s.do(ctx, http.MethodGet, "/appointments/"+url.PathEscape(id), nil, nil)
	// A concurrent cancel may have removed it.
	if status == http.StatusNotFound {
		status = http.StatusOK
	}
	s.get.record(latency, status, err)
}

func (s *simulator) doList(ctx context.Context, f *gofakeit.Faker) {
	q := url.Values{"segment": {f.RandomString([]string{"all", "Upcoming", "past"})}}
	if f.Bool() {
		q.Set("patient", s.pool.patients[f.Number(0, len(s.pool.patients)-1)].Label)
	}
	status, latency, err := s.do(ctx, http.MethodGet, "/appointments?"+q.Encode(), nil, nil)
	s.list.record(latency, status, err)
}

func (s *simulator) getJSON(ctx context.Context, path string, out any) error {
	status, _, err := s.do(ctx, http.MethodGet, path, nil, out)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, status)
	}
	return nil
}

// do issues one request and decodes a 2xx body into out when out is set.
func (s *simulator) do(ctx context.Context, method, path string, body io.Reader, out any) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.opts.baseURL+path, body)
	if err != nil {
		return 0, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, latency, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, latency, fmt.Errorf("decode %s: %w", path, err)
		}
		return resp.StatusCode, latency, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, latency, nil
}

func (s *simulator) printReport(w io.Writer) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SIMULATION REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Duration: %s  Workers: %d\n\n", s.opts.duration, s.opts.workers)

	printOpReport(w, "Book", &s.book)
	printOpReport(w, "Cancel", &s.cancel)
	printOpReport(w, "Get by ID", &s.get)
	printOpReport(w, "List", &s.list)
}

func printOpReport(w io.Writer, name string, st *opStats) {
	total := st.total.Load()
	if total == 0 {
		return
	}
	pct := func(n int64) float64 { return float64(n) / float64(total) * 100 }

	avg, p50, p95, max := st.summary()
	fmt.Fprintf(w, "%s:\n", name)
	fmt.Fprintf(w, "  Total: %d\n", total)
	fmt.Fprintf(w, "  Success: %d (%.1f%%)\n", st.success.Load(), pct(st.success.Load()))
	if c := st.conflict.Load(); c > 0 {
		fmt.Fprintf(w, "  Conflicts: %d (%.1f%%)\n", c, pct(c))
	}
	if e := st.failed.Load(); e > 0 {
		fmt.Fprintf(w, "  Errors: %d (%.1f%%)\n", e, pct(e))
	}
	fmt.Fprintf(w, "  Latency: avg=%s p50=%s p95=%s max=%s\n\n",
		avg.Round(time.Millisecond), p50.Round(time.Millisecond),
		p95.Round(time.Millisecond), max.Round(time.Millisecond))
}
