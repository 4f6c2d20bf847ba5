package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/catalog"
	"github.com/hackgods/clinic-appointments/internal/export"
	"github.com/hackgods/clinic-appointments/internal/metrics"
)

// ---------- Helper ----------

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type recordingTarget struct {
	names []string
}

func (t *recordingTarget) Save(_ context.Context, name, _ string, _ []byte) (string, error) {
	t.names = append(t.names, name)
	return "mem://" + name, nil
}

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		Patients: []catalog.Patient{{Value: "p-1", Label: "Jane Doe", Contact: "555-0100"}},
		Doctors:  []catalog.Doctor{{Value: "d-1", Label: "Dr. Smith", Clinic: "Downtown"}},
		Services: []catalog.Service{{Value: "s-1", Label: "Physio", DurationMinutes: 45, Charge: &catalog.Charge{Amount: 80, Currency: "CAD"}}},
	}
}

type testEnv struct {
	handler http.Handler
	store   *appointment.Store
	target  *recordingTarget
}

func newTestEnv(t *testing.T, seed ...appointment.Record) *testEnv {
	t.Helper()
	return newTestEnvIn(t, time.UTC, seed...)
}

// newTestEnvIn builds the router with the clinic zone set to loc for both
// the store and the handlers, as cmd/api-server does.
func newTestEnvIn(t *testing.T, loc *time.Location, seed ...appointment.Record) *testEnv {
	t.Helper()

	log := zaptest.NewLogger(t)
	provider := catalog.NewStaticProvider(testCatalog())
	store := appointment.NewStore(nil, seed, appointment.WithLogger(log), appointment.WithLocation(loc))
	svc := appointment.NewService(store, appointment.NewComposer(provider), appointment.DefaultSlots, nil, log)
	target := &recordingTarget{}

	handler := NewRouter(RouterConfig{
		Service:    svc,
		Catalog:    provider,
		Target:     target,
		Letterhead: export.DefaultLetterhead,
		Metrics:    metrics.NewCollector(prometheus.NewRegistry()),
		Deps:       map[string]Pinger{"snapshot": fakePinger{}},
		Log:        log,
		Location:   loc,
		Env:        "test",
		Version:    "v0.0.1",
	})

	return &testEnv{handler: handler, store: store, target: target}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func seedRecord(id, date string) appointment.Record {
	return appointment.Record{
		ID:          id,
		Patient:     appointment.PatientRef{Name: "Jane Doe", Initials: "JD"},
		Schedule:    appointment.Schedule{Date: date, StartTime: "10:00", EndTime: "10:30"},
		Provider:    "Dr. Smith",
		Service:     "Physio",
		Description: "knee",
		Charges:     appointment.Charges{Amount: 80, Currency: "CAD"},
		PaymentMode: "Manual",
		Status:      appointment.StatusBooked,
	}
}

// ---------- Tests ----------

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health/live", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/health/ready", nil)
	var ready ReadinessResponse
	if err := json.NewDecoder(rec.Body).Decode(&ready); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ready.Status != "ok" || ready.Dependencies["snapshot"] != "ok" {
		t.Errorf("unexpected readiness %+v", ready)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}
}

func TestReadinessDegradedWhenSinkDown(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{"snapshot": fakePinger{err: errors.New("down")}}, "test", "v1")
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var ready ReadinessResponse
	_ = json.NewDecoder(rec.Body).Decode(&ready)
	if ready.Status != "degraded" || ready.Dependencies["snapshot"] != "down" {
		t.Errorf("unexpected readiness %+v", ready)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/catalog/doctors", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doctors []catalog.Doctor
	_ = json.NewDecoder(rec.Body).Decode(&doctors)
	if len(doctors) != 1 || doctors[0].Label != "Dr. Smith" {
		t.Errorf("unexpected doctors %+v", doctors)
	}
}

func TestSlotsIncludeServiceEndTimes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/slots?doctor=d-1&service=s-1&patient=p-1&date=2099-01-15", nil)
	var sessions []SlotSessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&sessions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sessions) != 2 || sessions[0].Slots[0] != (SlotResponse{Start: "10:00", End: "10:45"}) {
		t.Errorf("unexpected sessions %+v", sessions)
	}

	rec = env.do(t, http.MethodGet, "/slots?doctor=d-1&service=s-1", nil)
	sessions = nil
	_ = json.NewDecoder(rec.Body).Decode(&sessions)
	if len(sessions) != 0 {
		t.Errorf("incomplete query should offer nothing, got %+v", sessions)
	}
}

func TestCreateAndFetchAppointment(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/appointments", BookAppointmentRequest{
		Doctor: "d-1", Patient: "p-1", Service: "s-1", Date: "20990115", Slot: "13:00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created AppointmentResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Schedule.Date != "2099-01-15" || created.Schedule.EndTime != "13:45" {
		t.Errorf("unexpected schedule %+v", created.Schedule)
	}
	if created.ChargeLabel != "$80CAD" || created.Clinic != "Downtown" || created.Status != appointment.StatusBooked {
		t.Errorf("unexpected record %+v", created)
	}

	rec = env.do(t, http.MethodGet, "/appointments/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/appointments?segment=Upcoming", nil)
	var list ListAppointmentsResponse
	_ = json.NewDecoder(rec.Body).Decode(&list)
	if list.Count != 1 || list.Items[0].ID != created.ID {
		t.Errorf("expected booked record in upcoming list, got %+v", list)
	}
}

func TestCreateAppointmentErrors(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body any
		code int
		err  string
	}{
		{"bad json", "not an object", http.StatusBadRequest, "invalid_request_body"},
		{"missing doctor", BookAppointmentRequest{Patient: "p-1", Service: "s-1", Date: "2099-01-15", Slot: "10:00"}, http.StatusBadRequest, "incomplete_booking"},
		{"partial date", BookAppointmentRequest{Doctor: "d-1", Patient: "p-1", Service: "s-1", Date: "2099-01", Slot: "10:00"}, http.StatusBadRequest, "incomplete_booking"},
		{"bad status", BookAppointmentRequest{Doctor: "d-1", Patient: "p-1", Service: "s-1", Date: "2099-01-15", Slot: "10:00", Status: "Lost"}, http.StatusBadRequest, "invalid_status"},
		{"slot not offered", BookAppointmentRequest{Doctor: "d-1", Patient: "p-1", Service: "s-1", Date: "2099-01-15", Slot: "11:11"}, http.StatusConflict, "slot_unavailable"},
	}

	for _, c := range cases {
		rec := env.do(t, http.MethodPost, "/appointments", c.body)
		if rec.Code != c.code {
			t.Errorf("%s: expected %d, got %d", c.name, c.code, rec.Code)
			continue
		}
		var er ErrorResponse
		_ = json.NewDecoder(rec.Body).Decode(&er)
		if er.Error != c.err {
			t.Errorf("%s: expected error %q, got %q", c.name, c.err, er.Error)
		}
	}

	if env.store.Len() != 0 {
		t.Errorf("failed bookings must not reach the store")
	}
}

func TestCreateAppointmentDefaultsToToday(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/appointments", BookAppointmentRequest{
		Doctor: "d-1", Patient: "p-1", Service: "s-1", Slot: "10:00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created AppointmentResponse
	_ = json.NewDecoder(rec.Body).Decode(&created)
	if created.Schedule.Date != time.Now().UTC().Format("2006-01-02") {
		t.Errorf("expected today's date, got %s", created.Schedule.Date)
	}
}

func TestDeleteAppointments(t *testing.T) {
	env := newTestEnv(t, seedRecord("a", "2099-01-01"), seedRecord("b", "2099-01-02"), seedRecord("c", "2099-01-03"))

	if rec := env.do(t, http.MethodDelete, "/appointments/a", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/appointments/a", nil); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/appointments/bulk-delete", BulkDeleteRequest{IDs: []string{"b", "c", "zzz"}})
	var resp BulkDeleteResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Requested != 3 || resp.Removed != 2 {
		t.Errorf("unexpected bulk delete response %+v", resp)
	}
	if env.store.Len() != 0 {
		t.Errorf("expected empty store, got %d", env.store.Len())
	}

	if rec := env.do(t, http.MethodPost, "/appointments/bulk-delete", BulkDeleteRequest{}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty selection: expected 400, got %d", rec.Code)
	}
}

func TestExportAppointments(t *testing.T) {
	env := newTestEnv(t, seedRecord("a", "2099-01-01"), seedRecord("old", "2001-01-01"))

	rec := env.do(t, http.MethodGet, "/appointments/export?format=csv&segment=Upcoming", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "appointments-upcoming-") {
		t.Errorf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}
	if !strings.HasPrefix(rec.Header().Get("X-Export-Location"), "mem://") {
		t.Errorf("expected export location header, got %q", rec.Header().Get("X-Export-Location"))
	}

	lines := strings.Split(rec.Body.String(), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "a,") {
		t.Errorf("expected only the upcoming record, got %q", rec.Body.String())
	}
	if len(env.target.names) != 1 {
		t.Errorf("expected 1 saved export, got %d", len(env.target.names))
	}

	rec = env.do(t, http.MethodGet, "/appointments/export?format=pdf", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("pdf: expected 200 application/pdf, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Error("pdf export is not a PDF document")
	}
}

func TestExportErrors(t *testing.T) {
	env := newTestEnv(t, seedRecord("old", "2001-01-01"))

	if rec := env.do(t, http.MethodGet, "/appointments/export?format=docx", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format: expected 400, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/appointments/export?format=csv&segment=Upcoming", nil); rec.Code != http.StatusNotFound {
		t.Errorf("empty list: expected 404, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/appointments/export?format=csv&segment=future", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad segment: expected 400, got %d", rec.Code)
	}
	if len(env.target.names) != 0 {
		t.Errorf("failed exports must not be saved")
	}
}

func TestPrintAppointment(t *testing.T) {
	env := newTestEnv(t, seedRecord("a", "2099-01-01"))

	rec := env.do(t, http.MethodGet, "/appointments/a/print", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Appointment Detail") || !strings.Contains(rec.Body.String(), "01-01-2099") {
		t.Error("unexpected print document")
	}

	if rec := env.do(t, http.MethodGet, "/appointments/missing/print", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/health/live", nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	if !strings.Contains(rec.Body.String(), `clinic_http_requests_total{method="GET",route="/health/live",status="200"} 1`) {
		t.Errorf("request counter missing:\n%s", rec.Body.String())
	}
}

func TestListSegmentsUseClinicZone(t *testing.T) {
	// Far behind UTC, so a wall-clock time an hour ahead in the clinic is
	// hours in the past for a host on UTC or east of it.
	zone := time.FixedZone("clinic", -11*60*60)
	soon := time.Now().In(zone).Add(time.Hour)
	earlier := time.Now().In(zone).Add(-time.Hour)

	upcoming := seedRecord("soon", soon.Format("2006-01-02"))
	upcoming.Schedule.StartTime = soon.Format("15:04")
	past := seedRecord("earlier", earlier.Format("2006-01-02"))
	past.Schedule.StartTime = earlier.Format("15:04")

	env := newTestEnvIn(t, zone, upcoming, past)

	for _, tc := range []struct {
		segment string
		want    string
	}{
		{"Upcoming", "soon"},
		{"past", "earlier"},
	} {
		rec := env.do(t, http.MethodGet, "/appointments?segment="+tc.segment, nil)
		var list ListAppointmentsResponse
		if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if list.Count != 1 || list.Items[0].ID != tc.want {
			t.Errorf("segment %s: expected only %q, got %d items", tc.segment, tc.want, list.Count)
		}
	}
}
