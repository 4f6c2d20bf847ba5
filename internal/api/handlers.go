package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/catalog"
	"github.com/hackgods/clinic-appointments/internal/export"
	"github.com/hackgods/clinic-appointments/internal/metrics"
)

type handlers struct {
	svc        *appointment.Service
	catalog    catalog.Provider
	target     export.Target
	letterhead export.Letterhead
	metrics    *metrics.Collector
	log        *zap.Logger
	now        func() time.Time
}

// ---------- Catalog ----------

func (h *handlers) listPatients(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListPatients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) listDoctors(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListDoctors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) listServices(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListServices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ---------- Slots ----------

func (h *handlers) listSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := appointment.SlotQuery{
		Doctor:  q.Get("doctor"),
		Service: q.Get("service"),
		Patient: q.Get("patient"),
		Date:    q.Get("date"),
	}

	sessions, err := h.svc.Sessions(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "slots_unavailable", err.Error())
		return
	}

	service, err := catalog.FindService(r.Context(), h.catalog, query.Service)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_unavailable", err.Error())
		return
	}

	resp := make([]SlotSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		session := SlotSessionResponse{Label: s.Label, Slots: make([]SlotResponse, 0, len(s.Slots))}
		for _, start := range s.Slots {
			session.Slots = append(session.Slots, SlotResponse{
				Start: start,
				End:   appointment.EndTime(start, service),
			})
		}
		resp = append(resp, session)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ---------- Appointments ----------

func filterFromQuery(r *http.Request) (appointment.FilterState, error) {
	q := r.URL.Query()
	segment, err := appointment.ParseSegment(q.Get("segment"))
	if err != nil {
		return appointment.FilterState{}, err
	}
	return appointment.FilterState{
		Segment: segment,
		Date:    q.Get("date"),
		Status:  q.Get("status"),
		Patient: q.Get("patient"),
		Doctor:  q.Get("doctor"),
	}, nil
}

func (h *handlers) listAppointments(w http.ResponseWriter, r *http.Request) {
	state, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_segment", err.Error())
		return
	}

	records := h.svc.List(state)
	items := make([]AppointmentResponse, len(records))
	for i, rec := range records {
		items[i] = newAppointmentResponse(rec)
	}

	writeJSON(w, http.StatusOK, ListAppointmentsResponse{Items: items, Count: len(items)})
}

func (h *handlers) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	date := appointment.SanitizeDateInput(req.Date)
	if date == "" {
		date = appointment.TodayISO(h.now())
	}

	rec, err := h.svc.Book(r.Context(), appointment.BookingForm{
		Doctor:  req.Doctor,
		Patient: req.Patient,
		Service: req.Service,
		Date:    date,
		Slot:    req.Slot,
		Status:  appointment.AppointmentStatus(req.Status),
	})
	if err != nil {
		handleBookError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAppointmentResponse(rec))
}

func (h *handlers) getAppointment(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAppointmentResponse(rec))
}

func (h *handlers) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cancel(chi.URLParam(r, "id")); err != nil {
		handleLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "no_selection", "ids must not be empty")
		return
	}

	removed := h.svc.CancelMany(req.IDs)
	writeJSON(w, http.StatusOK, BulkDeleteResponse{Requested: len(req.IDs), Removed: removed})
}

func (h *handlers) printAppointment(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleLookupError(w, err)
		return
	}

	doc, err := export.ToPrintableDocument(rec, h.letterhead, h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	h.observeExport("appointment_print")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// ---------- Export ----------

func (h *handlers) exportAppointments(w http.ResponseWriter, r *http.Request) {
	kind, err := export.ParseKind(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}
	state, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_segment", err.Error())
		return
	}

	records := h.svc.List(state)
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "no_data", "no appointments match the current filters")
		return
	}

	data, err := kind.Render(export.BuildRows(records), export.Title(state.Segment))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	name := export.FileName(kind, state.Segment, h.now())
	h.observeExport(string(kind))

	if h.target != nil {
		location, err := h.target.Save(r.Context(), name, kind.ContentType(), data)
		if err != nil {
			h.log.Warn("unable to save export", zap.String("file", name), zap.Error(err))
		} else {
			w.Header().Set("X-Export-Location", location)
		}
	}

	w.Header().Set("Content-Type", kind.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handlers) observeExport(format string) {
	if h.metrics != nil {
		h.metrics.ObserveExport(format)
	}
}

// ---------- Errors ----------

func handleBookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrIncompleteBooking):
		writeError(w, http.StatusBadRequest, "incomplete_booking", err.Error())
	case errors.Is(err, appointment.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, appointment.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", err.Error())
	case errors.Is(err, appointment.ErrDuplicateID):
		writeError(w, http.StatusConflict, "duplicate_id", "please retry the booking")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
