package api

import (
	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/export"
)

type BookAppointmentRequest struct {
	Doctor  string `json:"doctor"`
	Patient string `json:"patient"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Slot    string `json:"slot"`
	Status  string `json:"status"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type BulkDeleteResponse struct {
	Requested int `json:"requested"`
	Removed   int `json:"removed"`
}

// AppointmentResponse is a stored record plus the labels the list shows.
type AppointmentResponse struct {
	appointment.Record
	DisplayDate string      `json:"displayDate"`
	TimeWindow  string      `json:"timeWindow"`
	ChargeLabel string      `json:"chargeLabel"`
	StatusLabel string      `json:"statusLabel"`
	AuditRows   [][2]string `json:"auditRows"`
}

func newAppointmentResponse(r appointment.Record) AppointmentResponse {
	return AppointmentResponse{
		Record:      r,
		DisplayDate: appointment.FormatDisplayDate(r.Schedule.Date),
		TimeWindow:  export.TimeWindow(r.Schedule),
		ChargeLabel: export.FormatCharge(r.Charges),
		StatusLabel: appointment.StatusLabel(string(r.Status)),
		AuditRows:   appointment.AuditRows(r.AuditTrail),
	}
}

type ListAppointmentsResponse struct {
	Items []AppointmentResponse `json:"items"`
	Count int                   `json:"count"`
}

type SlotResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type SlotSessionResponse struct {
	Label string         `json:"label"`
	Slots []SlotResponse `json:"slots"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
