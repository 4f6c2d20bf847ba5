package appointment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/hackgods/clinic-appointments/internal/catalog"
)

const (
	DefaultPaymentMode  = "Manual"
	DefaultCurrency     = "CAD"
	DefaultDescription  = "Awaiting service notes"
	CreatedAuditMessage = "Created locally via appointment form"
)

var (
	ErrIncompleteBooking = errors.New("select a doctor, patient, service, date, and an available slot before saving")
	ErrInvalidStatus     = errors.New("invalid appointment status")
)

// BookingForm carries the raw selections from the booking form.
type BookingForm struct {
	Doctor  string            `json:"doctor"`
	Patient string            `json:"patient"`
	Service string            `json:"service"`
	Date    string            `json:"date"`
	Slot    string            `json:"slot"`
	Status  AppointmentStatus `json:"status"`
}

// Validate checks the required fields without touching the catalog.
func (f BookingForm) Validate() error {
	if f.Doctor == "" || f.Patient == "" || f.Service == "" || f.Slot == "" || !IsCompleteDate(f.Date) {
		return ErrIncompleteBooking
	}
	if f.Status != "" && !f.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}
	return nil
}

func (f BookingForm) slotQuery() SlotQuery {
	return SlotQuery{Doctor: f.Doctor, Service: f.Service, Patient: f.Patient, Date: f.Date}
}

// Composer turns a booking form into a fully populated Record.
type Composer struct {
	catalog catalog.Provider
	now     func() time.Time
	intn    func(n int) int
}

func NewComposer(p catalog.Provider) *Composer {
	return &Composer{
		catalog: p,
		now:     time.Now,
		intn:    rand.IntN,
	}
}

// Compose resolves the form against the catalog. Keys that do not resolve
// fall back to the raw key as the display label.
func (c *Composer) Compose(ctx context.Context, form BookingForm) (Record, error) {
	if err := form.Validate(); err != nil {
		return Record{}, err
	}

	patient, err := catalog.FindPatient(ctx, c.catalog, form.Patient)
	if err != nil {
		return Record{}, fmt.Errorf("resolve patient: %w", err)
	}
	doctor, err := catalog.FindDoctor(ctx, c.catalog, form.Doctor)
	if err != nil {
		return Record{}, fmt.Errorf("resolve doctor: %w", err)
	}
	service, err := catalog.FindService(ctx, c.catalog, form.Service)
	if err != nil {
		return Record{}, fmt.Errorf("resolve service: %w", err)
	}

	status := form.Status
	if status == "" {
		status = StatusBooked
	}

	rec := Record{
		ID: c.newID(),
		Schedule: Schedule{
			Date:      form.Date,
			StartTime: form.Slot,
			EndTime:   EndTime(form.Slot, service),
		},
		Provider:    form.Doctor,
		Service:     form.Service,
		Description: DefaultDescription,
		Charges:     Charges{Amount: 0, Currency: DefaultCurrency},
		PaymentMode: DefaultPaymentMode,
		Status:      status,
		AuditTrail:  []string{CreatedAuditMessage},
	}

	rec.Patient.Name = form.Patient
	if patient != nil {
		rec.Patient.Name = patient.Label
		rec.Patient.Initials = patient.Initials
		rec.PatientContact = patient.Contact
	}
	if rec.Patient.Initials == "" {
		rec.Patient.Initials = Initials(rec.Patient.Name)
	}

	if doctor != nil {
		rec.Provider = doctor.Label
		rec.Clinic = doctor.Clinic
	}

	if service != nil {
		rec.Service = service.Label
		if service.Description != "" {
			rec.Description = service.Description
		}
		if service.Charge != nil {
			rec.Charges = Charges{Amount: service.Charge.Amount, Currency: service.Charge.Currency}
		}
	}

	return rec, nil
}

// newID combines the creation time with a small random suffix. Collisions
// are unlikely but possible; Store.Add rejects them.
func (c *Composer) newID() string {
	return fmt.Sprintf("%d-%d", c.now().UnixMilli(), c.intn(1000))
}

// Initials abbreviates a name: the first letters of the first two words,
// or the first two letters of a single word.
func Initials(name string) string {
	segments := strings.FieldsFunc(name, unicode.IsSpace)

	var out []rune
	switch len(segments) {
	case 0:
		out = firstRunes(name, 2)
	case 1:
		out = firstRunes(segments[0], 2)
	default:
		out = append(firstRunes(segments[0], 1), firstRunes(segments[1], 1)...)
	}
	return strings.ToUpper(string(out))
}

func firstRunes(s string, n int) []rune {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return r
}
