package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/hackgods/clinic-appointments/internal/appointment"
)

// Letterhead is the clinic block printed at the top of an appointment sheet.
type Letterhead struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

var DefaultLetterhead = Letterhead{
	Name:    "AdaptIT Sample Clinic",
	Address: "#132 Fake Street, Toronto, 3C2 B1A, Canada",
	Phone:   "(987) 654-3210",
	Email:   "adaptitsampleclinic@zodiac.tech",
}

// WithDefaults fills empty fields from DefaultLetterhead.
func (l Letterhead) WithDefaults() Letterhead {
	if l.Name == "" {
		l.Name = DefaultLetterhead.Name
	}
	if l.Address == "" {
		l.Address = DefaultLetterhead.Address
	}
	if l.Phone == "" {
		l.Phone = DefaultLetterhead.Phone
	}
	if l.Email == "" {
		l.Email = DefaultLetterhead.Email
	}
	return l
}

type printView struct {
	Letterhead  Letterhead
	ReportDate  string
	Patient     string
	Contact     string
	Provider    string
	Date        string
	Time        string
	Status      string
	PaymentMode string
	Service     string
	Charge      string
	Description string
}

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>Appointment - {{.Patient}}</title>
    <style>
      @page { margin: 0; }
      * { box-sizing: border-box; font-family: 'Segoe UI', Arial, sans-serif; -webkit-print-color-adjust: exact !important; print-color-adjust: exact !important; }
      body { margin: 32px; color: #1F3D6E; background-color: #FFFFFF; }
      .card { border-radius: 16px; border: 1px solid #E0E7F5; overflow: hidden; }
      .header { padding: 18px 28px 12px; background-color: #EEF4FB; position: relative; }
      .logo { font-size: 28px; font-weight: 700; color: #1F6FE1; text-align: center; margin-bottom: 8px; }
      .clinic-row, .patient-row { display: flex; justify-content: space-between; font-size: 14px; line-height: 1.8; margin-top: 8px; }
      .clinic-section { width: 48%; }
      .clinic-divider { margin: 18px 0 14px; height: 0; border-top: 4px solid #307BC4; border-radius: 999px; }
      .section { padding: 28px; background-color: #EBF2F7; border: 1px solid #D6E1EF; border-radius: 12px; margin: 18px 28px; }
      .section-title { font-size: 18px; font-weight: 700; margin-bottom: 16px; text-align: center; }
      .info-grid { display: flex; flex-wrap: wrap; gap: 18px; }
      .info-item { width: calc(50% - 9px); font-size: 14px; line-height: 1.8; }
      .info-label { font-weight: 700; margin-right: 6px; }
    </style>
  </head>
  <body>
    <div class="card section">
      <div class="header">
        <div class="logo">{{.Letterhead.Name}}</div>
        <div class="clinic-row">
          <div class="clinic-section">
            <div style="font-weight: 700;">{{.Provider}}</div>
            <div><strong>Address:</strong> {{.Letterhead.Address}}</div>
          </div>
          <div class="clinic-section" style="text-align:right;">
            <div><strong>Date:</strong> {{.ReportDate}}</div>
            <div><strong>Contact:</strong> {{.Letterhead.Phone}}</div>
            <div><strong>Email:</strong> {{.Letterhead.Email}}</div>
          </div>
        </div>
        <div class="clinic-divider"></div>
        <div class="patient-row">
          <div><strong>Patient Name:</strong> {{.Patient}}</div>
          <div style="text-align:right;"><strong>Contact No:</strong> {{.Contact}}</div>
        </div>
      </div>
    </div>
    <div class="card section">
      <div class="section-title">Appointment Detail</div>
      <div class="info-grid">
        <div class="info-item"><span class="info-label">Appointment Date:</span> {{.Date}}</div>
        <div class="info-item"><span class="info-label">Appointment Time:</span> {{.Time}}</div>
        <div class="info-item"><span class="info-label">Appointment Status:</span> {{.Status}}</div>
        <div class="info-item"><span class="info-label">Payment Mode:</span> {{.PaymentMode}}</div>
        <div class="info-item"><span class="info-label">Service:</span> {{.Service}}</div>
        <div class="info-item"><span class="info-label">Total Bill Payment:</span> {{.Charge}}</div>
      </div>
      <div class="section-title">Other Info</div>
      <div class="info-item" style="width:100%;">
        <span class="info-label">Description:</span> {{.Description}}
      </div>
    </div>
  </body>
</html>`))

// ToPrintableDocument renders a single appointment as a print-ready HTML
// sheet dated today.
func ToPrintableDocument(r appointment.Record, lh Letterhead, today time.Time) (string, error) {
	view := printView{
		Letterhead:  lh.WithDefaults(),
		ReportDate:  appointment.FormatDisplayDate(appointment.TodayISO(today)),
		Patient:     r.Patient.Name,
		Contact:     dashIfEmpty(r.PatientContact),
		Provider:    r.Provider,
		Date:        appointment.FormatDisplayDate(r.Schedule.Date),
		Time:        r.Schedule.StartTime,
		Status:      string(r.Status),
		PaymentMode: r.PaymentMode,
		Service:     r.Service,
		Charge:      FormatCharge(r.Charges),
		Description: dashIfEmpty(r.Description),
	}

	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render appointment sheet: %w", err)
	}
	return buf.String(), nil
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
