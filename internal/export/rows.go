package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hackgods/clinic-appointments/internal/appointment"
)

var ErrUnknownKind = errors.New("unknown export format")

// Row is one appointment flattened to display strings, in column order.
type Row struct {
	ID          string
	Patient     string
	Contact     string
	Date        string
	Time        string
	Provider    string
	Clinic      string
	Service     string
	Status      string
	Charge      string
	PaymentMode string
}

// Headers are the export column labels in output order.
var Headers = []string{
	"Appointment ID",
	"Patient",
	"Contact",
	"Date",
	"Time",
	"Provider",
	"Clinic",
	"Service",
	"Status",
	"Charge",
	"Payment Mode",
}

func (r Row) fields() []string {
	return []string{
		r.ID,
		r.Patient,
		r.Contact,
		r.Date,
		r.Time,
		r.Provider,
		r.Clinic,
		r.Service,
		r.Status,
		r.Charge,
		r.PaymentMode,
	}
}

// BuildRows flattens records in the order given.
func BuildRows(records []appointment.Record) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			ID:          r.ID,
			Patient:     r.Patient.Name,
			Contact:     r.PatientContact,
			Date:        appointment.FormatDisplayDate(r.Schedule.Date),
			Time:        TimeWindow(r.Schedule),
			Provider:    r.Provider,
			Clinic:      r.Clinic,
			Service:     r.Service,
			Status:      string(r.Status),
			Charge:      FormatCharge(r.Charges),
			PaymentMode: r.PaymentMode,
		}
	}
	return rows
}

var currencySymbols = map[string]string{
	"CAD": "$",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// CurrencySymbol returns the symbol for an ISO currency code, or "".
func CurrencySymbol(code string) string {
	return currencySymbols[code]
}

// FormatCharge renders a charge as symbol, amount and code, e.g. "$50CAD".
func FormatCharge(c appointment.Charges) string {
	return CurrencySymbol(c.Currency) + strconv.FormatFloat(c.Amount, 'f', -1, 64) + c.Currency
}

func TimeWindow(s appointment.Schedule) string {
	return s.StartTime + " - " + s.EndTime
}

// Kind selects an export format.
type Kind string

const (
	KindCSV   Kind = "csv"
	KindExcel Kind = "excel"
	KindPDF   Kind = "pdf"
	KindPrint Kind = "print"
)

func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindCSV, KindExcel, KindPDF, KindPrint:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
}

func (k Kind) Extension() string {
	switch k {
	case KindCSV:
		return ".csv"
	case KindExcel:
		return ".xls"
	case KindPDF:
		return ".pdf"
	default:
		return ".html"
	}
}

func (k Kind) ContentType() string {
	switch k {
	case KindCSV:
		return "text/csv; charset=utf-8"
	case KindExcel:
		return "application/vnd.ms-excel"
	case KindPDF:
		return "application/pdf"
	default:
		return "text/html; charset=utf-8"
	}
}

// Render produces the export document for rows.
func (k Kind) Render(rows []Row, title string) ([]byte, error) {
	switch k {
	case KindCSV:
		return []byte(ToCSV(rows)), nil
	case KindPDF:
		return ToPDF(rows, title)
	case KindExcel, KindPrint:
		doc, err := ToHTMLTable(rows, title)
		if err != nil {
			return nil, err
		}
		return []byte(doc), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

// FileName builds the download name for an export taken at now, e.g.
// "appointments-upcoming-2025-01-15T10-00-00-000Z.csv".
func FileName(kind Kind, segment appointment.Segment, now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	seg := strings.ToLower(string(segment))
	if seg == "" {
		seg = strings.ToLower(string(appointment.SegmentAll))
	}
	return fmt.Sprintf("appointments-%s-%s%s", seg, ts, kind.Extension())
}

func Title(segment appointment.Segment) string {
	if segment == "" {
		segment = appointment.SegmentAll
	}
	return fmt.Sprintf("Appointments Export (%s)", segment)
}
