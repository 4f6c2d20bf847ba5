package appointment

type AppointmentStatus string

const (
	StatusUpcoming  AppointmentStatus = "Upcoming"
	StatusPending   AppointmentStatus = "Pending"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusCompleted AppointmentStatus = "Completed(check-out)"
	StatusCheckIn   AppointmentStatus = "CheckIn"
	StatusBooked    AppointmentStatus = "Booked"
)

// StatusAll is the filter value that disables status, patient and doctor
// constraints.
const StatusAll = "all"

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusPending, StatusCancelled, StatusCompleted, StatusCheckIn, StatusBooked:
		return true
	}
	return false
}

type StatusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterStatusOptions are offered by the list filter.
var FilterStatusOptions = []StatusOption{
	{Value: StatusAll, Label: "All"},
	{Value: string(StatusUpcoming), Label: "Upcoming"},
	{Value: string(StatusCompleted), Label: "Completed(check-out)"},
	{Value: string(StatusCancelled), Label: "Cancelled"},
	{Value: string(StatusCheckIn), Label: "CheckIn"},
	{Value: string(StatusPending), Label: "Pending"},
}

// FormStatusOptions are offered when creating an appointment.
var FormStatusOptions = []StatusOption{
	{Value: string(StatusBooked), Label: "Booked"},
	{Value: string(StatusPending), Label: "Pending"},
	{Value: string(StatusCompleted), Label: "Check out"},
	{Value: string(StatusCheckIn), Label: "Check in"},
	{Value: string(StatusCancelled), Label: "Cancelled"},
}

// StatusLabel returns the display label for a status or filter value.
func StatusLabel(value string) string {
	if value == StatusAll {
		return "All"
	}
	for _, o := range FilterStatusOptions[1:] {
		if o.Value == value {
			return o.Label
		}
	}
	for _, o := range FormStatusOptions {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

type PatientRef struct {
	Name     string `json:"name"`
	Initials string `json:"initials"`
}

type Schedule struct {
	Date      string `json:"date"`      // YYYY-MM-DD
	StartTime string `json:"startTime"` // HH:MM
	EndTime   string `json:"endTime"`   // HH:MM
}

type Charges struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Record is a booked appointment. Patient, provider, clinic, service and
// charges are copies taken at booking time and are never re-resolved
// against the catalog.
type Record struct {
	ID             string            `json:"id"`
	Patient        PatientRef        `json:"patient"`
	Schedule       Schedule          `json:"schedule"`
	Provider       string            `json:"provider"`
	Clinic         string            `json:"clinic,omitempty"`
	Service        string            `json:"service"`
	Description    string            `json:"description"`
	Charges        Charges           `json:"charges"`
	PaymentMode    string            `json:"paymentMode"`
	Status         AppointmentStatus `json:"status"`
	PatientContact string            `json:"patientContact,omitempty"`
	AuditTrail     []string          `json:"auditTrail,omitempty"`
}

// AuditRows pairs audit entries into two display columns. An empty trail
// yields a single placeholder row.
func AuditRows(entries []string) [][2]string {
	if len(entries) == 0 {
		entries = []string{"—"}
	}

	rows := make([][2]string, 0, (len(entries)+1)/2)
	for i := 0; i < len(entries); i += 2 {
		row := [2]string{entries[i], ""}
		if i+1 < len(entries) {
			row[1] = entries[i+1]
		}
		rows = append(rows, row)
	}
	return rows
}

func cloneRecord(r Record) Record {
	if r.AuditTrail != nil {
		r.AuditTrail = append([]string(nil), r.AuditTrail...)
	}
	return r
}
