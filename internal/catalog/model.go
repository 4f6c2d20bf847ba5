package catalog

// DefaultDurationMinutes applies to services that do not declare a duration.
const DefaultDurationMinutes = 30

type Charge struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Patient struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Initials string `json:"initials,omitempty"`
	Contact  string `json:"contact,omitempty"`
}

type Doctor struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Clinic string `json:"clinic,omitempty"`
}

type Service struct {
	Value           string  `json:"value"`
	Label           string  `json:"label"`
	Description     string  `json:"description"`
	Tax             string  `json:"tax"`
	Charge          *Charge `json:"charge,omitempty"`
	DurationMinutes int     `json:"durationMinutes,omitempty"`
}

// Duration returns the booked length of the service in minutes.
func (s *Service) Duration() int {
	if s == nil || s.DurationMinutes <= 0 {
		return DefaultDurationMinutes
	}
	return s.DurationMinutes
}

// Catalog is the serialized form of all three option lists.
type Catalog struct {
	Patients []Patient `json:"patients"`
	Doctors  []Doctor  `json:"doctors"`
	Services []Service `json:"services"`
}
