package catalog

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

// FixtureSeed is the seed behind the catalog served when none is configured.
const FixtureSeed uint64 = 20250115

var clinics = []string{
	"Downtown Family Clinic",
	"Lakeshore Medical Centre",
	"Northside Wellness",
	"Harbourview Health",
}

var services = []Service{
	{Value: "general-consult", Label: "General Consultation", Description: "Standard visit with a family physician", Tax: "0%", Charge: &Charge{Amount: 50, Currency: "CAD"}, DurationMinutes: 30},
	{Value: "follow-up", Label: "Follow-up", Description: "Review of a previous visit", Tax: "0%", Charge: &Charge{Amount: 35, Currency: "CAD"}, DurationMinutes: 15},
	{Value: "physio-session", Label: "Physiotherapy Session", Description: "Assessment and treatment", Tax: "13%", Charge: &Charge{Amount: 90, Currency: "CAD"}, DurationMinutes: 45},
	{Value: "annual-physical", Label: "Annual Physical", Description: "Full yearly examination", Tax: "0%", Charge: &Charge{Amount: 120, Currency: "CAD"}, DurationMinutes: 60},
	{Value: "telehealth", Label: "Telehealth Call", Description: "", Tax: "0%"},
}

// Generate builds a synthetic catalog with gofakeit. The same seed always
// yields the same catalog.
func Generate(seed uint64, patients, doctors int) Catalog {
	f := gofakeit.New(seed)

	c := Catalog{
		Patients: make([]Patient, 0, patients),
		Doctors:  make([]Doctor, 0, doctors),
		Services: append([]Service(nil), services...),
	}

	for i := 0; i < patients; i++ {
		first, last := f.FirstName(), f.LastName()
		c.Patients = append(c.Patients, Patient{
			Value:    fmt.Sprintf("patient-%03d", i+1),
			Label:    first + " " + last,
			Initials: strings.ToUpper(first[:1] + last[:1]),
			Contact:  f.Phone(),
		})
	}

	for i := 0; i < doctors; i++ {
		c.Doctors = append(c.Doctors, Doctor{
			Value:  fmt.Sprintf("doctor-%03d", i+1),
			Label:  "Dr. " + f.FirstName() + " " + f.LastName(),
			Clinic: clinics[f.Number(0, len(clinics)-1)],
		})
	}

	return c
}
