package main

import (
	"errors"
	"testing"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/export"
)

func TestExportOptionsParse(t *testing.T) {
	opts := exportOptions{
		formats: []string{"CSV", "print", "csv"},
		segment: "Upcoming",
		date:    "2025-01-15",
		status:  "Booked",
		patient: "all",
		doctor:  "Dr. Ada Lovelace",
	}

	kinds, state, err := opts.parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(kinds) != 2 || kinds[0] != export.KindCSV || kinds[1] != export.KindPrint {
		t.Errorf("unexpected kinds %v", kinds)
	}
	if state.Segment != appointment.SegmentUpcoming {
		t.Errorf("segment = %q", state.Segment)
	}
	if state.Date != "2025-01-15" || state.Status != "Booked" || state.Doctor != "Dr. Ada Lovelace" {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestExportOptionsParse_Rejects(t *testing.T) {
	cases := []struct {
		name string
		opts exportOptions
		want error
	}{
		{"unknown format", exportOptions{formats: []string{"docx"}}, export.ErrUnknownKind},
		{"unknown segment", exportOptions{formats: []string{"csv"}, segment: "later"}, appointment.ErrUnknownSegment},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := tc.opts.parse(); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, _, err := (exportOptions{}).parse(); err == nil {
		t.Error("expected an error without formats")
	}
}
