package appointment

import (
	"errors"
	"fmt"
	"time"
)

type Segment string

const (
	SegmentAll      Segment = "all"
	SegmentUpcoming Segment = "Upcoming"
	SegmentPast     Segment = "past"
)

var ErrUnknownSegment = errors.New("unknown segment")

// ParseSegment maps user input to a Segment. Empty input selects all.
func ParseSegment(raw string) (Segment, error) {
	switch Segment(raw) {
	case "", SegmentAll:
		return SegmentAll, nil
	case SegmentUpcoming:
		return SegmentUpcoming, nil
	case SegmentPast:
		return SegmentPast, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSegment, raw)
}

// FilterState is the transient list filter. Empty strings and "all" leave
// the corresponding dimension unconstrained.
type FilterState struct {
	Segment Segment
	Date    string
	Status  string
	Patient string // matched against the patient display name
	Doctor  string // matched against the provider label
}

// Filter applies state to records using the current time.
func Filter(records []Record, state FilterState) []Record {
	return FilterAt(records, state, time.Now())
}

// FilterAt returns the records that satisfy state, in their original order.
// Schedules are interpreted in now's location. A record whose schedule does
// not parse is kept only by the "all" segment.
func FilterAt(records []Record, state FilterState, now time.Time) []Record {
	date := ""
	if IsCompleteDate(state.Date) {
		date = state.Date
	}

	result := make([]Record, 0, len(records))
	for _, r := range records {
		if date != "" && r.Schedule.Date != date {
			continue
		}
		if constrained(state.Status) && string(r.Status) != state.Status {
			continue
		}
		if constrained(state.Patient) && r.Patient.Name != state.Patient {
			continue
		}
		if constrained(state.Doctor) && r.Provider != state.Doctor {
			continue
		}
		if !inSegment(r, state.Segment, now) {
			continue
		}
		result = append(result, r)
	}
	return result
}

func constrained(v string) bool {
	return v != "" && v != StatusAll
}

func inSegment(r Record, segment Segment, now time.Time) bool {
	if segment == SegmentAll || segment == "" {
		return true
	}

	at, ok := ScheduleDateTime(r.Schedule, now.Location())
	if !ok {
		return false
	}
	if segment == SegmentUpcoming {
		return !at.Before(now)
	}
	return at.Before(now)
}
