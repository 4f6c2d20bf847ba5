package appointment

import (
	"context"
	"slices"
)

type SlotSession struct {
	Label string   `json:"label"`
	Slots []string `json:"slots"`
}

// SlotQuery identifies the booking form selection that availability is
// computed for.
type SlotQuery struct {
	Doctor  string
	Service string
	Patient string
	Date    string
}

// Complete reports whether every field needed to offer slots is present.
func (q SlotQuery) Complete() bool {
	return q.Doctor != "" && q.Service != "" && q.Patient != "" && IsCompleteDate(q.Date)
}

// SlotProvider supplies bookable sessions for a complete query.
type SlotProvider interface {
	Sessions(ctx context.Context, q SlotQuery) ([]SlotSession, error)
}

// FixedSlots offers the same sessions for every query.
type FixedSlots []SlotSession

func (f FixedSlots) Sessions(_ context.Context, _ SlotQuery) ([]SlotSession, error) {
	out := make([]SlotSession, len(f))
	for i, s := range f {
		out[i] = SlotSession{Label: s.Label, Slots: slices.Clone(s.Slots)}
	}
	return out, nil
}

// DefaultSlots is a placeholder schedule until real availability is wired in.
var DefaultSlots = FixedSlots{
	{Label: "Session 1", Slots: []string{"10:00", "10:30"}},
	{Label: "Session 2", Slots: []string{"13:00", "13:30"}},
}

// AvailableSlots returns the sessions for q, or nothing when q is
// incomplete.
func AvailableSlots(ctx context.Context, provider SlotProvider, q SlotQuery) ([]SlotSession, error) {
	if !q.Complete() {
		return nil, nil
	}
	return provider.Sessions(ctx, q)
}

// OffersSlot reports whether start is one of the session start times.
func OffersSlot(sessions []SlotSession, start string) bool {
	for _, s := range sessions {
		if slices.Contains(s.Slots, start) {
			return true
		}
	}
	return false
}
