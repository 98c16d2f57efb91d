package lifecycle

import (
	"sort"
	"time"

	"bloodbank/pkg/model"
)

// UnitIndex groups units for matching against bookings.
type UnitIndex struct {
	byID    map[string]*model.Unit
	byDonor map[string][]*model.Unit
}

func NewUnitIndex(units []*model.Unit) *UnitIndex {
	idx := &UnitIndex{
		byID:    make(map[string]*model.Unit, len(units)),
		byDonor: make(map[string][]*model.Unit),
	}
	for _, u := range units {
		if u == nil || u.ID == "" {
			continue
		}
		if _, dup := idx.byID[u.ID]; dup {
			continue
		}
		idx.byID[u.ID] = u
		idx.byDonor[u.DonorID] = append(idx.byDonor[u.DonorID], u)
	}
	for _, list := range idx.byDonor {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return idx
}

// MatchUnit finds the unit belonging to b. A stored unit link wins; otherwise
// the lowest-id unit of the same donor donated on the booking's calendar day
// (UTC) is taken. Units already linked to another booking are never claimed
// by the same-day rule, and walk-in bookings only match through the link.
func (idx *UnitIndex) MatchUnit(b *model.Booking) *model.Unit {
	if b.UnitID != "" {
		if u, ok := idx.byID[b.UnitID]; ok {
			return u
		}
	}

	if b.IsWalkIn() {
		return nil
	}

	for _, u := range idx.byDonor[b.DonorID] {
		if u.BookingID != "" && u.BookingID != b.ID {
			continue
		}
		if SameDay(u.DonationDate, b.ScheduledDate) {
			return u
		}
	}
	return nil
}

// SameDay compares the UTC calendar days of a and b.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
