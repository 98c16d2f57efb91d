package lifecycle

import (
	"testing"
	"time"

	"bloodbank/pkg/model"
)

func TestMatchUnit(t *testing.T) {
	march1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	march1Late := time.Date(2025, 3, 1, 22, 30, 0, 0, time.UTC)
	march2 := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	units := []*model.Unit{
		{ID: "u3", DonorID: "d1", DonationDate: march1Late},
		{ID: "u2", DonorID: "d1", DonationDate: march1},
		{ID: "u5", DonorID: "d1", DonationDate: march2},
		{ID: "u7", DonorID: "d2", DonationDate: march1},
		{ID: "u8", DonorID: "d3", DonationDate: march1, BookingID: "other"},
		{ID: "u9", DonorID: model.WalkInDonorID, DonationDate: march1},
	}
	idx := NewUnitIndex(units)

	tests := []struct {
		name    string
		booking model.Booking
		want    string
	}{
		{"direct link wins over same day", model.Booking{ID: "b1", DonorID: "d1", UnitID: "u5", ScheduledDate: march1}, "u5"},
		{"same day picks lowest id", model.Booking{ID: "b2", DonorID: "d1", ScheduledDate: march1}, "u2"},
		{"dangling link falls back to heuristic", model.Booking{ID: "b3", DonorID: "d1", UnitID: "missing", ScheduledDate: march2}, "u5"},
		{"different day no match", model.Booking{ID: "b4", DonorID: "d2", ScheduledDate: march2}, ""},
		{"other donor no match", model.Booking{ID: "b5", DonorID: "d4", ScheduledDate: march1}, ""},
		{"unit linked elsewhere not claimed", model.Booking{ID: "b6", DonorID: "d3", ScheduledDate: march1}, ""},
		{"unit linked to this booking claimed", model.Booking{ID: "other", DonorID: "d3", ScheduledDate: march1}, "u8"},
		{"walk-in only via link", model.Booking{ID: "b7", DonorID: model.WalkInDonorID, ScheduledDate: march1}, ""},
		{"walk-in with link", model.Booking{ID: "b8", DonorID: model.WalkInDonorID, UnitID: "u9", ScheduledDate: march1}, "u9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.MatchUnit(&tt.booking)
			gotID := ""
			if got != nil {
				gotID = got.ID
			}
			if gotID != tt.want {
				t.Errorf("MatchUnit() = %q, want %q", gotID, tt.want)
			}
		})
	}
}

func TestSameDay_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	a := time.Date(2025, 3, 2, 1, 0, 0, 0, loc) // 2025-03-01 22:00 UTC
	b := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	if !SameDay(a, b) {
		t.Errorf("expected %s and %s to share a UTC day", a, b)
	}
}
