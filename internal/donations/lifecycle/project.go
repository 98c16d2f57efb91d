package lifecycle

import (
	"time"

	"bloodbank/pkg/model"
)

// HospitalRef is the resolved hospital a record is attributed to.
type HospitalRef struct {
	ID   string
	Name string
}

// Project merges a booking and its matched unit into a DonationRecord.
func Project(b *model.Booking, unit *model.Unit, hospital HospitalRef, now time.Time) model.DonationRecord {
	status := DeriveStatus(b, unit)

	rec := model.DonationRecord{
		ID:            b.ID,
		BookingID:     b.ID,
		DonorID:       b.DonorID,
		EventID:       b.EventID,
		HospitalID:    hospital.ID,
		HospitalName:  hospital.Name,
		Status:        status,
		DisplayStatus: Refine(status, unit, now),
		Source:        model.SourceAppointment,
		RawStatus:     b.RawStatus,
		ScheduledDate: b.ScheduledDate,
		EffectiveDate: b.ScheduledDate,
	}
	if b.FromEvent() {
		rec.Source = model.SourceEvent
	}

	if unit != nil {
		rec.Unit = &model.UnitDetail{
			Unit:           *unit,
			ExpiryCategory: ClassifyExpiry(unit.ExpiryDate, now),
		}
		if !unit.DonationDate.IsZero() {
			rec.EffectiveDate = unit.DonationDate
		}
	}

	return rec
}
