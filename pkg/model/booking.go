package model

import (
	"time"
)

// WalkInDonorID marks a booking entered at the desk without a donor profile.
const WalkInDonorID = "walk-in"

// Raw booking statuses as written by the scheduling side.
const (
	RawPending    = "pending"
	RawRegistered = "registered"
	RawScheduled  = "scheduled"
	RawConfirmed  = "confirmed"
	RawRejected   = "rejected"
	RawCancelled  = "cancelled"
	RawNoShow     = "no-show"
	RawCompleted  = "completed"
)

type Booking struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	DonorID       string    `json:"donor_id" bson:"donor_id"`
	EventID       string    `json:"event_id,omitempty" bson:"event_id,omitempty"`
	HospitalID    string    `json:"hospital_id,omitempty" bson:"hospital_id,omitempty"`
	HospitalName  string    `json:"hospital_name,omitempty" bson:"hospital_name,omitempty"`
	Location      string    `json:"location,omitempty" bson:"location,omitempty"`
	ScheduledDate time.Time `json:"scheduled_date" bson:"scheduled_date"`
	RawStatus     string    `json:"status" bson:"status"`
	UnitID        string    `json:"unit_id,omitempty" bson:"unit_id,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// IsWalkIn reports whether the booking has no donor profile behind it.
func (b *Booking) IsWalkIn() bool {
	return b.DonorID == "" || b.DonorID == WalkInDonorID
}

// FromEvent reports whether the booking was made against a scheduled event.
func (b *Booking) FromEvent() bool {
	return b.EventID != ""
}

// BookingFilter narrows the booking scan behind record listing.
type BookingFilter struct {
	DonorID string
	From    *time.Time
	To      *time.Time
}

// BookingUpdate carries the editable booking metadata; nil means unchanged.
type BookingUpdate struct {
	ScheduledDate *time.Time
	HospitalName  *string
	Location      *string
}

// IsEmpty reports whether the update changes nothing.
func (u BookingUpdate) IsEmpty() bool {
	return u.ScheduledDate == nil && u.HospitalName == nil && u.Location == nil
}
