package model

import "time"

// Status is the canonical lifecycle state of a donation record.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusRegistered Status = "Registered"
	StatusConfirmed  Status = "Confirmed"
	StatusRejected   Status = "Rejected"
	StatusCancelled  Status = "Cancelled"
	StatusNoShow     Status = "No-show"
	StatusCompleted  Status = "Completed"

	// Display-only refinements of StatusCompleted.
	StatusUsed    Status = "Used"
	StatusExpired Status = "Expired"
)

// Source tells whether a record came from an event booking or a direct appointment.
type Source string

const (
	SourceEvent       Source = "event"
	SourceAppointment Source = "appointment"
)

type ExpiryCategory string

const (
	ExpiryUnknown  ExpiryCategory = "Unknown"
	ExpiryExpired  ExpiryCategory = "Expired"
	ExpiryCritical ExpiryCategory = "Critical"
	ExpiryUrgent   ExpiryCategory = "Urgent"
	ExpiryWarning  ExpiryCategory = "Warning"
	ExpiryGood     ExpiryCategory = "Good"
)

// UnitDetail is the unit as embedded in a DonationRecord.
type UnitDetail struct {
	Unit
	ExpiryCategory ExpiryCategory `json:"expiry_category"`
}

// DonationRecord is the merged view of a booking and its matched unit. It is
// recomputed on every read and never stored.
type DonationRecord struct {
	ID            string      `json:"id"`
	BookingID     string      `json:"booking_id"`
	DonorID       string      `json:"donor_id"`
	EventID       string      `json:"event_id,omitempty"`
	HospitalID    string      `json:"hospital_id"`
	HospitalName  string      `json:"hospital_name"`
	Status        Status      `json:"status"`
	DisplayStatus Status      `json:"display_status"`
	Source        Source      `json:"source"`
	RawStatus     string      `json:"raw_status"`
	ScheduledDate time.Time   `json:"scheduled_date"`
	EffectiveDate time.Time   `json:"effective_date"`
	Unit          *UnitDetail `json:"unit,omitempty"`
}

// HasUnit reports whether a physical donation is attached to the record.
func (r *DonationRecord) HasUnit() bool {
	return r.Unit != nil
}

// RecordFilter narrows ListRecords. Zero values match everything.
type RecordFilter struct {
	HospitalID    string     `json:"hospital_id,omitempty"`
	DonorID       string     `json:"donor_id,omitempty"`
	Status        Status     `json:"status,omitempty"`
	DisplayStatus Status     `json:"display_status,omitempty"`
	Source        Source     `json:"source,omitempty"`
	From          *time.Time `json:"from,omitempty"`
	To            *time.Time `json:"to,omitempty"`
}
